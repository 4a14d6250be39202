package ir

import (
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/afero"
)

const (
	wavFormatPCM   = 1
	wavFormatFloat = 3
)

// Decode reads a PCM (8/16/24/32-bit) or 32-bit float WAV stream into a
// planar response scaled to [-1, 1].
func Decode(r io.ReadSeeker) (*ImpulseResponse, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return nil, fmt.Errorf("%w: not a valid WAV file", ErrUnsupportedFormat)
	}

	bits := int(dec.BitDepth)
	format := int(dec.WavAudioFormat)

	var toFloat func(int) float64
	switch {
	case format == wavFormatFloat && bits == 32:
		toFloat = func(v int) float64 {
			return float64(math.Float32frombits(uint32(int32(v))))
		}
	case format == wavFormatFloat:
		return nil, fmt.Errorf("%w: %d-bit float", ErrUnsupportedFormat, bits)
	case bits == 8:
		toFloat = func(v int) float64 { return float64(v-128) / 128 }
	case bits == 16 || bits == 24 || bits == 32:
		scale := 1 / float64(int64(1)<<(bits-1))
		toFloat = func(v int) float64 { return float64(v) * scale }
	default:
		return nil, fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedFormat, bits)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("ir: read PCM data: %w", err)
	}

	numCh := int(dec.NumChans)
	frames := len(pcm.Data) / numCh
	if frames == 0 {
		return nil, ErrEmptyImpulseResponse
	}

	out := &ImpulseResponse{
		SampleRate: float64(dec.SampleRate),
		Channels:   make([][]float64, numCh),
	}
	for ch := range out.Channels {
		out.Channels[ch] = make([]float64, frames)
	}

	for i := range frames {
		for ch, dst := range out.Channels {
			dst[i] = toFloat(pcm.Data[i*numCh+ch])
		}
	}

	return out, nil
}

// Load opens path on fs and decodes it.
func Load(fs afero.Fs, path string) (*ImpulseResponse, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ir: open %s: %w", path, err)
	}
	defer f.Close()

	resp, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("ir: decode %s: %w", path, err)
	}

	return resp, nil
}

// Encode writes planar channels as a WAV stream. bitDepth 16 and 24 write
// integer PCM, 32 writes IEEE float. Samples are clamped to [-1, 1] for the
// integer formats.
func Encode(w io.WriteSeeker, sampleRate int, bitDepth int, channels [][]float64) error {
	if len(channels) == 0 {
		return ErrEmptyImpulseResponse
	}

	format := wavFormatPCM
	var fromFloat func(float64) int
	switch bitDepth {
	case 16, 24:
		full := float64(int64(1)<<(bitDepth-1)) - 1
		fromFloat = func(v float64) int {
			return int(math.Round(math.Max(-1, math.Min(1, v)) * full))
		}
	case 32:
		format = wavFormatFloat
		fromFloat = func(v float64) int {
			return int(int32(math.Float32bits(float32(v))))
		}
	default:
		return fmt.Errorf("%w: cannot encode %d-bit", ErrUnsupportedFormat, bitDepth)
	}

	frames := len(channels[0])
	for _, ch := range channels[1:] {
		frames = min(frames, len(ch))
	}

	numCh := len(channels)
	data := make([]int, frames*numCh)
	for i := range frames {
		for ch, src := range channels {
			data[i*numCh+ch] = fromFloat(src[i])
		}
	}

	enc := wav.NewEncoder(w, sampleRate, bitDepth, numCh, format)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numCh, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("ir: write WAV data: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("ir: finalize WAV: %w", err)
	}

	return nil
}
