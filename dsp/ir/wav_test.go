package ir

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/afero"

	"github.com/cwbudde/algo-irfx/internal/testutil"
)

func writeWAV(t *testing.T, fs afero.Fs, path string, sampleRate, bitDepth int, channels [][]float64) {
	t.Helper()

	f, err := fs.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()

	if err := Encode(f, sampleRate, bitDepth, channels); err != nil {
		t.Fatalf("Encode: %v", err)
	}
}

func TestEncodeLoadRoundTrip(t *testing.T) {
	left := []float64{0.5, -0.25, 0.125, 0, -1}
	right := []float64{-0.5, 0.25, 0, 0.75, 1}

	tests := []struct {
		bitDepth int
		eps      float64
	}{
		{16, 2.0 / 32767},
		{24, 2.0 / 8388607},
		{32, 1e-7},
	}

	for _, tt := range tests {
		fs := afero.NewMemMapFs()
		writeWAV(t, fs, "/ir.wav", 44100, tt.bitDepth, [][]float64{left, right})

		got, err := Load(fs, "/ir.wav")
		if err != nil {
			t.Fatalf("%d-bit Load: %v", tt.bitDepth, err)
		}

		if got.SampleRate != 44100 {
			t.Fatalf("%d-bit SampleRate = %v, want 44100", tt.bitDepth, got.SampleRate)
		}
		if len(got.Channels) != 2 {
			t.Fatalf("%d-bit channels = %d, want 2", tt.bitDepth, len(got.Channels))
		}

		testutil.RequireSliceNearlyEqual(t, got.Channels[0], left, tt.eps)
		testutil.RequireSliceNearlyEqual(t, got.Channels[1], right, tt.eps)
	}
}

func TestDecode8Bit(t *testing.T) {
	fs := afero.NewMemMapFs()
	f, err := fs.Create("/u8.wav")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	enc := wav.NewEncoder(f, 8000, 8, 1, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 8000},
		Data:           []int{128, 192, 64, 0},
		SourceBitDepth: 8,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	f.Close()

	got, err := Load(fs, "/u8.wav")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, got.Channels[0], []float64{0, 0.5, -0.5, -1}, 1e-12)
}

func TestEncodeClampsIntegerFormats(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeWAV(t, fs, "/hot.wav", 48000, 16, [][]float64{{2, -3}})

	got, err := Load(fs, "/hot.wav")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, got.Channels[0], []float64{32767.0 / 32768, -32767.0 / 32768}, 1e-12)
}

func TestLoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()

	if _, err := Load(fs, "/missing.wav"); err == nil {
		t.Fatal("expected error for missing file")
	}

	if err := afero.WriteFile(fs, "/junk.wav", []byte("not a riff file at all"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(fs, "/junk.wav"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("junk file: got %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode(bytes.NewReader(nil)); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("empty stream: got %v, want ErrUnsupportedFormat", err)
	}
}

func TestEncodeErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	f, err := fs.Create("/x.wav")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()

	if err := Encode(f, 48000, 8, [][]float64{{0}}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("8-bit: got %v", err)
	}
	if err := Encode(f, 48000, 16, nil); !errors.Is(err, ErrEmptyImpulseResponse) {
		t.Fatalf("no channels: got %v", err)
	}
}
