// Package buffer provides the planar multichannel sample buffer that flows
// through the signal chain. Storage is allocated once for a fixed channel and
// frame capacity; resizing within that capacity never allocates, so the
// buffer can be reused on a real-time audio thread.
package buffer
