// Package pcmwave decodes PCM WAV segment files chunk by chunk, shared
// by the Silence Gate's activity measurement and the Best-Clip
// Selector's SNR estimation so both read audio the same way.
package pcmwave

import (
	"errors"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrInvalidWav is returned when the file fails the decoder's own
// validity check.
var ErrInvalidWav = errors.New("pcmwave: not a valid WAV file")

// Info describes the format of an opened wave file.
type Info struct {
	SampleRate int
	BitDepth   int
	NumChans   int
	MaxAmp     float64 // 2^(8*sampleWidth-1)
}

// Reader decodes successive chunks of frame-interleaved int samples
// from a wave file.
type Reader struct {
	file    *os.File
	decoder *wav.Decoder
	Info    Info
}

// Open opens path and reads its header. The caller must call Close.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	decoder := wav.NewDecoder(f)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		f.Close()
		return nil, ErrInvalidWav
	}

	bitDepth := int(decoder.BitDepth)
	sampleRate := int(decoder.SampleRate)
	numChans := int(decoder.NumChans)
	if numChans < 1 {
		numChans = 1
	}

	return &Reader{
		file:    f,
		decoder: decoder,
		Info: Info{
			SampleRate: sampleRate,
			BitDepth:   bitDepth,
			NumChans:   numChans,
			MaxAmp:     maxAmpFor(bitDepth),
		},
	}, nil
}

func maxAmpFor(bitDepth int) float64 {
	if bitDepth <= 0 {
		bitDepth = 16
	}
	shift := uint(bitDepth - 1)
	return float64(int64(1) << shift)
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.file.Close()
}

// ReadChunk reads up to len(buf) interleaved int samples, returning the
// number read. It returns (0, nil) at end of file, matching the
// underlying decoder's convention.
func (r *Reader) ReadChunk(buf []int) (int, error) {
	ib := &audio.IntBuffer{
		Data:   buf,
		Format: &audio.Format{SampleRate: r.Info.SampleRate, NumChannels: r.Info.NumChans},
	}
	return r.decoder.PCMBuffer(ib)
}

// FramesForDuration returns how many samples (frames, since the gate
// and best-clip paths both read mono) correspond to seconds at the
// reader's sample rate.
func (r *Reader) FramesForDuration(seconds float64) int {
	n := int(seconds * float64(r.Info.SampleRate))
	if n < 1 {
		n = 1
	}
	return n
}
