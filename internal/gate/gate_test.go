package gate

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// writeWav writes a minimal 16-bit mono PCM WAV file with the given
// samples, for exercising MeasureActivity without a fixture binary.
func writeWav(t *testing.T, path string, sampleRate int, samples []int16) {
	t.Helper()

	dataSize := len(samples) * 2
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	write := func(b []byte) {
		if _, err := f.Write(b); err != nil {
			t.Fatal(err)
		}
	}
	u32 := func(v uint32) []byte {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, v)
		return b
	}
	u16 := func(v uint16) []byte {
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, v)
		return b
	}

	write([]byte("RIFF"))
	write(u32(uint32(36 + dataSize)))
	write([]byte("WAVE"))
	write([]byte("fmt "))
	write(u32(16))
	write(u16(1)) // PCM
	write(u16(1)) // mono
	write(u32(uint32(sampleRate)))
	write(u32(uint32(sampleRate * 2)))
	write(u16(2))
	write(u16(16))
	write([]byte("data"))
	write(u32(uint32(dataSize)))
	for _, s := range samples {
		write(u16(uint16(s)))
	}
}

func TestMeasureActivityDetectsSilence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "silent.wav")
	samples := make([]int16, 48000)
	writeWav(t, path, 48000, samples)

	v, err := MeasureActivity(path, -45, 0.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Active {
		t.Fatal("expected silent verdict for zero-amplitude file")
	}
}

func TestMeasureActivityDetectsActive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "active.wav")
	sampleRate := 48000
	samples := make([]int16, sampleRate)
	for i := range samples {
		samples[i] = int16(20000 * math.Sin(float64(i)*0.1))
	}
	writeWav(t, path, sampleRate, samples)

	v, err := MeasureActivity(path, -45, 0.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Active {
		t.Fatal("expected active verdict for loud tone")
	}
}

func TestMeasureActivitySkippedWhenDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "silent.wav")
	writeWav(t, path, 48000, make([]int16, 1000))

	v, err := MeasureActivity(path, -45, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Active {
		t.Fatal("expected active verdict when minSeconds disables the check")
	}
}
