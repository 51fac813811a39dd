package bestclip

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/livingstonekit-alt/feather-front/internal/datastore"
)

// writeTestWav writes a minimal 16-bit mono PCM WAV file of numSamples
// samples containing a loud tone, enough for EstimateSNR to have
// something non-degenerate to measure.
func writeTestWav(t *testing.T, path string, sampleRate, numSamples int) {
	t.Helper()

	samples := make([]int16, numSamples)
	for i := range samples {
		samples[i] = int16(15000 * math.Sin(float64(i)*0.05))
	}

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
	write(u16(1))
	write(u16(1))
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

func TestSlugCollapsesNonAlnum(t *testing.T) {
	cases := map[string]string{
		"American Robin":    "american-robin",
		"Turdus migratorius": "turdus-migratorius",
		"Bird! (sp.)":        "bird-sp",
	}
	for in, want := range cases {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestScoreCombinesConfidenceAndSNR(t *testing.T) {
	snr := 6.0
	got := Score(0.8, &snr)
	want := 0.8*100 + 6.0
	if got != want {
		t.Fatalf("Score = %v, want %v", got, want)
	}
}

func TestScoreWithNilSNR(t *testing.T) {
	if got := Score(0.5, nil); got != 50 {
		t.Fatalf("Score = %v, want 50", got)
	}
}

func TestQualifiesStrictlyHigherScore(t *testing.T) {
	existing := datastore.BestClipEntry{Score: 80, Confidence: 0.8}
	if !qualifies(81, 0.8, existing) {
		t.Fatal("expected a strictly higher score to qualify")
	}
}

func TestQualifiesRejectsLowerOrEqualScore(t *testing.T) {
	existing := datastore.BestClipEntry{Score: 80, Confidence: 0.8}
	if qualifies(80, 0.9, existing) {
		t.Fatal("equal score should not qualify")
	}
	if qualifies(79, 0.95, existing) {
		t.Fatal("lower score should not qualify regardless of confidence")
	}
}

func TestQualifiesAcceptsHigherScoreDespiteWorseConfidence(t *testing.T) {
	existing := datastore.BestClipEntry{Score: 80, Confidence: 0.9}
	if !qualifies(85, 0.5, existing) {
		t.Fatal("a strictly higher score should qualify even with a materially worse confidence")
	}
}

func TestArchiveConsiderCreatesNewEntry(t *testing.T) {
	dir := t.TempDir()
	seg := filepath.Join(dir, "segment_000001.wav")
	writeTestWav(t, seg, 48000, 48000)

	idxStore := datastore.NewClipIndexStore(filepath.Join(dir, "index.json"))
	archive := NewArchive(filepath.Join(dir, "clips"), idxStore)

	if err := archive.Consider(seg, "American Robin", "Turdus migratorius", 0.9, "2026-07-31T00:00:00Z"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	idx, err := idxStore.Load()
	if err != nil {
		t.Fatalf("unexpected error loading index: %v", err)
	}
	entry, ok := idx["American Robin"]
	if !ok {
		t.Fatal("expected entry for American Robin")
	}
	if entry.Filename != "american-robin.wav" {
		t.Fatalf("unexpected filename: %q", entry.Filename)
	}
}
