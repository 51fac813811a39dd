package segment

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDirListsAndSortsByIndex(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []int{3, 1, 2} {
		if err := os.WriteFile(filepath.Join(dir, FileName(n)), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	os.WriteFile(filepath.Join(dir, "not-a-segment.txt"), []byte("x"), 0o644)

	segs, err := Dir(dir)
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	for i, want := range []int{1, 2, 3} {
		if segs[i].Index != want {
			t.Fatalf("segs[%d].Index = %d, want %d", i, segs[i].Index, want)
		}
	}
}

func TestReadyRequiresQuietPeriod(t *testing.T) {
	now := time.Now()
	fresh := Segment{ModTime: now.Add(-100 * time.Millisecond)}
	settled := Segment{ModTime: now.Add(-time.Second)}

	if fresh.Ready(now) {
		t.Fatalf("freshly-written segment should not be ready")
	}
	if !settled.Ready(now) {
		t.Fatalf("settled segment should be ready")
	}
}

func TestFileNameZeroPads(t *testing.T) {
	if FileName(7) != "segment_000007.wav" {
		t.Fatalf("FileName(7) = %q", FileName(7))
	}
}
