// Package segment models the Segment Directory: the bounded hand-off
// buffer of in-flight wave files between the Capture Supervisor and the
// analysis worker pools.
package segment

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"
)

// Segment describes one slice of captured audio on disk.
type Segment struct {
	Path        string
	Index       int
	ModTime     time.Time
	Channels    int
	SampleWidth int
	SampleRate  int
}

// Age returns how long ago the segment was last written to, as of now.
func (s Segment) Age(now time.Time) time.Duration {
	return now.Sub(s.ModTime)
}

// Ready reports whether the segment has been quiescent long enough
// that the capture tool is almost certainly done writing to it.
func (s Segment) Ready(now time.Time) bool {
	return s.Age(now) > 400*time.Millisecond
}

var namePattern = regexp.MustCompile(`^segment_(\d+)\.wav$`)

// Dir lists every segment file in dir, sorted by index ascending.
// Files that don't match the expected naming convention are ignored.
func Dir(dir string) ([]Segment, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	segments := make([]Segment, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := namePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		segments = append(segments, Segment{
			Path:    filepath.Join(dir, e.Name()),
			Index:   idx,
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(segments, func(i, j int) bool { return segments[i].Index < segments[j].Index })
	return segments, nil
}

// ByAgeAscending sorts segments oldest-first by modification time, the
// order the Dispatcher uses for queue-cap eviction.
func ByAgeAscending(segments []Segment) {
	sort.Slice(segments, func(i, j int) bool { return segments[i].ModTime.Before(segments[j].ModTime) })
}

// FileName formats the capture tool's segment filename for index n,
// matching the `segment_%06d.wav` pattern.
func FileName(n int) string {
	return "segment_" + pad6(n) + ".wav"
}

func pad6(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 6 {
		s = "0" + s
	}
	return s
}
