package bestclip

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/livingstonekit-alt/feather-front/internal/apperr"
	"github.com/livingstonekit-alt/feather-front/internal/datastore"
)

// confidenceSlack is the confidence tolerance of the replace rule's third
// case (a confidence within this much of the archived one together with a
// better score). That case also needs a better score, so it qualifies
// nothing the strictly-higher-score case does not already qualify.
const confidenceSlack = 0.02

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slug collapses a species name into the lowercase, dash-separated form
// used for its archived filename.
func Slug(species string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(species), "-")
	return strings.Trim(s, "-")
}

// Archive owns the best-clip JSON index and the directory clips are
// copied into.
type Archive struct {
	clipsDir string
	index    *datastore.ClipIndexStore
}

func NewArchive(clipsDir string, index *datastore.ClipIndexStore) *Archive {
	return &Archive{clipsDir: clipsDir, index: index}
}

// Consider evaluates segPath as a candidate best clip for species, and
// replaces the archived entry when it's a qualifying improvement:
// either no existing entry, a strictly higher score, or a confidence
// within confidenceSlack of the existing one together with a better
// score.
func (a *Archive) Consider(segPath, species, scientificName string, confidence float64, timestamp string) error {
	snr, err := EstimateSNR(segPath)
	if err != nil {
		return err
	}
	score := Score(confidence, snr)

	idx, err := a.index.Load()
	if err != nil {
		return err
	}

	existing, ok := idx[species]
	if ok && !qualifies(score, confidence, existing) {
		return nil
	}

	filename := Slug(species) + ".wav"
	destPath := filepath.Join(a.clipsDir, filename)
	if err := copyFile(segPath, destPath); err != nil {
		return err
	}

	idx[species] = datastore.BestClipEntry{
		Species:        species,
		ScientificName: scientificName,
		Confidence:     confidence,
		SNRdB:          snr,
		Score:          score,
		Timestamp:      timestamp,
		Filename:       filename,
	}
	return a.index.Save(idx)
}

// qualifies reports whether a new (score, confidence) pair beats an
// archived entry: a strictly higher score always wins, whatever the
// confidence; an equal or lower score never does.
func qualifies(newScore, newConfidence float64, existing datastore.BestClipEntry) bool {
	return newScore > existing.Score
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return apperr.New(err).Component("bestclip").Category(apperr.CategorySystem).Build()
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return apperr.New(err).Component("bestclip").Category(apperr.CategorySystem).Build()
	}
	out, err := os.Create(dst)
	if err != nil {
		return apperr.New(err).Component("bestclip").Category(apperr.CategorySystem).Build()
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return apperr.New(err).Component("bestclip").Category(apperr.CategorySystem).Build()
	}
	return out.Sync()
}
