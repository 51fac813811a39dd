package capture

import (
	"os/exec"

	"github.com/livingstonekit-alt/feather-front/internal/apperr"
)

// fallbackLocations is the small fixed list of system paths checked
// when the capture tool isn't found on PATH.
var fallbackLocations = []string{
	"/usr/bin/ffmpeg",
	"/usr/local/bin/ffmpeg",
	"/opt/homebrew/bin/ffmpeg",
}

// ResolveTool finds the capture tool binary, preferring PATH and
// falling back to a small fixed list of system locations.
func ResolveTool(name string) (string, error) {
	if name == "" {
		name = "ffmpeg"
	}
	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}
	for _, candidate := range fallbackLocations {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", apperr.New(nil).Component("capture").Category(apperr.CategorySystem).
		Context("tool", name).Build()
}
