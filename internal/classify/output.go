package classify

import (
	"path/filepath"
	"strings"

	"github.com/livingstonekit-alt/feather-front/internal/datastore"
)

// resolvedOutput describes where one invocation's classifier output
// will land.
type resolvedOutput struct {
	// csvPath is the exact file the classifier is expected to produce.
	csvPath string
	// invocationDir is non-empty when a fresh per-invocation
	// subdirectory was created under the template's {output} directory,
	// and must be removed once the invocation is done with it.
	invocationDir string
}

// resolveOutput inspects the template's raw {output} substitution: if
// it names a .csv file, the classifier writes there directly; otherwise
// it's a directory, and a fresh per-invocation subdirectory isolates
// concurrent workers from each other's output.
func resolveOutput(outputArg, inputPath string) (resolvedOutput, error) {
	if strings.EqualFold(filepath.Ext(outputArg), ".csv") {
		return resolvedOutput{csvPath: outputArg}, nil
	}

	invocationDir := filepath.Join(outputArg, datastore.NewOpaqueID())
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return resolvedOutput{
		csvPath:       filepath.Join(invocationDir, stem+".BirdNET.results.csv"),
		invocationDir: invocationDir,
	}, nil
}
