package pipeline

import (
	"net/url"

	"github.com/livingstonekit-alt/feather-front/internal/buildinfo"
	"github.com/livingstonekit-alt/feather-front/internal/classify"
	"github.com/livingstonekit-alt/feather-front/internal/conf"
)

// validateSettings runs a best-effort sanity pass over freshly loaded
// settings, surfacing malformed stream URLs or classifier templates as
// warnings/errors. None of this blocks startup: a bad template only
// fails once the Classifier Pool actually tries to use it, but logging
// it up front saves an operator from waiting for the first detection
// window to notice.
func validateSettings(settings conf.Settings) *buildinfo.ValidationResult {
	result := buildinfo.NewValidationResult()

	if settings.StreamURL == "" {
		result.AddWarning("stream_url is empty; capture will have nothing to record")
	} else if _, err := url.Parse(settings.StreamURL); err != nil {
		result.AddError("stream_url: " + err.Error())
	}

	if settings.ClassifierTemplate == "" {
		result.AddWarning("classifier_template is empty; classification will fail at runtime")
	} else if _, err := classify.Render(settings.ClassifierTemplate, classify.Vars{Input: "in", Output: "out"}); err != nil {
		result.AddError("classifier_template: " + err.Error())
	}

	return result
}
