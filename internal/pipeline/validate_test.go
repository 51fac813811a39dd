package pipeline

import (
	"testing"

	"github.com/livingstonekit-alt/feather-front/internal/conf"
)

func TestValidateSettingsFlagsEmptyFields(t *testing.T) {
	result := validateSettings(conf.Settings{})
	if !result.HasIssues() {
		t.Fatal("expected empty stream_url and classifier_template to be flagged")
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(result.Warnings), result.Warnings)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("expected no errors for merely-empty fields, got %v", result.Errors)
	}
}

func TestValidateSettingsFlagsBadTemplate(t *testing.T) {
	result := validateSettings(conf.Settings{
		StreamURL:          "rtsp://example.com/stream",
		ClassifierTemplate: "classifier --in {input}",
	})
	if result.Valid {
		t.Fatal("expected a template missing {output} to be invalid")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
}

func TestValidateSettingsAcceptsWellFormedSettings(t *testing.T) {
	result := validateSettings(conf.Settings{
		StreamURL:          "rtsp://example.com/stream",
		ClassifierTemplate: "classifier --in {input} --out {output}",
	})
	if result.HasIssues() {
		t.Fatalf("expected no issues, got warnings=%v errors=%v", result.Warnings, result.Errors)
	}
}
