package classify

import (
	"strconv"
	"strings"

	"github.com/livingstonekit-alt/feather-front/internal/apperr"
	"github.com/livingstonekit-alt/feather-front/internal/conf"
)

// Vars holds the per-invocation substitution values for a classifier
// command template.
type Vars struct {
	Input          string
	Output         string
	MinConfidence  float64
	SegmentSeconds int
	Latitude       float64
	Longitude      float64
	Week           int
}

func varsFrom(settings conf.Settings, input, output string, week int) Vars {
	return Vars{
		Input:          input,
		Output:         output,
		MinConfidence:  settings.MinConfidence,
		SegmentSeconds: settings.SegmentSeconds,
		Latitude:       settings.Latitude,
		Longitude:      settings.Longitude,
		Week:           week,
	}
}

// Render substitutes every recognized placeholder in template and
// shell-tokenizes the result into an argv. The template must contain
// {input} and {output}; their absence is reported as a distinct,
// user-facing error.
func Render(template string, v Vars) ([]string, error) {
	if !strings.Contains(template, "{input}") || !strings.Contains(template, "{output}") {
		return nil, apperr.New(nil).Component("classify").Category(apperr.CategoryConfig).
			Context("reason", "template must include {input} and {output}").Build()
	}

	replacer := strings.NewReplacer(
		"{input}", shellQuote(v.Input),
		"{output}", shellQuote(v.Output),
		"{min_conf}", strconv.FormatFloat(v.MinConfidence, 'g', -1, 64),
		"{segment}", strconv.Itoa(v.SegmentSeconds),
		"{segment_seconds}", strconv.Itoa(v.SegmentSeconds),
		"{lat}", strconv.FormatFloat(v.Latitude, 'g', -1, 64),
		"{latitude}", strconv.FormatFloat(v.Latitude, 'g', -1, 64),
		"{lon}", strconv.FormatFloat(v.Longitude, 'g', -1, 64),
		"{longitude}", strconv.FormatFloat(v.Longitude, 'g', -1, 64),
		"{week}", strconv.Itoa(v.Week),
	)
	cmd := replacer.Replace(template)
	return tokenize(cmd)
}

// shellQuote wraps a path substitution in single quotes, escaping any
// embedded single quote the POSIX-shell way, so a path with spaces or
// other shell metacharacters survives tokenization intact.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// tokenize splits a command string into an argv the way a POSIX shell
// would: whitespace-separated, with single and double quoting
// supported and backslash escapes honored outside single quotes. There
// is no shlex-equivalent library anywhere in reach, so this is the
// minimal hand-rolled state machine the job needs.
func tokenize(s string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	haveToken := false

	const (
		none = iota
		single
		double
	)
	quote := none

	flush := func() {
		if haveToken {
			tokens = append(tokens, cur.String())
			cur.Reset()
			haveToken = false
		}
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch quote {
		case single:
			if r == '\'' {
				quote = none
			} else {
				cur.WriteRune(r)
			}
			haveToken = true
			continue
		case double:
			if r == '"' {
				quote = none
				haveToken = true
				continue
			}
			if r == '\\' && i+1 < len(runes) && (runes[i+1] == '"' || runes[i+1] == '\\') {
				i++
				cur.WriteRune(runes[i])
				haveToken = true
				continue
			}
			cur.WriteRune(r)
			haveToken = true
			continue
		}

		switch {
		case r == '\'':
			quote = single
			haveToken = true
		case r == '"':
			quote = double
			haveToken = true
		case r == '\\' && i+1 < len(runes):
			i++
			cur.WriteRune(runes[i])
			haveToken = true
		case r == ' ' || r == '\t' || r == '\n':
			flush()
		default:
			cur.WriteRune(r)
			haveToken = true
		}
	}
	flush()

	if quote != none {
		return nil, apperr.New(nil).Component("classify").Category(apperr.CategoryConfig).
			Context("reason", "unterminated quote in classifier_template").Build()
	}
	return tokens, nil
}
