// Package redact strips credentials out of URLs before they're logged
// or displayed, so a stream URL with embedded auth never ends up in an
// event message or a settings dump.
package redact

import (
	"net/url"
	"strings"
)

var sensitiveKeys = []string{"password", "pass", "passwd", "pwd", "token", "api_key", "apikey", "auth", "authorization"}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, k := range sensitiveKeys {
		if lower == k {
			return true
		}
	}
	return strings.Contains(lower, "password") ||
		strings.HasSuffix(lower, "_token") ||
		strings.HasSuffix(lower, "_key")
}

// StreamURL strips userinfo and redacts sensitive query parameters from
// a stream URL, so it's safe to log or return to a dashboard. Applying
// it twice is the same as applying it once: a URL it has already
// redacted has no userinfo and every sensitive query value already
// reads "REDACTED".
func StreamURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.User = nil

	if len(u.RawQuery) > 0 {
		q := u.Query()
		for key := range q {
			if isSensitiveKey(key) {
				q.Set(key, "REDACTED")
			}
		}
		u.RawQuery = q.Encode()
	}

	return u.String()
}
