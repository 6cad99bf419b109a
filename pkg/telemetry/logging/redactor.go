package logging

import (
	"regexp"
	"strings"

	"construct-hq/loom/pkg/config"
)

// Redactor masks secrets in log values.
type Redactor struct {
	patterns []redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternBearerToken = "bearer_token"
	PatternAPIKey      = "api_key"
	PatternPassword    = "password"
)

var defaultPatterns = []redactPattern{
	{
		name:        PatternBearerToken,
		regex:       regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-._~+/]+=*`),
		replacement: "Bearer ***",
	},
	{
		name:        PatternAPIKey,
		regex:       regexp.MustCompile(`(sk-[a-zA-Z0-9_-]{8,}|api[-_]?key[-_:=]\s*[a-zA-Z0-9_-]+)`),
		replacement: "sk-***",
	},
	{
		name:        PatternPassword,
		regex:       regexp.MustCompile(`(password|passwd|pwd)[:=]\s*[^\s]+`),
		replacement: "$1: ***",
	},
}

// sensitiveKeys are attribute key fragments whose values are masked whole.
var sensitiveKeys = []string{
	"key", "token", "secret", "password", "passwd", "authorization", "auth",
}

// NewRedactor creates a Redactor with the built-in patterns followed by
// custom ones. Invalid custom patterns are skipped; config validation
// rejects them earlier.
func NewRedactor(custom []config.RedactPattern) *Redactor {
	r := &Redactor{patterns: append([]redactPattern(nil), defaultPatterns...)}
	for _, p := range custom {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.patterns = append(r.patterns, redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		})
	}
	return r
}

// RedactString applies every pattern to value.
func (r *Redactor) RedactString(value string) string {
	if r == nil || value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// IsSensitiveKey reports whether an attribute key names a secret.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// RedactAPIKey keeps the first four characters of a key.
func RedactAPIKey(apiKey string) string {
	if len(apiKey) <= 4 {
		return "***"
	}
	return apiKey[:4] + "***"
}
