// Package sanitize strips credentials and personal data from free text before
// it leaves the device. The diagnosis service applies the same redaction
// server-side; doing it here keeps secrets out of transit and out of logs.
package sanitize

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	emailPattern  = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern  = regexp.MustCompile(`\+?\d[\d\s()-]{7,}\d`)
	jwtPattern    = regexp.MustCompile(`\b[A-Za-z0-9_-]{16,}\.[A-Za-z0-9_-]{16,}\.[A-Za-z0-9_-]{16,}\b`)
	uuidPattern   = regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`)
	bearerPattern = regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._\-]+(?:\.[A-Za-z0-9._\-]+){0,2}`)
	secretPattern = regexp.MustCompile(`(?i)(api[_-]?key|token|secret|password)\s*[:=]\s*[^\s,;]+`)
)

// Redact replaces emails, phone numbers, JWTs, UUIDs, bearer tokens and
// key=value secrets with fixed placeholders. Order matters: bearer tokens
// must be handled before the generic key=value rule.
func Redact(value string) string {
	if strings.TrimSpace(value) == "" {
		return value
	}

	redacted := value
	redacted = emailPattern.ReplaceAllString(redacted, "[redacted-email]")
	redacted = phonePattern.ReplaceAllString(redacted, "[redacted-phone]")
	redacted = jwtPattern.ReplaceAllString(redacted, "[redacted-jwt]")
	redacted = uuidPattern.ReplaceAllString(redacted, "[redacted-uuid]")
	redacted = bearerPattern.ReplaceAllString(redacted, "Bearer [redacted]")
	redacted = secretPattern.ReplaceAllString(redacted, "${1}=[redacted]")
	return redacted
}

// RedactMap redacts every value of a string map, returning a new map.
func RedactMap(input map[string]string) map[string]string {
	if len(input) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(input))
	for k, v := range input {
		out[k] = Redact(v)
	}
	return out
}

// Pseudonymize turns a user identifier into a stable opaque handle so the
// service can correlate requests without learning who the user is.
func Pseudonymize(value string) string {
	if strings.TrimSpace(value) == "" {
		return "user-anonymous"
	}
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(value))))
	return "user-" + hex.EncodeToString(sum[:])[:12]
}
