package publish

import "strings"

const redactedText = "***REDACTED***"

// Redactor masks loaded secrets in text that may reach logs or stderr.
type Redactor struct {
	secrets []string
}

// Add registers a secret. Empty values are ignored.
func (r *Redactor) Add(secret string) {
	if secret == "" {
		return
	}
	r.secrets = append(r.secrets, secret)
}

// Loaded reports whether any secret has been registered. When false,
// Redact has nothing to mask and returns its input unchanged.
func (r *Redactor) Loaded() bool {
	return r != nil && len(r.secrets) > 0
}

// Redact replaces every registered secret in s.
func (r *Redactor) Redact(s string) string {
	if !r.Loaded() {
		return s
	}
	for _, secret := range r.secrets {
		s = strings.ReplaceAll(s, secret, redactedText)
	}
	return s
}
