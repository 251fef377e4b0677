// Package logutil holds helpers for keeping personal data out of logs.
package logutil

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/mailcast/mailcast/internal/model"
)

// RedactEmail masks the local part of an address, keeping at most the
// first two characters.
func RedactEmail(email string) string {
	name, domain, ok := strings.Cut(email, "@")
	if !ok || domain == "" || strings.Contains(domain, "@") {
		return "***@***"
	}
	if len(name) > 2 {
		return name[:2] + "***@" + domain
	}
	return "***@" + domain
}

// RedactKey keeps only the key prefix.
func RedactKey(key model.APIKey) string {
	if key == "" {
		return ""
	}
	return key.Prefix() + "…"
}

// RedactURL strips the password from a connection URL.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable>"
	}
	return u.Redacted()
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

// SanitizeError renders err with every secret URL replaced by its redacted
// form and inline password parameters masked.
func SanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		msg = strings.ReplaceAll(msg, secret, RedactURL(secret))
	}
	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
