package auth

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultDomain is the hosted service used when no domain is configured.
const DefaultDomain = "https://app.infisical.com"

var schemePrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

// NormalizeDomain trims whitespace and trailing slashes from raw and prefixes
// https:// when no URI scheme is present.
func NormalizeDomain(raw string) (string, error) {
	d := strings.TrimSpace(raw)
	if d == "" {
		return "", ErrMissingDomain
	}
	if !schemePrefix.MatchString(d) {
		d = "https://" + d
	}

	u, err := url.Parse(d)
	if err != nil || u.Hostname() == "" {
		return "", ErrInvalidDomain
	}
	return strings.TrimRight(d, "/"), nil
}
