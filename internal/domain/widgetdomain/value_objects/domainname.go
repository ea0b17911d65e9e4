package value_objects

import (
	"fmt"
	"strings"
)

// DomainName is the normalized hostname a widget authorization record is
// keyed by: lowercase, no scheme, no leading www, no port, no path.
type DomainName string

// Normalize reduces raw user input to the canonical hostname form.
// Normalization is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	name := strings.TrimSpace(strings.ToLower(raw))

	if idx := strings.Index(name, "://"); idx >= 0 {
		name = name[idx+3:]
	}
	name = strings.TrimPrefix(name, "www.")

	// Strip path, query, and fragment.
	for _, sep := range []string{"/", "?", "#"} {
		if idx := strings.Index(name, sep); idx >= 0 {
			name = name[:idx]
		}
	}

	// Strip a port, but leave bare IPv6 literals alone.
	if idx := strings.LastIndex(name, ":"); idx >= 0 && strings.Count(name, ":") == 1 {
		name = name[:idx]
	}

	return strings.TrimSpace(name)
}

// NewDomainName validates and normalizes a raw domain string.
func NewDomainName(raw string) (DomainName, error) {
	name := Normalize(raw)
	if name == "" {
		return "", fmt.Errorf("domain name cannot be empty")
	}
	if strings.ContainsAny(name, " \t") {
		return "", fmt.Errorf("domain name contains whitespace: %q", raw)
	}
	return DomainName(name), nil
}

// String returns the normalized hostname.
func (d DomainName) String() string {
	return string(d)
}

// Equals compares two normalized domain names.
func (d DomainName) Equals(other DomainName) bool {
	return d == other
}
