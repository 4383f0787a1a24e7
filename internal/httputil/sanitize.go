package httputil

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// validIDPattern matches station IDs: lowercase-friendly slugs.
	validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// slugCollapse matches runs of characters not allowed in a slug.
	slugCollapse = regexp.MustCompile(`[^a-z0-9]+`)
)

// ValidateURL checks that a URL is well-formed and uses HTTP or HTTPS.
// Plain HTTP is accepted because many radio streams are only served that way.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("only HTTP(S) URLs are allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// ValidateID checks that a station ID contains only safe characters.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}
	if len(id) > 64 {
		return fmt.Errorf("ID too long: %d characters", len(id))
	}
	if !validIDPattern.MatchString(id) {
		return fmt.Errorf("ID contains invalid characters: %q", id)
	}
	return nil
}

// Slug turns a display name into a station ID candidate.
// Returns "station" when nothing usable remains.
func Slug(name string) string {
	s := slugCollapse.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if len(s) > 48 {
		s = strings.TrimRight(s[:48], "-")
	}
	if s == "" {
		return "station"
	}
	return s
}

// ResolveURL resolves href against the page it was found on.
func ResolveURL(base, href string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("parsing link %q: %w", href, err)
	}
	return b.ResolveReference(ref).String(), nil
}
