package services

import (
	"regexp"
	"strings"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9\s_-]`)
	slugSeparators   = regexp.MustCompile(`[\s_-]+`)
)

// Slugify turns a display name into a URL-safe identifier:
// "Bug Report (v2)" becomes "bug-report-v2".
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	slug = slugSeparators.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// resolveSlug uses the explicit slug when given, otherwise derives one from name.
func resolveSlug(explicit, name string) (string, error) {
	source := explicit
	if strings.TrimSpace(source) == "" {
		source = name
	}
	slug := Slugify(source)
	if slug == "" {
		return "", validationError("slug cannot be derived from an empty name", map[string]interface{}{"name": name})
	}
	return slug, nil
}
