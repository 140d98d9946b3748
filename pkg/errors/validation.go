package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// domainNameRegex matches stimulus feed domain keys such as "lists", "trees" or "strings-2".
var domainNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// ValidateDomainName validates a stimulus domain name.
// Domain names appear in URLs and cache keys, so they are restricted to
// lowercase identifiers of at most 64 characters.
func ValidateDomainName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidDomain, "domain name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidDomain, "domain name too long (max 64 characters)")
	}
	if !domainNameRegex.MatchString(name) {
		return New(ErrCodeInvalidDomain, "invalid domain name: %q", name)
	}
	return nil
}

// ValidateConceptID validates a list-routine concept id.
// Concept files are numbered c001 through c999.
func ValidateConceptID(id int) error {
	if id < 1 || id > 999 {
		return New(ErrCodeInvalidInput, "concept id out of range: %d (must be 1-999)", id)
	}
	return nil
}

// ValidatePath validates a relative file path below a stimulus directory.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
