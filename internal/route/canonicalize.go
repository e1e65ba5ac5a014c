package route

import (
	"errors"
	"strings"
)

// Path canonicalization errors.
var (
	ErrBackslashInPath      = errors.New("path contains backslash")
	ErrNullByteInPath       = errors.New("path contains null byte")
	ErrInvalidPercentEscape = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot      = errors.New("path escapes root via ..")
)

// Canonicalize normalizes a request path so it can be matched against the
// table:
//   - a query string is dropped
//   - a missing leading slash is added
//   - repeated slashes collapse ("/quiz//results" -> "/quiz/results")
//   - "." segments are removed and ".." segments are resolved
//   - a trailing slash is removed, except for the root "/"
//
// Backslashes, NUL bytes, malformed percent escapes and ".." above the root
// are rejected.
func Canonicalize(raw string) (string, error) {
	path, _, _ := strings.Cut(raw, "?")
	if path == "" {
		return "/", nil
	}

	if strings.Contains(path, `\`) {
		return "", ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return "", ErrNullByteInPath
	}
	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return "", err
		}
	}

	segments := strings.Split(path, "/")
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(out) == 0 {
				return "", ErrPathEscapesRoot
			}
			out = out[:len(out)-1]
		default:
			out = append(out, seg)
		}
	}

	return "/" + strings.Join(out, "/"), nil
}

// IsCanonical reports whether path is already in canonical form.
func IsCanonical(path string) bool {
	c, err := Canonicalize(path)
	return err == nil && c == path
}

func validatePercentEscapes(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
