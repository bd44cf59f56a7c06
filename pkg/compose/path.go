package compose

import (
	"fmt"
	"strings"
	"unicode"
)

// NormalizePath returns the canonical form of p: a single leading slash, no
// repeated slashes and no trailing slash (except for the root "/").
// Empty paths, dot segments, whitespace, control characters and query or
// fragment markers cannot be normalized and yield ErrInvalidPath.
func NormalizePath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	for _, r := range p {
		if invalidPathRune(r) {
			return "", fmt.Errorf("%w: illegal character %q", ErrInvalidPath, r)
		}
	}

	segments := strings.Split(p, "/")
	kept := segments[:0]
	for _, s := range segments {
		switch s {
		case "":
			continue
		case ".", "..":
			return "", fmt.Errorf("%w: dot segment", ErrInvalidPath)
		}
		kept = append(kept, s)
	}

	return "/" + strings.Join(kept, "/"), nil
}

// JoinPath concatenates an already-resolved scope prefix with a child path.
// Both sides are normalized, so "/collection/" + "/inner" and
// "/collection" + "inner" both yield "/collection/inner".
func JoinPath(prefix, p string) (string, error) {
	base, err := NormalizePath(prefix)
	if err != nil {
		return "", err
	}
	child, err := NormalizePath(p)
	if err != nil {
		return "", err
	}

	switch {
	case base == "/":
		return child, nil
	case child == "/":
		return base, nil
	default:
		return base + child, nil
	}
}

func invalidPathRune(r rune) bool {
	return r == '?' || r == '#' || unicode.IsSpace(r) || unicode.IsControl(r)
}
