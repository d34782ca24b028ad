package platform

import (
	"fmt"
	"runtime"
	"slices"
	"strings"
)

// CurrentOS returns the installer operating system matching the running
// binary, or an empty string when there is none.
func CurrentOS() string {
	os := NormalizeOS(runtime.GOOS)
	if !slices.Contains(ValidOS(), os) {
		return ""
	}
	return os
}

// NormalizeOS normalizes OS names to the catalog's labels
func NormalizeOS(os string) string {
	os = strings.ToLower(strings.TrimSpace(os))
	switch os {
	case "darwin", "osx", "macos":
		return OSMac
	case "win":
		return OSWindows
	default:
		return os
	}
}

// NormalizeLanguage lowercases a language code.
func NormalizeLanguage(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

// ParseOS normalizes every value and rejects unknown operating systems.
func ParseOS(values []string) ([]string, error) {
	return parseAll(values, NormalizeOS, ValidOS(), "operating system")
}

// ParseLanguages normalizes every value and rejects unknown language codes.
func ParseLanguages(values []string) ([]string, error) {
	return parseAll(values, NormalizeLanguage, ValidLanguages(), "language")
}

func parseAll(values []string, normalize func(string) string, valid []string, what string) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, v := range values {
		n := normalize(v)
		if !slices.Contains(valid, n) {
			return nil, fmt.Errorf("the %s %q is not supported, valid values: %s", what, v, strings.Join(valid, ", "))
		}
		out = append(out, n)
	}
	return out, nil
}
