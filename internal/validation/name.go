package validation

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	ErrNameRequired = errors.New("name is required")
	ErrNameTooLong  = errors.New("name is too long (max 255 characters)")
)

// disallowedNameChars matches everything outside ASCII letters, digits,
// CJK unified ideographs and the separators . - _
var disallowedNameChars = regexp.MustCompile(`[^a-zA-Z0-9\x{4e00}-\x{9fa5}._-]`)

// SanitizeName NFC-normalizes name and strips disallowed characters.
// It fails when nothing usable remains.
func SanitizeName(name string) (string, error) {
	cleaned := disallowedNameChars.ReplaceAllString(norm.NFC.String(name), "")

	if strings.Trim(cleaned, ".") == "" {
		return "", ErrNameRequired
	}

	if len(cleaned) > 255 {
		return "", ErrNameTooLong
	}

	return cleaned, nil
}

// SplitName splits a file name at its last dot, the same rule model.Ext
// applies. A leading-dot name such as ".txt" has an empty base.
func SplitName(name string) (base, ext string) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}
