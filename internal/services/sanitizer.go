package services

import (
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips all markup from user text before it is stored.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

func (s *Sanitizer) Text(in string) string {
	return strings.TrimSpace(s.policy.Sanitize(in))
}

// textLength counts runes, matching how lengths are validated on input.
func textLength(s string) int {
	return utf8.RuneCountInString(s)
}
