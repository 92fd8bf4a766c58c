package normalization

import "strings"

// ParseInputString collapses surrounding whitespace on free-form user input.
func ParseInputString(s string) string {
  return strings.TrimSpace(s)
}

// ParseEmail lowercases in addition to trimming; emails are compared
// case-insensitively everywhere.
func ParseEmail(s string) string {
  return strings.ToLower(strings.TrimSpace(s))
}
