// Package normalize computes the canonical form of user-entered names
// and keys: trimmed, lowercased, internal whitespace runs collapsed to
// a single space. Two raw strings that normalize identically are the
// same identity within their uniqueness scope.
package normalize

import "strings"

// Key is idempotent: Key(Key(s)) == Key(s).
func Key(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// KeyPtr maps a missing key to a missing key.
func KeyPtr(s *string) *string {
	if s == nil {
		return nil
	}
	k := Key(*s)
	return &k
}
