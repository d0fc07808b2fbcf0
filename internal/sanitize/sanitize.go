// Package sanitize cleans user-entered names before they reach the
// session ledger or group documents. Letters from any locale are kept;
// everything outside a small allow-list is dropped.
package sanitize

import (
	"strings"
	"unicode"
)

const (
	maxCategoryLen   = 30
	maxGroupNameLen  = 50
	maxInviteCodeLen = 10
	maxUsernameLen   = 30
)

func keep(input string, extra string, maxLen int) string {
	var b strings.Builder
	for _, r := range input {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || strings.ContainsRune(extra, r):
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if len([]rune(out)) > maxLen {
		out = string([]rune(out)[:maxLen])
	}
	return strings.TrimSpace(out)
}

// Category keeps letters, digits, spaces, hyphens and underscores,
// capped at 30 characters.
func Category(s string) string {
	return keep(s, "-_", maxCategoryLen)
}

// GroupName keeps the category character set, capped at 50 characters.
func GroupName(s string) string {
	return keep(s, "-_", maxGroupNameLen)
}

// InviteCode uppercases and strips everything but A-Z0-9, capped at 10.
func InviteCode(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > maxInviteCodeLen {
		out = out[:maxInviteCodeLen]
	}
	return out
}

// Username keeps letters, digits, spaces, and -_. characters, capped at 30.
func Username(s string) string {
	return keep(s, "-_.", maxUsernameLen)
}
