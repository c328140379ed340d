package system

import "strings"

// Tail returns the last n runes of s, or all of s when it is shorter.
func Tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

// Redact masks a secret for log output, keeping only its last 3 runes.
// Empty input stays empty so "no value" remains distinguishable.
func Redact(secret string) string {
	if secret == "" {
		return ""
	}
	if len([]rune(secret)) <= 3 {
		return strings.Repeat("*", 3)
	}
	return "***" + Tail(secret, 3)
}
