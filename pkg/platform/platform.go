// Package platform maps free text onto canonical promotion platform names.
package platform

import (
	"slices"
	"strings"
)

const (
	TikTok    = "TikTok"
	Facebook  = "Facebook"
	Instagram = "Instagram"
	X         = "X (Twitter)"
)

type keyword struct {
	match     string
	canonical string
}

// keywords is matched in order; the order decides the output order.
// Short keywords ("x", "ins", "fb") match as plain substrings, so they also fire inside
// unrelated words.
var keywords = []keyword{
	{"tiktok", TikTok},
	{"抖音", TikTok},
	{"facebook", Facebook},
	{"fb", Facebook},
	{"instagram", Instagram},
	{"ins", Instagram},
	{"twitter", X},
	{"x", X},
}

// Extract returns the canonical platforms mentioned in message, case-insensitively,
// each at most once, in keyword-table order.
func Extract(message string) []string {
	lower := strings.ToLower(message)
	found := make([]string, 0, 4)
	for _, kw := range keywords {
		if !strings.Contains(lower, kw.match) {
			continue
		}
		if slices.Contains(found, kw.canonical) {
			continue
		}
		found = append(found, kw.canonical)
	}
	return found
}

// Canonical lists every canonical platform name in table order.
func Canonical() []string {
	out := make([]string, 0, 4)
	for _, kw := range keywords {
		if !slices.Contains(out, kw.canonical) {
			out = append(out, kw.canonical)
		}
	}
	return out
}
