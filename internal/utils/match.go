package utils

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// WholeWordMatch reports whether term occurs in text bounded by non-word
// characters on both sides. "rice" matches "rice field" but not "ricecrop".
func WholeWordMatch(text, term string) bool {
	if term == "" {
		return false
	}
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(term) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// FirstWholeWordMatch returns the first vocabulary entry that occurs in
// text as a whole word, or "" if none does. Callers should pass the
// vocabulary through SortVocabulary first so that precedence between
// overlapping entries is deterministic.
func FirstWholeWordMatch(text string, vocabulary []string) string {
	for _, term := range vocabulary {
		if WholeWordMatch(text, term) {
			return term
		}
	}
	return ""
}

// SortVocabulary deduplicates entries and orders them longest first, with
// ties broken lexicographically. Longer entries win over their substrings
// ("basmati rice" before "rice") instead of depending on table row order.
func SortVocabulary(entries []string) []string {
	seen := make(map[string]bool, len(entries))
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" || seen[entry] {
			continue
		}
		seen[entry] = true
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// TitleCase capitalizes the first letter of each space-separated word.
// Lookup keys are stored lowercase; user-facing text restores the casing.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}
	return strings.Join(words, " ")
}
