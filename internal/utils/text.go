package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var viTitle = cases.Title(language.Vietnamese)

// Normalize composes s to NFC, lowercases it and collapses whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(norm.NFC.String(s))), " ")
}

// Fold strips Vietnamese diacritics so "Hồ Chí Minh" and "ho chi minh" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.NewReplacer("đ", "d", "Đ", "D").Replace(out)
}

// TitleVi title-cases s with Vietnamese rules.
func TitleVi(s string) string {
	return viTitle.String(strings.TrimSpace(s))
}

// IndexWord returns the byte index of the first occurrence of word in s that
// is not glued to another letter or digit, or -1.
func IndexWord(s, word string) int {
	if word == "" {
		return -1
	}
	from := 0
	for from <= len(s)-len(word) {
		i := strings.Index(s[from:], word)
		if i < 0 {
			return -1
		}
		i += from
		if boundaryBefore(s, i) && boundaryAfter(s, i+len(word)) {
			return i
		}
		from = i + 1
	}
	return -1
}

// ContainsWord reports whether word occurs in s as a whole word.
func ContainsWord(s, word string) bool {
	return IndexWord(s, word) >= 0
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// HasLetter reports whether s contains at least one letter.
func HasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}
