package utils

import (
	"strings"

	"guidechat/internal/model"
)

// DefaultMatchThreshold is the lowest score Match accepts.
const DefaultMatchThreshold = 0.6

const (
	minWordOverlap = 0.5
	minCharJaccard = 0.7
)

// Administrative levels named by a leading prefix.
const (
	levelProvince = "province"
	levelDistrict = "district"
	levelWard     = "ward"
)

type adminPrefix struct {
	text  string
	level string
}

// Administrative prefixes dropped before comparing place names. Longer forms
// come first so "thành phố" wins over "tp".
var adminPrefixes = []adminPrefix{
	{"thành phố ", levelProvince}, {"thanh pho ", levelProvince},
	{"thị trấn ", levelWard}, {"thi tran ", levelWard},
	{"thị xã ", levelDistrict}, {"thi xa ", levelDistrict},
	{"phường ", levelWard}, {"phuong ", levelWard},
	{"huyện ", levelDistrict}, {"huyen ", levelDistrict},
	{"quận ", levelDistrict}, {"quan ", levelDistrict},
	{"tỉnh ", levelProvince}, {"tinh ", levelProvince},
	{"xã ", levelWard},
	{"tp. ", levelProvince}, {"tp.", levelProvince}, {"tp ", levelProvince},
	{"p. ", levelWard}, {"p.", levelWard},
	{"q. ", levelDistrict}, {"q.", levelDistrict},
}

// FuzzyMatcher picks the reference entry closest to a free-text keyword.
type FuzzyMatcher struct {
	threshold float64
}

// NewFuzzyMatcher creates a matcher using DefaultMatchThreshold.
func NewFuzzyMatcher() *FuzzyMatcher {
	return &FuzzyMatcher{threshold: DefaultMatchThreshold}
}

// Match returns the best candidate for keyword, or nil when none scores at
// least the threshold. Ties go to the earlier candidate.
//
// Names are compared without their administrative prefix and with
// diacritics folded. A candidate whose prefix names a different level than
// the keyword's ("quận 1" against "phường 1") is never matched.
func (m *FuzzyMatcher) Match(keyword string, candidates []model.ReferenceEntry) *model.ReferenceEntry {
	kw := Normalize(keyword)
	if kw == "" {
		return nil
	}

	for i := range candidates {
		if Normalize(candidates[i].Name) == kw {
			return &candidates[i]
		}
	}

	kwLevel, kwName := splitAdminPrefix(kw)
	kwKey := Fold(kwName)
	bestIdx := -1
	bestScore := 0.0
	for i := range candidates {
		level, name := splitAdminPrefix(Normalize(candidates[i].Name))
		if name == "" || !sameLevel(kwLevel, level) {
			continue
		}
		if name == kwName {
			return &candidates[i]
		}
		if s := score(kwKey, Fold(name)); s > bestScore {
			bestScore = s
			bestIdx = i
		}
	}

	if bestIdx < 0 || bestScore < m.threshold {
		return nil
	}
	return &candidates[bestIdx]
}

// Score compares two strings the way Match does, without the threshold.
func (m *FuzzyMatcher) Score(a, b string) float64 {
	la, na := splitAdminPrefix(Normalize(a))
	lb, nb := splitAdminPrefix(Normalize(b))
	if na == "" || nb == "" || !sameLevel(la, lb) {
		return 0
	}
	return score(MatchKey(na), MatchKey(nb))
}

// MatchKey is the form names are compared in: normalized, without an
// administrative prefix and with diacritics folded.
func MatchKey(s string) string {
	_, name := splitAdminPrefix(Normalize(s))
	return Fold(name)
}

// StripAdminPrefix removes one leading administrative prefix from a
// normalized place name.
func StripAdminPrefix(s string) string {
	_, name := splitAdminPrefix(s)
	return name
}

func splitAdminPrefix(s string) (level, name string) {
	for _, p := range adminPrefixes {
		if strings.HasPrefix(s, p.text) && len(s) > len(p.text) {
			return p.level, strings.TrimSpace(s[len(p.text):])
		}
	}
	return "", s
}

func sameLevel(a, b string) bool {
	return a == "" || b == "" || a == b
}

// score is 1 for equal keys, else the best accepted heuristic.
func score(a, b string) float64 {
	if a == b {
		return 1
	}
	best := 0.0

	if strings.Contains(a, b) || strings.Contains(b, a) {
		la, lb := runeLen(a), runeLen(b)
		best = float64(min(la, lb)) / float64(max(la, lb))
	}

	if s := wordOverlap(a, b); s >= minWordOverlap && s > best {
		best = s
	}

	if s := charJaccard(a, b); s >= minCharJaccard && s > best {
		best = s
	}

	return best
}

func wordOverlap(a, b string) float64 {
	wa, wb := wordSet(a), wordSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	common := 0
	for w := range wa {
		if wb[w] {
			common++
		}
	}
	return float64(common) / float64(max(len(wa), len(wb)))
}

func charJaccard(a, b string) float64 {
	ca, cb := charSet(a), charSet(b)
	union := len(ca)
	inter := 0
	for r := range cb {
		if ca[r] {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}

func charSet(s string) map[rune]bool {
	set := make(map[rune]bool)
	for _, r := range s {
		if r != ' ' {
			set[r] = true
		}
	}
	return set
}

func runeLen(s string) int {
	return len([]rune(s))
}
