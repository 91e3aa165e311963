package extractor

import (
	"regexp"
	"strings"

	"guidechat/internal/model"
	"guidechat/internal/reference"
	"guidechat/internal/utils"
)

type cityAlias struct {
	canonical string
	aliases   []string
}

// Centrally-run cities users refer to by short or unaccented names.
var cityAliases = []cityAlias{
	{"Thành phố Hồ Chí Minh", []string{"thành phố hồ chí minh", "hồ chí minh", "tp hcm", "tp.hcm", "tphcm", "hcmc", "hcm", "sài gòn", "sai gon", "saigon", "ho chi minh"}},
	{"Thành phố Hà Nội", []string{"thành phố hà nội", "hà nội", "ha noi", "hanoi", "hn"}},
	{"Thành phố Đà Nẵng", []string{"thành phố đà nẵng", "đà nẵng", "da nang", "danang"}},
	{"Thành phố Hải Phòng", []string{"thành phố hải phòng", "hải phòng", "hai phong"}},
	{"Thành phố Cần Thơ", []string{"thành phố cần thơ", "cần thơ", "can tho"}},
}

var (
	segmentSep  = regexp.MustCompile(`[,;\n]+`)
	wardPrefix  = regexp.MustCompile(`(?:^|\s)(phường|xã|thị trấn|p\.|ward)\s*(\S.*)$`)
	provPrefix  = regexp.MustCompile(`(?:^|\s)(tp\.?|thành phố|tỉnh)\s*(\S.*)$`)
	trimPunct   = " .-:/"
	prefixWords = []string{"tp", "thành phố", "tỉnh", "city", "province"}
)

// Words that end a ward or province name captured after its prefix.
var stopWords = []string{
	"phường", "xã", "thị trấn", "quận", "huyện", "thị xã", "tp", "thành phố", "tỉnh", "gần", "ở", "tại",
}

type span struct{ start, end int }

// Location splits the message into comma-separated fragments and resolves
// at most one ward and one province. Fragments that resolve to nothing are
// kept as keywords.
func (e *Extractor) Location(message string) model.LocationDetails {
	details := model.LocationDetails{Keywords: []string{}, Text: strings.TrimSpace(message)}

	for _, seg := range segmentSep.Split(message, -1) {
		raw := strings.Trim(strings.TrimSpace(seg), trimPunct)
		text := utils.Normalize(raw)
		if text == "" {
			continue
		}
		rest := text
		matched := false

		if details.WardName == "" {
			if ward, sp, ok := matchWard(rest); ok {
				details.WardName = ward
				rest = cut(rest, sp)
				matched = true
			}
		}
		if details.ProvinceName == "" {
			if prov, sp, ok := e.matchProvince(rest); ok {
				details.ProvinceName = prov
				rest = cut(rest, sp)
				matched = true
			}
		}

		switch {
		case !matched:
			details.Keywords = append(details.Keywords, raw)
		case utils.HasLetter(rest):
			details.Keywords = append(details.Keywords, rest)
		}
	}
	return details
}

// Province returns the province named anywhere in the message, or "".
func (e *Extractor) Province(message string) string {
	prov, _, _ := e.matchProvince(utils.Normalize(message))
	return prov
}

func matchWard(text string) (string, span, bool) {
	m := wardPrefix.FindStringSubmatchIndex(text)
	if m == nil {
		return "", span{}, false
	}
	prefix := text[m[2]:m[3]]
	name, end := captureName(text, m[4])
	if name == "" {
		return "", span{}, false
	}
	switch prefix {
	case "p.", "ward":
		return utils.TitleVi(name), span{m[2], end}, true
	default:
		return utils.TitleVi(prefix + " " + name), span{m[2], end}, true
	}
}

func (e *Extractor) matchProvince(text string) (string, span, bool) {
	if m := provPrefix.FindStringSubmatchIndex(text); m != nil {
		name, end := captureName(text, m[4])
		if name != "" {
			if prov := e.canonicalProvince(name); prov != "" {
				return prov, span{m[2], end}, true
			}
		}
	}

	if prov, sp, ok := e.literalProvince(text); ok {
		return prov, sp, true
	}

	for _, w := range prefixWords {
		if utils.ContainsWord(text, w) {
			stripped := text
			for _, p := range prefixWords {
				stripped = strings.ReplaceAll(stripped, p, " ")
			}
			if hit := e.matcher.Match(strings.TrimSpace(stripped), e.provinces()); hit != nil {
				return hit.Name, span{0, len(text)}, true
			}
			break
		}
	}
	return "", span{}, false
}

// literalProvince looks for a known city alias or province name as a whole word.
func (e *Extractor) literalProvince(text string) (string, span, bool) {
	for _, city := range cityAliases {
		for _, alias := range city.aliases {
			if i := utils.IndexWord(text, alias); i >= 0 {
				return e.preferReference(city.canonical), span{i, i + len(alias)}, true
			}
		}
	}

	folded := utils.Fold(text)
	sameLen := len(folded) == len(text)
	for _, p := range reference.BuiltinProvinces() {
		bare := utils.StripAdminPrefix(utils.Normalize(p.Name))
		if i := utils.IndexWord(text, bare); i >= 0 {
			return e.preferReference(p.Name), span{i, i + len(bare)}, true
		}
		if i := utils.IndexWord(folded, utils.Fold(bare)); i >= 0 {
			sp := span{0, len(text)}
			if sameLen {
				sp = span{i, i + len(utils.Fold(bare))}
			}
			return e.preferReference(p.Name), sp, true
		}
	}
	return "", span{}, false
}

// canonicalProvince resolves a name captured after "tp"/"tỉnh"/"thành phố".
func (e *Extractor) canonicalProvince(name string) string {
	for _, city := range cityAliases {
		for _, alias := range city.aliases {
			if name == alias {
				return e.preferReference(city.canonical)
			}
		}
	}
	folded := utils.Fold(name)
	for _, p := range reference.BuiltinProvinces() {
		bare := utils.StripAdminPrefix(utils.Normalize(p.Name))
		if name == bare || folded == utils.Fold(bare) {
			return e.preferReference(p.Name)
		}
	}
	if hit := e.matcher.Match(name, e.provinces()); hit != nil {
		return hit.Name
	}
	return ""
}

// preferReference swaps a built-in name for the loaded reference spelling.
func (e *Extractor) preferReference(name string) string {
	if hit := e.matcher.Match(name, e.provinces()); hit != nil {
		return hit.Name
	}
	return name
}

// captureName reads the name starting at from up to the next stop word.
func captureName(text string, from int) (string, int) {
	end := len(text)
	for _, w := range stopWords {
		if i := utils.IndexWord(text[from:], w); i > 0 && from+i < end {
			end = from + i
		}
	}
	return strings.Trim(text[from:end], trimPunct), end
}

func cut(text string, sp span) string {
	return utils.Normalize(strings.Trim(text[:sp.start]+" "+text[sp.end:], trimPunct))
}
