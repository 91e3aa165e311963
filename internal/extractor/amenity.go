package extractor

import (
	"sort"
	"strings"

	"guidechat/internal/model"
	"guidechat/internal/utils"
)

type amenitySynonym struct {
	name     string
	keywords []string
}

// Scanned in order; each matching entry contributes its display name once.
var amenitySynonyms = []amenitySynonym{
	{"Wifi", []string{"wifi", "wi-fi", "mạng", "internet"}},
	{"Máy lạnh", []string{"điều hòa", "điều hoà", "máy lạnh", "air conditioner", "ac"}},
	{"Tủ lạnh", []string{"tủ lạnh", "tủ đá", "refrigerator", "fridge"}},
	{"Ban công", []string{"ban công", "balcony", "sân phơi"}},
	{"Máy giặt", []string{"máy giặt", "washing machine"}},
	{"Tủ quần áo", []string{"tủ quần áo", "tủ áo", "wardrobe"}},
	{"Nhà bếp", []string{"nhà bếp", "bếp", "kitchen", "nấu ăn"}},
	{"Bãi đỗ xe", []string{"bãi đỗ xe", "gửi xe", "đỗ xe", "parking", "chỗ để xe"}},
	{"Thang máy", []string{"thang máy", "elevator", "lift"}},
	{"Tivi", []string{"tivi", "tv", "television"}},
	{"Bảo vệ 24/7", []string{"bảo vệ", "an ninh", "security"}},
}

// AmenityNames returns the de-duplicated, sorted display names of the
// amenities mentioned in the message.
func AmenityNames(message string) []string {
	text := utils.Normalize(message)
	seen := make(map[string]bool)
	names := []string{}
	for _, syn := range amenitySynonyms {
		for _, kw := range syn.keywords {
			if mentions(text, kw) {
				if !seen[syn.name] {
					seen[syn.name] = true
					names = append(names, syn.name)
				}
				break
			}
		}
	}
	sort.Strings(names)
	return names
}

// ResolveAmenities maps display names to reference ids. Names without a
// match are returned in unresolved, in input order.
func (e *Extractor) ResolveAmenities(names []string) (ids []string, unresolved []string) {
	ids = []string{}
	unresolved = []string{}
	candidates := e.amenities()
	seen := make(map[string]bool)

	for _, name := range names {
		hit := e.matcher.Match(name, candidates)
		if hit == nil {
			for _, kw := range synonymsOf(name) {
				if hit = e.matcher.Match(kw, candidates); hit != nil {
					break
				}
			}
		}
		if hit == nil || hit.ID == "" {
			unresolved = append(unresolved, name)
			continue
		}
		if !seen[hit.ID] {
			seen[hit.ID] = true
			ids = append(ids, hit.ID)
		}
	}
	return ids, unresolved
}

// Amenities extracts the amenity selection from a message. When no known
// amenity is mentioned the raw text is kept as a single unresolved name.
func (e *Extractor) Amenities(message string) model.AmenitySelection {
	names := AmenityNames(message)
	if len(names) == 0 {
		sel := model.AmenitySelection{State: model.AmenitiesUnresolved, Names: []string{}, IDs: []string{}}
		if raw := strings.TrimSpace(message); raw != "" {
			sel.Names = append(sel.Names, raw)
		}
		return sel
	}

	ids, unresolved := e.ResolveAmenities(names)
	state := model.AmenitiesResolved
	if len(unresolved) > 0 {
		state = model.AmenitiesUnresolved
	}
	return model.AmenitySelection{State: state, Names: names, IDs: ids}
}

func synonymsOf(name string) []string {
	for _, syn := range amenitySynonyms {
		if syn.name == name {
			return syn.keywords
		}
	}
	return nil
}

// mentions matches short ASCII keywords ("ac", "tv") as whole words only.
func mentions(text, kw string) bool {
	if len(kw) <= 3 && isASCII(kw) {
		return utils.ContainsWord(text, kw)
	}
	return strings.Contains(text, kw)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
