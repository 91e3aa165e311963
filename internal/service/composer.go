package service

import (
	"context"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"guidechat/internal/extractor"
	"guidechat/internal/model"
	"guidechat/internal/utils"
)

const (
	areaBandLow  = 0.8
	areaBandHigh = 1.2
)

var opaqueID = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// ReferenceLookup is the reference data the composer resolves names against.
type ReferenceLookup interface {
	Provinces() []model.ReferenceEntry
	Wards(ctx context.Context, province string) []model.ReferenceEntry
}

// Compose folds collected data into search criteria. It does no I/O.
func Compose(data model.CollectedData) model.SearchCriteria {
	c := model.SearchCriteria{
		Category:          data.PropertyType.Category(),
		Location:          model.LocationCriteria{Keywords: []string{}},
		Amenities:         []string{},
		AmenityNames:      []string{},
		ExtractedKeywords: []string{},
	}

	if data.Budget != nil {
		c.PriceRange = model.PriceRange{Min: copyFloat(data.Budget.Min), Max: copyFloat(data.Budget.Max)}
	}

	var keywords []string
	if ld := data.LocationDetails; ld != nil {
		c.Location.Province = ld.ProvinceName
		c.Location.Ward = ld.WardName
		keywords = append(keywords, ld.Keywords...)
	}
	if data.Location != "" {
		keywords = append(keywords, data.Location)
	}
	if data.University != "" {
		keywords = append(keywords, data.University)
	}
	c.Location.Keywords = dedupe(keywords)

	if a := data.Amenities; a != nil {
		c.Amenities = append(c.Amenities, a.IDs...)
		c.AmenitiesResolved = a.State == model.AmenitiesResolved
		if !c.AmenitiesResolved {
			c.AmenityNames = append(c.AmenityNames, a.Names...)
		}
	}

	if data.Area > 0 {
		c.Area = &model.AreaRange{Min: data.Area * areaBandLow, Max: data.Area * areaBandHigh}
	}

	c.ExtractedKeywords = append(c.ExtractedKeywords, c.Location.Keywords...)
	c.ExtractedKeywords = append(c.ExtractedKeywords, c.AmenityNames...)
	return c
}

// Composer maps criteria to search backend query parameters, resolving
// place and amenity names through reference data.
type Composer struct {
	extract *extractor.Extractor
	ref     ReferenceLookup
	limit   int
}

// NewComposer creates a composer. ref may be nil.
func NewComposer(extract *extractor.Extractor, ref ReferenceLookup, limit int) *Composer {
	return &Composer{extract: extract, ref: ref, limit: limit}
}

// ToQueryParams builds the backend query. Keywords that resolve to the
// chosen province or ward are left out of the free-text search.
func (c *Composer) ToQueryParams(ctx context.Context, criteria model.SearchCriteria) url.Values {
	params := url.Values{}
	params.Set("page", "1")
	params.Set("limit", strconv.Itoa(c.limit))
	params.Set("sortBy", "promotedAt")
	params.Set("sortOrder", "desc")

	if criteria.Category != "" {
		params.Set("category", criteria.Category)
	}
	setAmount(params, "minPrice", criteria.PriceRange.Min)
	setAmount(params, "maxPrice", criteria.PriceRange.Max)
	if criteria.Area != nil {
		setAmount(params, "minArea", &criteria.Area.Min)
		setAmount(params, "maxArea", &criteria.Area.Max)
	}

	province, ward, keywords := c.resolveLocation(ctx, criteria)
	if province != "" {
		params.Set("province", province)
	}
	if ward != "" {
		params.Set("ward", ward)
	}

	ids, leftover := c.resolveAmenities(criteria)
	if len(ids) > 0 {
		params.Set("amenities", strings.Join(ids, ","))
	}

	var terms []string
	for _, kw := range keywords {
		if c.sameName(kw, province) || c.sameName(kw, ward) {
			continue
		}
		terms = append(terms, kw)
	}
	terms = append(terms, leftover...)
	if len(terms) > 0 {
		params.Set("search", strings.Join(terms, " "))
	}
	return params
}

// resolveLocation also returns the keywords still to be searched as free
// text. When re-running the location extractor resolves a place consistent
// with the explicit one, its leftover text replaces the raw keywords.
func (c *Composer) resolveLocation(ctx context.Context, criteria model.SearchCriteria) (province, ward string, keywords []string) {
	province, ward = criteria.Location.Province, criteria.Location.Ward
	keywords = criteria.Location.Keywords
	if len(keywords) == 0 || (province != "" && ward != "") {
		return province, ward, keywords
	}

	found := c.extract.Location(strings.Join(keywords, ", "))
	if (found.ProvinceName != "" || found.WardName != "") &&
		c.agrees(province, found.ProvinceName) && c.agrees(ward, found.WardName) {
		keywords = found.Keywords
	}
	if province == "" {
		province = found.ProvinceName
	}
	if ward == "" {
		ward = found.WardName
	}

	if province == "" && c.ref != nil {
		for _, kw := range keywords {
			if hit := c.extract.Matcher().Match(kw, c.ref.Provinces()); hit != nil {
				province = hit.Name
				break
			}
		}
	}

	if ward == "" && province != "" && c.ref != nil {
		if wards := c.ref.Wards(ctx, province); len(wards) > 0 {
			for _, kw := range keywords {
				if c.sameName(kw, province) {
					continue
				}
				if hit := c.extract.Matcher().Match(kw, wards); hit != nil {
					ward = hit.Name
					break
				}
			}
		}
	}
	return province, ward, keywords
}

// agrees reports whether an extracted place is compatible with the
// explicit one.
func (c *Composer) agrees(explicit, extracted string) bool {
	return explicit == "" || extracted == "" || c.sameName(extracted, explicit)
}

// resolveAmenities returns the amenity ids to filter on and the names that
// remain free text.
func (c *Composer) resolveAmenities(criteria model.SearchCriteria) ([]string, []string) {
	ids := []string{}
	var names []string
	for _, a := range criteria.Amenities {
		if criteria.AmenitiesResolved || opaqueID.MatchString(a) {
			ids = append(ids, a)
		} else {
			names = append(names, a)
		}
	}
	if criteria.AmenitiesResolved {
		return dedupe(ids), nil
	}

	names = append(names, criteria.AmenityNames...)
	derived, leftover := c.extract.ResolveAmenities(dedupe(names))
	return dedupe(append(ids, derived...)), leftover
}

func (c *Composer) sameName(keyword, name string) bool {
	if name == "" {
		return false
	}
	return c.extract.Matcher().Match(keyword, []model.ReferenceEntry{{Name: name}}) != nil
}

func setAmount(params url.Values, key string, v *float64) {
	if v == nil || *v <= 0 {
		return
	}
	params.Set(key, strconv.FormatInt(int64(math.Round(*v)), 10))
}

// dedupe drops repeated and blank strings, comparing normalized forms.
func dedupe(in []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := utils.Normalize(s)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
