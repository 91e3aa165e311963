package service

import (
	"math"
	"sort"

	"guidechat/internal/model"
	"guidechat/internal/utils"
)

// Match reason constants
const (
	ReasonPriceMatch     = "Price within budget"
	ReasonAreaMatch      = "Area in range"
	ReasonCategoryMatch  = "Category match"
	ReasonLocationMatch  = "Location match"
	ReasonAmenitiesMatch = "Amenities match"
	ReasonGeneralMatch   = "General match"
)

// Ranker scores backend results against the search criteria
type Ranker struct {
	weightPrice    float64
	weightArea     float64
	weightPosition float64
	reorder        bool
}

// NewRanker creates a new ranker with specified weights. Results are only
// re-sorted by score when reorder is set; otherwise backend order is kept.
func NewRanker(weightPrice, weightArea, weightPosition float64, reorder bool) *Ranker {
	return &Ranker{
		weightPrice:    weightPrice,
		weightArea:     weightArea,
		weightPosition: weightPosition,
		reorder:        reorder,
	}
}

// Rank annotates each property with "score" and "matchedReasons".
func (r *Ranker) Rank(properties []model.PropertyRecord, criteria model.SearchCriteria) []model.PropertyRecord {
	n := len(properties)
	for i, p := range properties {
		var price, area *float64
		if v, ok := p.Number("price"); ok {
			price = &v
		}
		if v, ok := p.Number("area"); ok {
			area = &v
		}

		priceScore := r.calculatePriceScore(price, criteria.PriceRange)
		areaScore := r.calculateAreaScore(area, criteria.Area)
		// Backend order already reflects promotion and recency
		positionScore := 1.0 - float64(i)/float64(n)

		score := (r.weightPrice * priceScore) +
			(r.weightArea * areaScore) +
			(r.weightPosition * positionScore)

		p["score"] = math.Round(score*1000) / 1000
		p["matchedReasons"] = r.generateMatchedReasons(p, criteria, price, area, priceScore, areaScore)
	}

	if r.reorder {
		sort.SliceStable(properties, func(i, j int) bool {
			si, _ := properties[i].Number("score")
			sj, _ := properties[j].Number("score")
			return si > sj
		})
	}
	return properties
}

// calculatePriceScore calculates how well the price matches user's budget
func (r *Ranker) calculatePriceScore(price *float64, budget model.PriceRange) float64 {
	if price == nil {
		return 0.5 // Neutral score if no price
	}
	if budget.Min == nil && budget.Max == nil {
		return 1.0
	}

	actual := *price
	if budget.Min != nil && budget.Max != nil {
		return bandScore(actual, *budget.Min, *budget.Max)
	}

	if budget.Min != nil {
		if actual < *budget.Min {
			return 0.0
		}
		return 1.0
	}

	if actual > *budget.Max {
		return 0.0
	}
	// Closer to max is better
	return math.Min(actual / *budget.Max, 1.0)
}

// calculateAreaScore rates the area against the requested band
func (r *Ranker) calculateAreaScore(area *float64, band *model.AreaRange) float64 {
	if area == nil {
		return 0.5
	}
	if band == nil {
		return 1.0
	}
	return bandScore(*area, band.Min, band.Max)
}

// bandScore is 1 at the midpoint of [lo, hi], falling to 0 at the edges and
// outside the band.
func bandScore(v, lo, hi float64) float64 {
	if v < lo || v > hi {
		return 0.0
	}
	width := hi - lo
	if width == 0 {
		return 1.0
	}
	mid := (lo + hi) / 2
	score := 1.0 - math.Abs(v-mid)/(width/2)
	if score < 0 {
		score = 0
	}
	return score
}

func (r *Ranker) generateMatchedReasons(
	p model.PropertyRecord,
	criteria model.SearchCriteria,
	price, area *float64,
	priceScore, areaScore float64,
) []string {
	reasons := []string{}

	if price != nil && (criteria.PriceRange.Min != nil || criteria.PriceRange.Max != nil) && priceScore > 0 {
		reasons = append(reasons, ReasonPriceMatch)
	}

	if area != nil && criteria.Area != nil && areaScore > 0 {
		reasons = append(reasons, ReasonAreaMatch)
	}

	if criteria.Category != "" && p.String("category") == criteria.Category {
		reasons = append(reasons, ReasonCategoryMatch)
	}

	if criteria.Location.Province != "" {
		loc := p.Map("location")
		if name := loc.String("provinceName"); name != "" &&
			utils.Normalize(utils.StripAdminPrefix(utils.Normalize(name))) ==
				utils.Normalize(utils.StripAdminPrefix(utils.Normalize(criteria.Location.Province))) {
			reasons = append(reasons, ReasonLocationMatch)
		}
	}

	if len(criteria.Amenities) > 0 && sharesAmenity(p, criteria.Amenities) {
		reasons = append(reasons, ReasonAmenitiesMatch)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, ReasonGeneralMatch)
	}
	return reasons
}

// sharesAmenity reports whether the property lists any of the wanted ids.
// Amenities may be plain ids or objects with an _id field.
func sharesAmenity(p model.PropertyRecord, wanted []string) bool {
	list, ok := p["amenities"].([]interface{})
	if !ok {
		return false
	}
	want := make(map[string]bool, len(wanted))
	for _, id := range wanted {
		want[id] = true
	}
	for _, item := range list {
		switch v := item.(type) {
		case string:
			if want[v] {
				return true
			}
		case map[string]interface{}:
			if id, _ := v["_id"].(string); want[id] {
				return true
			}
		}
	}
	return false
}
