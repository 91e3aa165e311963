package model

// ReferenceEntry is a named item from a reference list (province, ward, amenity).
type ReferenceEntry struct {
	Name string `json:"name" yaml:"name"`
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
}

// PriceRange is a VND price band.
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// AreaRange is a band in square metres.
type AreaRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// LocationCriteria is the location part of a search.
type LocationCriteria struct {
	Province string   `json:"province,omitempty"`
	Ward     string   `json:"ward,omitempty"`
	Keywords []string `json:"keywords"`
}

// SearchCriteria is the structured intent derived from a whole conversation.
// It is built once from CollectedData and not modified afterwards.
type SearchCriteria struct {
	Category          string           `json:"category,omitempty"`
	PriceRange        PriceRange       `json:"priceRange"`
	Location          LocationCriteria `json:"location"`
	Area              *AreaRange       `json:"area,omitempty"`
	Amenities         []string         `json:"amenities"`
	AmenityNames      []string         `json:"amenityNames"`
	AmenitiesResolved bool             `json:"amenitiesResolved"`
	ExtractedKeywords []string         `json:"extractedKeywords"`
}

// PropertyRecord is a listing as returned by the search backend.
type PropertyRecord = JSONMap

// SearchLog is one audited search.
type SearchLog struct {
	SessionID   string
	Criteria    SearchCriteria
	Params      map[string]string
	ResultCount int
	TookMs      int
}
