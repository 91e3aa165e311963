// Package extractor turns free-text Vietnamese replies into typed search
// fragments. Every extractor is total: on a miss it returns a zero value.
package extractor

import (
	"guidechat/internal/model"
	"guidechat/internal/utils"
)

// Reference is the reference data the extractors consult.
type Reference interface {
	Provinces() []model.ReferenceEntry
	Amenities() []model.ReferenceEntry
}

// Extractor runs the extractors that need reference data.
type Extractor struct {
	ref     Reference
	matcher *utils.FuzzyMatcher
}

// New creates an extractor. ref may be nil, in which case only built-in
// place names and no amenity ids are known.
func New(ref Reference, matcher *utils.FuzzyMatcher) *Extractor {
	if matcher == nil {
		matcher = utils.NewFuzzyMatcher()
	}
	return &Extractor{ref: ref, matcher: matcher}
}

// Matcher returns the fuzzy matcher used for reference lookups.
func (e *Extractor) Matcher() *utils.FuzzyMatcher {
	return e.matcher
}

func (e *Extractor) provinces() []model.ReferenceEntry {
	if e.ref == nil {
		return nil
	}
	return e.ref.Provinces()
}

func (e *Extractor) amenities() []model.ReferenceEntry {
	if e.ref == nil {
		return nil
	}
	return e.ref.Amenities()
}
