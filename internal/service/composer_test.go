package service

import (
	"context"
	"testing"

	"guidechat/internal/extractor"
	"guidechat/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	wifiID = "68c6bab2ab13f9d982ee9995"
	acID   = "68be84191b3b9b4fa53e7d57"
)

func newTestComposer(ref *fakeRef) *Composer {
	return NewComposer(extractor.New(ref, nil), ref, 20)
}

func TestComposeEmpty(t *testing.T) {
	c := Compose(model.CollectedData{})
	assert.Empty(t, c.Category)
	assert.NotNil(t, c.Location.Keywords)
	assert.NotNil(t, c.Amenities)
	assert.NotNil(t, c.AmenityNames)
	assert.NotNil(t, c.ExtractedKeywords)
	assert.Nil(t, c.Area)
	assert.Nil(t, c.PriceRange.Min)
	assert.Nil(t, c.PriceRange.Max)
}

func TestComposeAreaBand(t *testing.T) {
	c := Compose(model.CollectedData{Area: 50})
	require.NotNil(t, c.Area)
	assert.InDelta(t, 40, c.Area.Min, 1e-9)
	assert.InDelta(t, 60, c.Area.Max, 1e-9)
}

func TestComposeFoldsKeywords(t *testing.T) {
	data := model.CollectedData{
		Location:     "Thành phố Hồ Chí Minh",
		PropertyType: model.PropertyApartment,
		Budget:       &model.Budget{Min: model.Float(2e6), Max: model.Float(3e6)},
		LocationDetails: &model.LocationDetails{
			ProvinceName: "Thành phố Hồ Chí Minh",
			WardName:     "Phường Bến Nghé",
			Keywords:     []string{"Quận 1", "quận 1"},
		},
		University: "Đại học Bách Khoa",
	}

	c := Compose(data)
	assert.Equal(t, "can_ho", c.Category)
	assert.Equal(t, 2e6, *c.PriceRange.Min)
	assert.Equal(t, 3e6, *c.PriceRange.Max)
	assert.Equal(t, "Thành phố Hồ Chí Minh", c.Location.Province)
	assert.Equal(t, "Phường Bến Nghé", c.Location.Ward)
	assert.Equal(t, []string{"Quận 1", "Thành phố Hồ Chí Minh", "Đại học Bách Khoa"}, c.Location.Keywords)
	assert.Equal(t, c.Location.Keywords, c.ExtractedKeywords)

	// criteria do not alias the collected data
	*data.Budget.Min = 1
	assert.Equal(t, 2e6, *c.PriceRange.Min)
}

func TestComposeAmenities(t *testing.T) {
	resolved := Compose(model.CollectedData{Amenities: &model.AmenitySelection{
		State: model.AmenitiesResolved,
		Names: []string{"Máy lạnh", "Wifi"},
		IDs:   []string{acID, wifiID},
	}})
	assert.True(t, resolved.AmenitiesResolved)
	assert.Equal(t, []string{acID, wifiID}, resolved.Amenities)
	assert.Empty(t, resolved.AmenityNames)

	partial := Compose(model.CollectedData{Amenities: &model.AmenitySelection{
		State: model.AmenitiesUnresolved,
		Names: []string{"Máy giặt", "Wifi"},
		IDs:   []string{wifiID},
	}})
	assert.False(t, partial.AmenitiesResolved)
	assert.Equal(t, []string{wifiID}, partial.Amenities)
	assert.Equal(t, []string{"Máy giặt", "Wifi"}, partial.AmenityNames)
	assert.Equal(t, []string{"Máy giặt", "Wifi"}, partial.ExtractedKeywords)
}

func TestToQueryParamsBasics(t *testing.T) {
	comp := newTestComposer(newFakeRef())
	criteria := Compose(model.CollectedData{
		PropertyType: model.PropertyRoom,
		Budget:       &model.Budget{Min: model.Float(2e6), Max: model.Float(3.5e6)},
		Area:         50,
	})

	params := comp.ToQueryParams(context.Background(), criteria)
	assert.Equal(t, "1", params.Get("page"))
	assert.Equal(t, "20", params.Get("limit"))
	assert.Equal(t, "promotedAt", params.Get("sortBy"))
	assert.Equal(t, "desc", params.Get("sortOrder"))
	assert.Equal(t, "phong_tro", params.Get("category"))
	assert.Equal(t, "2000000", params.Get("minPrice"))
	assert.Equal(t, "3500000", params.Get("maxPrice"))
	assert.Equal(t, "40", params.Get("minArea"))
	assert.Equal(t, "60", params.Get("maxArea"))
	for _, key := range []string{"province", "ward", "amenities", "search"} {
		assert.False(t, params.Has(key), key)
	}
}

func TestToQueryParamsMaxOnlyBudget(t *testing.T) {
	comp := newTestComposer(newFakeRef())
	params := comp.ToQueryParams(context.Background(), Compose(model.CollectedData{
		Budget: &model.Budget{Max: model.Float(3e6)},
	}))
	assert.False(t, params.Has("minPrice"))
	assert.Equal(t, "3000000", params.Get("maxPrice"))
	assert.False(t, params.Has("category"))
}

func TestToQueryParamsExplicitLocation(t *testing.T) {
	ref := newFakeRef()
	comp := newTestComposer(ref)
	criteria := Compose(model.CollectedData{
		Location: "Thành phố Hồ Chí Minh",
		LocationDetails: &model.LocationDetails{
			ProvinceName: "Thành phố Hồ Chí Minh",
			WardName:     "Phường Bến Nghé",
			Keywords:     []string{"Quận 1"},
		},
	})

	params := comp.ToQueryParams(context.Background(), criteria)
	assert.Equal(t, "Thành phố Hồ Chí Minh", params.Get("province"))
	assert.Equal(t, "Phường Bến Nghé", params.Get("ward"))
	assert.Equal(t, "Quận 1", params.Get("search"))
	assert.Zero(t, ref.wardCalls)
}

func TestToQueryParamsRerunsExtractorOnKeywords(t *testing.T) {
	ref := newFakeRef()
	ref.wards["Thành phố Đà Nẵng"] = []model.ReferenceEntry{{Name: "Phường Hải Châu"}}
	comp := newTestComposer(ref)

	params := comp.ToQueryParams(context.Background(), Compose(model.CollectedData{
		Location:   "Thành phố Đà Nẵng",
		University: "Đại học Bách Khoa",
	}))
	assert.Equal(t, "Thành phố Đà Nẵng", params.Get("province"))
	assert.False(t, params.Has("ward"))
	assert.Equal(t, "Đại học Bách Khoa", params.Get("search"))
	assert.Equal(t, 1, ref.wardCalls)
}

func TestToQueryParamsResolvesWardFromKeywords(t *testing.T) {
	ref := newFakeRef()
	ref.wards["Thành phố Đà Nẵng"] = []model.ReferenceEntry{
		{Name: "Phường Thanh Khê"},
		{Name: "Phường Hải Châu"},
	}
	comp := newTestComposer(ref)

	params := comp.ToQueryParams(context.Background(), Compose(model.CollectedData{
		LocationDetails: &model.LocationDetails{
			ProvinceName: "Thành phố Đà Nẵng",
			Keywords:     []string{"Hải Châu"},
		},
	}))
	assert.Equal(t, "Thành phố Đà Nẵng", params.Get("province"))
	assert.Equal(t, "Phường Hải Châu", params.Get("ward"))
	assert.False(t, params.Has("search"), "resolved ward must not repeat as free text")
}

func TestToQueryParamsProvinceFromCache(t *testing.T) {
	ref := newFakeRef()
	ref.provinces = append(ref.provinces, model.ReferenceEntry{Name: "Tỉnh Bình Dương", ID: "74"})
	comp := newTestComposer(ref)

	params := comp.ToQueryParams(context.Background(), Compose(model.CollectedData{
		LocationDetails: &model.LocationDetails{Keywords: []string{"bình dương"}},
	}))
	assert.Equal(t, "Tỉnh Bình Dương", params.Get("province"))
	assert.False(t, params.Has("search"))
}

func TestToQueryParamsNoDuplicateKeywordForResolvedPlace(t *testing.T) {
	comp := newTestComposer(newFakeRef())
	inputs := []model.CollectedData{
		{Location: "Thành phố Hà Nội"},
		{LocationDetails: &model.LocationDetails{ProvinceName: "Thành phố Hà Nội", Keywords: []string{"Hà Nội"}}},
		{LocationDetails: &model.LocationDetails{ProvinceName: "Thành phố Hà Nội", WardName: "Phường Cầu Giấy", Keywords: []string{"cầu giấy"}}},
	}
	for _, data := range inputs {
		params := comp.ToQueryParams(context.Background(), Compose(data))
		assert.Equal(t, "Thành phố Hà Nội", params.Get("province"))
		assert.False(t, params.Has("search"), "search=%q", params.Get("search"))
	}
}

func TestToQueryParamsDropsPlaceFoundInsideKeyword(t *testing.T) {
	comp := newTestComposer(newFakeRef())
	inputs := []model.CollectedData{
		{University: "ký túc xá gần tp hcm"},
		{LocationDetails: &model.LocationDetails{
			ProvinceName: "Thành phố Hồ Chí Minh",
			Keywords:     []string{"ký túc xá gần tp hcm"},
		}},
	}
	for _, data := range inputs {
		params := comp.ToQueryParams(context.Background(), Compose(data))
		assert.Equal(t, "Thành phố Hồ Chí Minh", params.Get("province"))
		assert.Equal(t, "ký túc xá gần", params.Get("search"))
	}
}

func TestToQueryParamsKeepsKeywordForConflictingPlace(t *testing.T) {
	comp := newTestComposer(newFakeRef())
	params := comp.ToQueryParams(context.Background(), Compose(model.CollectedData{
		LocationDetails: &model.LocationDetails{
			ProvinceName: "Thành phố Hà Nội",
			Keywords:     []string{"gần tp hcm"},
		},
	}))
	assert.Equal(t, "Thành phố Hà Nội", params.Get("province"))
	assert.Equal(t, "gần tp hcm", params.Get("search"))
}

func TestToQueryParamsKeepsDistrictBesideWard(t *testing.T) {
	ref := newFakeRef()
	ref.wards["Thành phố Hồ Chí Minh"] = []model.ReferenceEntry{{Name: "Phường 1"}}
	comp := newTestComposer(ref)
	params := comp.ToQueryParams(context.Background(), Compose(model.CollectedData{
		LocationDetails: &model.LocationDetails{
			ProvinceName: "Thành phố Hồ Chí Minh",
			WardName:     "Phường 1",
			Keywords:     []string{"Quận 1"},
		},
	}))
	assert.Equal(t, "Phường 1", params.Get("ward"))
	assert.Equal(t, "Quận 1", params.Get("search"))
}

func TestToQueryParamsAmenities(t *testing.T) {
	comp := newTestComposer(newFakeRef())

	resolved := comp.ToQueryParams(context.Background(), Compose(model.CollectedData{
		Amenities: &model.AmenitySelection{State: model.AmenitiesResolved, Names: []string{"Máy lạnh", "Wifi"}, IDs: []string{acID, wifiID}},
	}))
	assert.Equal(t, acID+","+wifiID, resolved.Get("amenities"))
	assert.False(t, resolved.Has("search"))

	partial := comp.ToQueryParams(context.Background(), Compose(model.CollectedData{
		Amenities: &model.AmenitySelection{State: model.AmenitiesUnresolved, Names: []string{"Máy giặt", "Wifi"}, IDs: []string{wifiID}},
	}))
	assert.Equal(t, wifiID, partial.Get("amenities"))
	assert.Equal(t, "Máy giặt", partial.Get("search"))

	// names saved before the ids were known are re-derived
	legacy := comp.ToQueryParams(context.Background(), model.SearchCriteria{
		Location:  model.LocationCriteria{Keywords: []string{}},
		Amenities: []string{"Wifi", "hồ bơi"},
	})
	assert.Equal(t, wifiID, legacy.Get("amenities"))
	assert.Equal(t, "hồ bơi", legacy.Get("search"))
}
