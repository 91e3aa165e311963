package service

import (
	"context"
	"net/url"
	"sync"
	"testing"

	"guidechat/internal/extractor"
	"guidechat/internal/model"
	"guidechat/internal/reference"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRef struct {
	mu        sync.Mutex
	provinces []model.ReferenceEntry
	wards     map[string][]model.ReferenceEntry
	wardCalls int
}

func newFakeRef() *fakeRef {
	return &fakeRef{provinces: reference.BuiltinProvinces(), wards: map[string][]model.ReferenceEntry{}}
}

func (f *fakeRef) Provinces() []model.ReferenceEntry { return f.provinces }
func (f *fakeRef) Amenities() []model.ReferenceEntry { return reference.BuiltinAmenities() }

func (f *fakeRef) Wards(ctx context.Context, province string) []model.ReferenceEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wardCalls++
	return f.wards[province]
}

type fakeSearcher struct {
	mu    sync.Mutex
	calls []model.CollectedData
	total int
}

func (f *fakeSearcher) Search(ctx context.Context, sessionID string, data model.CollectedData) *SearchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, data.Clone())
	return &SearchResult{
		Criteria:   Compose(data),
		Params:     url.Values{},
		Properties: []model.PropertyRecord{},
		Total:      f.total,
	}
}

func newTestEngine(total int) (*Engine, *fakeSearcher) {
	searcher := &fakeSearcher{total: total}
	return NewEngine(extractor.New(newFakeRef(), nil), searcher, nil), searcher
}

// run feeds messages through the engine and returns the final session, the
// last reply and the number of messages consumed.
func run(t *testing.T, e *Engine, s *model.Session, messages ...string) (*model.Session, Reply) {
	t.Helper()
	var reply Reply
	for _, m := range messages {
		s, reply = e.Advance(context.Background(), m, s)
	}
	return s, reply
}

func TestTransitionTableExhaustive(t *testing.T) {
	e, _ := newTestEngine(0)
	for _, step := range model.Steps {
		_, ok := e.steps[step]
		if step == model.StepSearchResults {
			assert.False(t, ok, "terminal step must not have a handler")
			continue
		}
		assert.True(t, ok, "missing handler for %s", step)
	}
	assert.Len(t, e.steps, len(model.Steps)-1)
}

func TestBranchFor(t *testing.T) {
	tests := []struct {
		in   string
		want model.StepID
	}{
		{"Khu vực cụ thể", model.StepLocationInput},
		{"Diện tích chỗ thuê", model.StepAreaInput},
		{"Tiện ích cần có", model.StepAmenitiesInput},
		{"Thêm thông tin khác", model.StepUniversityInput},
		{"KHU VỰC gần trường", model.StepLocationInput},
		{"", model.StepUniversityInput},
		{"không biết", model.StepUniversityInput},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, branchFor(tt.in), tt.in)
	}

	// the four offered options reach four different steps
	seen := map[model.StepID]bool{}
	for _, opt := range additionalOptions {
		seen[branchFor(opt)] = true
	}
	assert.Len(t, seen, 4)
}

func TestHappyPathReachesSearch(t *testing.T) {
	branches := []struct {
		option string
		input  string
		check  func(t *testing.T, d model.CollectedData)
	}{
		{"Khu vực cụ thể", "Phường Bến Nghé, TP HCM", func(t *testing.T, d model.CollectedData) {
			require.NotNil(t, d.LocationDetails)
			assert.Equal(t, "Thành phố Hồ Chí Minh", d.LocationDetails.ProvinceName)
			assert.Equal(t, "Phường Bến Nghé", d.LocationDetails.WardName)
		}},
		{"Diện tích chỗ thuê", "50", func(t *testing.T, d model.CollectedData) {
			assert.Equal(t, 50.0, d.Area)
		}},
		{"Tiện ích cần có", "wifi, điều hòa", func(t *testing.T, d model.CollectedData) {
			require.NotNil(t, d.Amenities)
			assert.Equal(t, model.AmenitiesResolved, d.Amenities.State)
			assert.Len(t, d.Amenities.IDs, 2)
		}},
		{"Thêm thông tin khác", "ĐH Bách Khoa", func(t *testing.T, d model.CollectedData) {
			assert.Equal(t, "Đại học Bách Khoa", d.University)
		}},
	}

	for _, b := range branches {
		t.Run(b.option, func(t *testing.T) {
			e, searcher := newTestEngine(3)
			var s *model.Session
			var reply Reply
			steps := []model.StepID{}

			messages := []string{"Tôi muốn tìm trọ ở Hà Nội", "Tìm trọ phù hợp", "từ 2 triệu đến 3 triệu", b.option, b.input, "Tìm kiếm"}
			for _, m := range messages {
				s, reply = e.Advance(context.Background(), m, s)
				steps = append(steps, s.CurrentStep)
			}

			assert.Equal(t, model.StepSearchResults, s.CurrentStep)
			assert.True(t, reply.Terminal())
			assert.Equal(t, "Tuyệt vời! Tôi đã tìm thấy 3 bài đăng phù hợp với yêu cầu của bạn.", reply.Message)
			assert.Len(t, searcher.calls, 1)

			// from budget_input the search is exactly four transitions away
			assert.Equal(t, model.StepSearchResults, steps[5])
			assert.NotEqual(t, model.StepSearchResults, steps[4])

			d := s.CollectedData
			assert.Equal(t, "Thành phố Hà Nội", d.Location)
			assert.Equal(t, model.PropertyRoom, d.PropertyType)
			require.NotNil(t, d.Budget)
			assert.Equal(t, 2e6, *d.Budget.Min)
			assert.Equal(t, 3e6, *d.Budget.Max)
			b.check(t, d)

			assert.Len(t, s.History, 2*len(messages))
		})
	}
}

func TestPromptsPerStep(t *testing.T) {
	e, _ := newTestEngine(0)

	s, reply := run(t, e, nil, "xin chào")
	assert.Equal(t, model.StepPropertyType, s.CurrentStep)
	assert.Equal(t, serviceOptions, reply.Options)
	assert.Empty(t, s.CollectedData.Location)

	s, reply = run(t, e, s, "Tìm căn hộ phù hợp")
	assert.Equal(t, model.StepBudgetInput, s.CurrentStep)
	assert.Equal(t, model.PropertyApartment, s.CollectedData.PropertyType)
	assert.NotEmpty(t, reply.Placeholder)
	assert.Empty(t, reply.Options)

	s, reply = run(t, e, s, "chưa biết")
	assert.Equal(t, model.StepAdditionalOptions, s.CurrentStep)
	assert.Nil(t, s.CollectedData.Budget)
	assert.Equal(t, additionalOptions, reply.Options)

	s, reply = run(t, e, s, "Diện tích chỗ thuê")
	assert.Equal(t, model.StepAreaInput, s.CurrentStep)
	assert.Equal(t, "Ví dụ: 50", reply.Placeholder)

	s, reply = run(t, e, s, "rộng")
	assert.Equal(t, model.StepConfirmSearch, s.CurrentStep)
	assert.Zero(t, s.CollectedData.Area)
	assert.Equal(t, confirmOptions, reply.Options)
}

func TestConfirmLoopsBackForMore(t *testing.T) {
	e, searcher := newTestEngine(0)
	s := model.NewSession("loop")
	s.CurrentStep = model.StepConfirmSearch

	s, reply := run(t, e, s, "Thêm yêu cầu")
	assert.Equal(t, model.StepAdditionalOptions, s.CurrentStep)
	assert.Equal(t, additionalOptions, reply.Options)
	assert.Empty(t, searcher.calls)

	// revisiting a step overwrites the earlier value
	s.CollectedData.Area = 20
	s, _ = run(t, e, s, "Diện tích chỗ thuê", "35", "Tìm kiếm")
	assert.Equal(t, model.StepSearchResults, s.CurrentStep)
	require.Len(t, searcher.calls, 1)
	assert.Equal(t, 35.0, searcher.calls[0].Area)
}

func TestUnknownStepRunsSearch(t *testing.T) {
	e, searcher := newTestEngine(2)
	s := model.NewSession("x")
	s.CurrentStep = model.StepID("bogus")

	next, reply := e.Advance(context.Background(), "hello", s)
	assert.Equal(t, model.StepSearchResults, next.CurrentStep)
	assert.True(t, reply.Terminal())
	assert.Len(t, searcher.calls, 1)
}

func TestSearchResultsIsAbsorbing(t *testing.T) {
	e, searcher := newTestEngine(1)
	s := model.NewSession("x")
	s.CurrentStep = model.StepSearchResults
	s.CollectedData.Area = 40

	s, reply := run(t, e, s, "còn gì nữa không", "Khu vực cụ thể")
	assert.Equal(t, model.StepSearchResults, s.CurrentStep)
	assert.True(t, reply.Terminal())
	require.Len(t, searcher.calls, 2)
	assert.Equal(t, searcher.calls[0], searcher.calls[1])
}

func TestAdvanceLeavesInputUntouched(t *testing.T) {
	e, _ := newTestEngine(0)
	s := model.NewSession("x")
	s.CurrentStep = model.StepBudgetInput

	next, _ := e.Advance(context.Background(), "dưới 3 triệu", s)
	assert.Equal(t, model.StepBudgetInput, s.CurrentStep)
	assert.Nil(t, s.CollectedData.Budget)
	assert.Empty(t, s.History)
	assert.Equal(t, model.StepAdditionalOptions, next.CurrentStep)
	assert.Equal(t, "x", next.SessionID)
}

func TestGreetingAndLocationStayIndependent(t *testing.T) {
	e, _ := newTestEngine(0)
	s, _ := run(t, e, nil, "tìm phòng ở Đà Nẵng", "Tìm trọ phù hợp", "3 triệu", "Khu vực cụ thể", "Phường 1, Hà Nội")

	assert.Equal(t, "Thành phố Đà Nẵng", s.CollectedData.Location)
	require.NotNil(t, s.CollectedData.LocationDetails)
	assert.Equal(t, "Thành phố Hà Nội", s.CollectedData.LocationDetails.ProvinceName)
	assert.Equal(t, "Phường 1", s.CollectedData.LocationDetails.WardName)
}
