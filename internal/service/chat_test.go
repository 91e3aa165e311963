package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"guidechat/internal/model"
	"guidechat/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	getErr error
	putErr error
}

func (f failingStore) Get(ctx context.Context, id string) (*model.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return nil, repository.ErrSessionNotFound
}

func (f failingStore) Put(ctx context.Context, s *model.Session) error { return f.putErr }
func (f failingStore) Delete(ctx context.Context, id string) error     { return nil }

func newTestChat(store repository.SessionStore) (*ChatService, *fakeSearcher) {
	engine, searcher := newTestEngine(4)
	return NewChatService(engine, store, nil), searcher
}

func TestProcessMessageRejectsBlank(t *testing.T) {
	chat, _ := newTestChat(repository.NewMemoryStore(time.Hour))
	_, err := chat.ProcessMessage(context.Background(), "   ", "s1", nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestProcessMessageAssignsSessionID(t *testing.T) {
	store := repository.NewMemoryStore(time.Hour)
	chat, _ := newTestChat(store)

	resp, err := chat.ProcessMessage(context.Background(), "xin chào", "", nil)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, model.StepPropertyType, resp.Step)
	assert.Equal(t, serviceOptions, resp.Options)
	assert.Equal(t, resp.SessionID, resp.ConversationState.SessionID)
	assert.False(t, resp.ShowGrid)

	stored, err := chat.GetSession(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.StepPropertyType, stored.CurrentStep)
}

func TestProcessMessageFullConversation(t *testing.T) {
	chat, searcher := newTestChat(repository.NewMemoryStore(time.Hour))
	ctx := context.Background()

	var resp *model.ChatResponse
	var err error
	for _, m := range []string{"chào bot", "Tìm căn hộ phù hợp", "dưới 5 triệu", "Khu vực cụ thể", "Phường 1, TP HCM", "Tìm kiếm"} {
		resp, err = chat.ProcessMessage(ctx, m, "conv", nil)
		require.NoError(t, err)
	}

	assert.Equal(t, model.StepSearchResults, resp.Step)
	assert.True(t, resp.ShowGrid)
	require.NotNil(t, resp.TotalFound)
	assert.Equal(t, 4, *resp.TotalFound)
	require.NotNil(t, resp.SearchCriteria)
	assert.Equal(t, "can_ho", resp.SearchCriteria.Category)
	assert.Equal(t, "Thành phố Hồ Chí Minh", resp.SearchCriteria.Location.Province)
	assert.Equal(t, "Phường 1", resp.SearchCriteria.Location.Ward)
	assert.Len(t, searcher.calls, 1)
	assert.Len(t, resp.ConversationState.History, 12)
}

func TestProcessMessageUsesClientState(t *testing.T) {
	store := repository.NewMemoryStore(time.Hour)
	chat, _ := newTestChat(store)

	state := model.NewSession("other")
	state.CurrentStep = model.StepBudgetInput
	state.CollectedData.PropertyType = model.PropertyApartment
	raw, err := json.Marshal(state)
	require.NoError(t, err)

	resp, err := chat.ProcessMessage(context.Background(), "3 triệu", "mine", raw)
	require.NoError(t, err)
	assert.Equal(t, model.StepAdditionalOptions, resp.Step)
	assert.Equal(t, "mine", resp.ConversationState.SessionID)
	assert.Equal(t, model.PropertyApartment, resp.ConversationState.CollectedData.PropertyType)
	require.NotNil(t, resp.ConversationState.CollectedData.Budget)
	assert.Equal(t, 3e6, *resp.ConversationState.CollectedData.Budget.Max)
}

func TestProcessMessageMalformedStateStartsFresh(t *testing.T) {
	store := repository.NewMemoryStore(time.Hour)
	chat, _ := newTestChat(store)
	ctx := context.Background()

	_, err := chat.ProcessMessage(ctx, "hello", "s1", nil)
	require.NoError(t, err)

	for _, raw := range []string{`{"currentStep":"nowhere"}`, `{broken`, `{"collectedData":{}}`} {
		resp, err := chat.ProcessMessage(ctx, "xin chào", "s1", json.RawMessage(raw))
		require.NoError(t, err, raw)
		assert.Equal(t, model.StepPropertyType, resp.Step, raw)
		assert.Len(t, resp.ConversationState.History, 2, raw)
	}

	// a null state falls back to the stored session
	resp, err := chat.ProcessMessage(ctx, "Tìm trọ phù hợp", "s1", json.RawMessage("null"))
	require.NoError(t, err)
	assert.Equal(t, model.StepBudgetInput, resp.Step)
}

func TestProcessMessageStoreErrors(t *testing.T) {
	boom := errors.New("db down")

	chat, _ := newTestChat(failingStore{getErr: boom})
	_, err := chat.ProcessMessage(context.Background(), "hi", "s", nil)
	assert.ErrorIs(t, err, boom)

	chat, _ = newTestChat(failingStore{putErr: boom})
	_, err = chat.ProcessMessage(context.Background(), "hi", "s", nil)
	assert.ErrorIs(t, err, boom)
}

func TestProcessMessageSerializesPerSession(t *testing.T) {
	store := repository.NewMemoryStore(time.Hour)
	chat, _ := newTestChat(store)
	ctx := context.Background()

	const turns = 40
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := chat.ProcessMessage(ctx, "không rõ", "shared", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s, err := chat.GetSession(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, s.History, 2*turns, "every turn must see the previous one")
}

func TestEndSession(t *testing.T) {
	chat, _ := newTestChat(repository.NewMemoryStore(time.Hour))
	ctx := context.Background()

	resp, err := chat.ProcessMessage(ctx, "hi", "", nil)
	require.NoError(t, err)
	require.NoError(t, chat.EndSession(ctx, resp.SessionID))

	_, err = chat.GetSession(ctx, resp.SessionID)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}
