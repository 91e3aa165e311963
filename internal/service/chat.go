package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"guidechat/internal/logging"
	"guidechat/internal/model"
	"guidechat/internal/repository"

	"github.com/google/uuid"
)

// ErrEmptyMessage is returned for a blank chat message.
var ErrEmptyMessage = errors.New("message is required")

const lockStripes = 64

// stripedLock serializes work per key using a fixed set of mutexes.
type stripedLock struct {
	mu [lockStripes]sync.Mutex
}

func (l *stripedLock) lock(key string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	m := &l.mu[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}

// ChatService runs dialogue turns against stored sessions
type ChatService struct {
	engine *Engine
	store  repository.SessionStore
	locks  stripedLock
	log    *logging.Logger
}

// NewChatService creates a new chat service
func NewChatService(engine *Engine, store repository.SessionStore, log *logging.Logger) *ChatService {
	if log == nil {
		log = logging.Nop()
	}
	return &ChatService{
		engine: engine,
		store:  store,
		log:    log.Sub("chat"),
	}
}

// ProcessMessage handles one user message. A missing session id gets a
// fresh one. Client-held state, when present, replaces the stored session;
// state that cannot be parsed starts a new conversation.
func (s *ChatService) ProcessMessage(ctx context.Context, message, sessionID string, state json.RawMessage) (*model.ChatResponse, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.loadSession(ctx, sessionID, state)
	if err != nil {
		return nil, err
	}

	next, reply := s.engine.Advance(ctx, message, session)
	if err := s.store.Put(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	resp := &model.ChatResponse{
		Success:           true,
		Message:           reply.Message,
		Step:              next.CurrentStep,
		Options:           reply.Options,
		Placeholder:       reply.Placeholder,
		SessionID:         sessionID,
		ConversationState: next,
	}
	if r := reply.Result; r != nil {
		total := r.Total
		criteria := r.Criteria
		resp.Properties = r.Properties
		resp.TotalFound = &total
		resp.SearchCriteria = &criteria
		resp.ShowGrid = true
	}
	return resp, nil
}

func (s *ChatService) loadSession(ctx context.Context, sessionID string, state json.RawMessage) (*model.Session, error) {
	if len(state) > 0 && string(state) != "null" {
		if session := model.ParseSession(state); session != nil {
			session.SessionID = sessionID
			return session, nil
		}
		s.log.Warn().Str("session_id", sessionID).Msg("discarding malformed conversation state")
		return model.NewSession(sessionID), nil
	}

	session, err := s.store.Get(ctx, sessionID)
	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, repository.ErrSessionNotFound):
		return model.NewSession(sessionID), nil
	default:
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
}

// GetSession returns the stored session
func (s *ChatService) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	return s.store.Get(ctx, sessionID)
}

// EndSession deletes the stored session
func (s *ChatService) EndSession(ctx context.Context, sessionID string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()
	return s.store.Delete(ctx, sessionID)
}
