package repository

import (
	"context"
	"errors"

	"guidechat/internal/model"
)

// ErrSessionNotFound is returned when a session id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists dialogue sessions. Implementations are safe for
// concurrent use and never hand out memory shared with the caller.
type SessionStore interface {
	Get(ctx context.Context, id string) (*model.Session, error)
	Put(ctx context.Context, s *model.Session) error
	Delete(ctx context.Context, id string) error
}

// SearchLogger records executed searches.
type SearchLogger interface {
	LogSearch(ctx context.Context, entry model.SearchLog) error
}
