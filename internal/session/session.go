package session

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/pot-code/study-tracker/internal/infrastructure/driver"
)

var (
	// ErrNotFound no session with the given id
	ErrNotFound = errors.New("session not found")
	// ErrStoreUnavailable the backing store failed, callers may retry
	ErrStoreUnavailable = errors.New("session store unavailable")
)

// SessionModel a completed study interval, never updated in place
type SessionModel struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Subject     string    `json:"subject"`
	Category    *string   `json:"category"`
	StartedAt   time.Time `json:"startedAt"`
	EndedAt     time.Time `json:"endedAt"`
	DurationMin int       `json:"durationMin"`
	Notes       *string   `json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MaxDurationMin largest duration the INT column of every driver holds
const MaxDurationMin = math.MaxInt32

// SessionForm submission body of a new session.
//
// startedAt is not checked against endedAt, neither is durationMin against the interval
type SessionForm struct {
	UserID      string   `json:"userId" validate:"required"`
	Subject     string   `json:"subject" validate:"required"`
	Category    *string  `json:"category"`
	StartedAt   string   `json:"startedAt" validate:"required,timestamp"`
	EndedAt     string   `json:"endedAt" validate:"required,timestamp"`
	DurationMin *float64 `json:"durationMin" validate:"required,min=0,max=2147483647,whole"`
	Notes       *string  `json:"notes"`
}

type SessionRepository interface {
	// ListByUser most recently started first, every session when userID is empty
	ListByUser(ctx context.Context, userID string) ([]*SessionModel, error)
	// ListByUserSince sessions with startedAt >= since, most recently started first
	ListByUserSince(ctx context.Context, userID string, since time.Time) ([]*SessionModel, error)
	// FindByID returns nil when no session matches
	FindByID(ctx context.Context, id string) (*SessionModel, error)
	SaveSession(ctx context.Context, post *SessionModel) error
	// DeleteByID returns ErrNotFound if nothing was removed
	DeleteByID(ctx context.Context, id string) error
	WithTx(tx driver.ITransactionalDB) SessionRepository
}

type SessionUseCase interface {
	// Create provision the owning user and store the session in one transaction
	Create(ctx context.Context, form *SessionForm) (*SessionModel, error)
	List(ctx context.Context, userID string) ([]*SessionModel, error)
	ListSince(ctx context.Context, userID string, since time.Time) ([]*SessionModel, error)
	// Delete returns ErrNotFound for unknown ids
	Delete(ctx context.Context, id string) error
}
