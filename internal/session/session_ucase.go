package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pot-code/study-tracker/internal/calendar"
	"github.com/pot-code/study-tracker/internal/infrastructure/driver"
	"github.com/pot-code/study-tracker/internal/infrastructure/pubsub"
	"github.com/pot-code/study-tracker/internal/infrastructure/uuid"
	"github.com/pot-code/study-tracker/internal/user"
	"go.elastic.co/apm"
)

// SessionUseCaseImpl ...
type SessionUseCaseImpl struct {
	Conn              driver.ITransactionalDB
	SessionRepository SessionRepository
	UserUseCase       user.UserUseCase
	UUIDGenerator     uuid.Generator
	Publisher         pubsub.Publisher
	Now               func() time.Time
}

var _ SessionUseCase = &SessionUseCaseImpl{}

// NewSessionUseCase ...
func NewSessionUseCase(
	Conn driver.ITransactionalDB,
	SessionRepository SessionRepository,
	UserUseCase user.UserUseCase,
	UUIDGenerator uuid.Generator,
	Publisher pubsub.Publisher,
) *SessionUseCaseImpl {
	return &SessionUseCaseImpl{
		Conn:              Conn,
		SessionRepository: SessionRepository,
		UserUseCase:       UserUseCase,
		UUIDGenerator:     UUIDGenerator,
		Publisher:         Publisher,
		Now:               time.Now,
	}
}

// Create expects a form that already passed validation
func (su *SessionUseCaseImpl) Create(ctx context.Context, form *SessionForm) (*SessionModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "SessionUseCaseImpl.Create", "service")
	defer apmSpan.End()

	post, err := form.toModel()
	if err != nil {
		return nil, err
	}
	id, err := su.UUIDGenerator.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating session id: %w", err)
	}
	post.ID = id
	post.CreatedAt = su.Now().UTC()

	err = driver.WithTx(ctx, su.Conn, nil, func(tx driver.ITransactionalDB) error {
		if _, err := su.UserUseCase.WithTx(tx).EnsureUser(ctx, post.UserID); err != nil {
			return err
		}
		return su.SessionRepository.WithTx(tx).SaveSession(ctx, post)
	})
	if err != nil {
		return nil, storeError(err)
	}

	su.Publisher.Publish(post.UserID)
	return post, nil
}

func (su *SessionUseCaseImpl) List(ctx context.Context, userID string) ([]*SessionModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "SessionUseCaseImpl.List", "service")
	defer apmSpan.End()

	sessions, err := su.SessionRepository.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}
	return sessions, nil
}

func (su *SessionUseCaseImpl) ListSince(ctx context.Context, userID string, since time.Time) ([]*SessionModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "SessionUseCaseImpl.ListSince", "service")
	defer apmSpan.End()

	sessions, err := su.SessionRepository.ListByUserSince(ctx, userID, since)
	if err != nil {
		return nil, storeError(err)
	}
	return sessions, nil
}

func (su *SessionUseCaseImpl) Delete(ctx context.Context, id string) error {
	apmSpan, _ := apm.StartSpan(ctx, "SessionUseCaseImpl.Delete", "service")
	defer apmSpan.End()

	var owner string
	err := driver.WithTx(ctx, su.Conn, nil, func(tx driver.ITransactionalDB) error {
		repo := su.SessionRepository.WithTx(tx)
		m, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return ErrNotFound
		}
		owner = m.UserID
		return repo.DeleteByID(ctx, id)
	})
	if err != nil {
		return storeError(err)
	}

	su.Publisher.Publish(owner)
	return nil
}

// storeError keeps ErrNotFound and context errors, everything else becomes ErrStoreUnavailable
func storeError(err error) error {
	if errors.Is(err, ErrNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
}

func (form *SessionForm) toModel() (*SessionModel, error) {
	startedAt, err := calendar.ParseTimestamp(form.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("startedAt: %w", err)
	}
	endedAt, err := calendar.ParseTimestamp(form.EndedAt)
	if err != nil {
		return nil, fmt.Errorf("endedAt: %w", err)
	}
	var minutes int
	if form.DurationMin != nil {
		if d := *form.DurationMin; d < 0 || d > MaxDurationMin {
			return nil, fmt.Errorf("durationMin %v out of range [0, %d]", d, MaxDurationMin)
		}
		minutes = int(*form.DurationMin)
	}
	return &SessionModel{
		UserID:      form.UserID,
		Subject:     form.Subject,
		Category:    form.Category,
		StartedAt:   startedAt,
		EndedAt:     endedAt,
		DurationMin: minutes,
		Notes:       form.Notes,
	}, nil
}
