package user

import (
	"context"
	"errors"
	"time"

	"github.com/pot-code/study-tracker/internal/infrastructure/driver"
)

// ErrDuplicatedUser a user with the same id is already stored
var ErrDuplicatedUser = errors.New("duplicated user")

// UserModel owner of study sessions
type UserModel struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserRepository interface {
	// FindByID returns nil when no user matches
	FindByID(ctx context.Context, id string) (*UserModel, error)
	// SaveUser returns ErrDuplicatedUser if the id is taken
	SaveUser(ctx context.Context, post *UserModel) error
	WithTx(tx driver.ITransactionalDB) UserRepository
}

type UserUseCase interface {
	// EnsureUser create the user if absent, existing users are returned untouched
	EnsureUser(ctx context.Context, id string) (*UserModel, error)
	WithTx(tx driver.ITransactionalDB) UserUseCase
}
