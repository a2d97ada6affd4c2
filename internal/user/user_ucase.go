package user

import (
	"context"
	"errors"
	"time"

	"github.com/pot-code/study-tracker/internal/infrastructure/driver"
	"go.elastic.co/apm"
)

// EmailDomain mail domain of provisioned users
const EmailDomain = "example.com"

// UserUseCaseImpl ...
type UserUseCaseImpl struct {
	UserRepository UserRepository
	Now            func() time.Time
}

var _ UserUseCase = &UserUseCaseImpl{}

// NewUserUseCase ...
func NewUserUseCase(
	UserRepository UserRepository,
) *UserUseCaseImpl {
	return &UserUseCaseImpl{
		UserRepository: UserRepository,
		Now:            time.Now,
	}
}

// WithTx returns a use case whose repository runs on tx
func (uu *UserUseCaseImpl) WithTx(tx driver.ITransactionalDB) UserUseCase {
	return &UserUseCaseImpl{
		UserRepository: uu.UserRepository.WithTx(tx),
		Now:            uu.Now,
	}
}

// EnsureUser find or provision the user with id.
//
// a concurrent insert of the same id counts as already existing
func (uu *UserUseCaseImpl) EnsureUser(ctx context.Context, id string) (*UserModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "UserUseCaseImpl.EnsureUser", "service")
	defer apmSpan.End()

	ur := uu.UserRepository
	if m, err := ur.FindByID(ctx, id); err != nil {
		return nil, err
	} else if m != nil {
		return m, nil
	}

	post := &UserModel{
		ID:        id,
		Email:     id + "@" + EmailDomain,
		CreatedAt: uu.Now().UTC(),
	}
	if err := ur.SaveUser(ctx, post); err != nil {
		if errors.Is(err, ErrDuplicatedUser) {
			return ur.FindByID(ctx, id)
		}
		return nil, err
	}
	return post, nil
}
