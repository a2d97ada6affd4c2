package user

import (
	"context"

	"github.com/pot-code/study-tracker/internal/infrastructure/driver"
)

type UserSQL struct {
	Conn driver.ITransactionalDB
}

var _ UserRepository = &UserSQL{}

func NewUserRepository(Conn driver.ITransactionalDB) *UserSQL {
	return &UserSQL{Conn}
}

// WithTx returns a repository running on tx
func (repo *UserSQL) WithTx(tx driver.ITransactionalDB) UserRepository {
	return &UserSQL{tx}
}

func (repo *UserSQL) FindByID(ctx context.Context, id string) (*UserModel, error) {
	conn := repo.Conn
	row, err := conn.QueryContext(ctx, `SELECT id, email, created_at FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer row.Close()

	if row.Next() {
		user := new(UserModel)
		if err := row.Scan(&user.ID, &user.Email, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		return user, nil
	}
	return nil, row.Err()
}

// SaveUser returns ErrDuplicatedUser when id is taken. The conflict is skipped by the
// statement itself, an enclosing transaction stays usable
func (repo *UserSQL) SaveUser(ctx context.Context, post *UserModel) error {
	conn := repo.Conn
	query := `INSERT INTO users(id, email, created_at)
	VALUES($1, $2, $3)
	ON CONFLICT (id) DO NOTHING`
	if conn.Driver() == driver.DriverMySQL {
		query = `INSERT INTO users(id, email, created_at)
		VALUES($1, $2, $3)
		ON DUPLICATE KEY UPDATE id = id`
	}
	res, err := conn.ExecContext(ctx, query, post.ID, post.Email, post.CreatedAt.UTC())
	if driver.IsUniqueViolation(err) {
		return ErrDuplicatedUser
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDuplicatedUser
	}
	return nil
}
