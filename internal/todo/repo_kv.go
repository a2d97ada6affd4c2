package todo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pot-code/study-tracker/internal/infrastructure/driver"
)

// KeyPrefix key of a user's list is KeyPrefix + userID
const KeyPrefix = "todos:"

// TodoKV stores each task list as one JSON document
type TodoKV struct {
	KV driver.KeyValueDB
}

var _ TodoRepository = &TodoKV{}

func NewTodoRepository(KV driver.KeyValueDB) *TodoKV {
	return &TodoKV{KV}
}

func (repo *TodoKV) Load(ctx context.Context, userID string) ([]*TodoModel, error) {
	raw, err := repo.KV.Get(ctx, KeyPrefix+userID)
	if errors.Is(err, driver.ErrKeyNotFound) {
		return []*TodoModel{}, nil
	}
	if err != nil {
		return nil, err
	}

	todos := []*TodoModel{}
	if err := json.Unmarshal([]byte(raw), &todos); err != nil {
		return nil, fmt.Errorf("decoding task list of %s: %w", userID, err)
	}
	return todos, nil
}

func (repo *TodoKV) Save(ctx context.Context, userID string, todos []*TodoModel) error {
	if len(todos) == 0 {
		return repo.KV.Del(ctx, KeyPrefix+userID)
	}
	raw, err := json.Marshal(todos)
	if err != nil {
		return err
	}
	return repo.KV.Set(ctx, KeyPrefix+userID, string(raw), 0)
}
