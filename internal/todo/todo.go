package todo

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound no task with the given id in the user's list
	ErrNotFound = errors.New("task not found")
	// ErrEmptyText task text is blank after trimming
	ErrEmptyText = errors.New("task text is empty")
)

// TodoModel one entry of a user's task list
type TodoModel struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"createdAt"`
}

// TodoForm body of a new task
type TodoForm struct {
	UserID string `json:"userId" validate:"required"`
	Text   string `json:"text" validate:"required"`
}

type TodoRepository interface {
	// Load returns an empty list for users without tasks
	Load(ctx context.Context, userID string) ([]*TodoModel, error)
	Save(ctx context.Context, userID string, todos []*TodoModel) error
}

type TodoUseCase interface {
	// List newest first
	List(ctx context.Context, userID string) ([]*TodoModel, error)
	Add(ctx context.Context, userID, text string) (*TodoModel, error)
	Toggle(ctx context.Context, userID, id string) (*TodoModel, error)
	Remove(ctx context.Context, userID, id string) error
}
