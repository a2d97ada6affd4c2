package todo

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pot-code/study-tracker/internal/infrastructure/uuid"
	"go.elastic.co/apm"
)

// TodoUseCaseImpl ...
type TodoUseCaseImpl struct {
	TodoRepository TodoRepository
	UUIDGenerator  uuid.Generator
	Now            func() time.Time

	// serializes read-modify-write of the stored lists within this process
	mu sync.Mutex
}

var _ TodoUseCase = &TodoUseCaseImpl{}

// NewTodoUseCase ...
func NewTodoUseCase(TodoRepository TodoRepository, UUIDGenerator uuid.Generator) *TodoUseCaseImpl {
	return &TodoUseCaseImpl{
		TodoRepository: TodoRepository,
		UUIDGenerator:  UUIDGenerator,
		Now:            time.Now,
	}
}

func (tu *TodoUseCaseImpl) List(ctx context.Context, userID string) ([]*TodoModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "TodoUseCaseImpl.List", "service")
	defer apmSpan.End()

	return tu.TodoRepository.Load(ctx, userID)
}

// Add prepend a task with trimmed text
func (tu *TodoUseCaseImpl) Add(ctx context.Context, userID, text string) (*TodoModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "TodoUseCaseImpl.Add", "service")
	defer apmSpan.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	id, err := tu.UUIDGenerator.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating task id: %w", err)
	}
	item := &TodoModel{ID: id, Text: text, CreatedAt: tu.Now().UTC()}

	err = tu.update(ctx, userID, func(todos []*TodoModel) ([]*TodoModel, error) {
		return append([]*TodoModel{item}, todos...), nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Toggle flip the done flag
func (tu *TodoUseCaseImpl) Toggle(ctx context.Context, userID, id string) (*TodoModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "TodoUseCaseImpl.Toggle", "service")
	defer apmSpan.End()

	var toggled *TodoModel
	err := tu.update(ctx, userID, func(todos []*TodoModel) ([]*TodoModel, error) {
		for _, item := range todos {
			if item.ID == id {
				item.Done = !item.Done
				toggled = item
				return todos, nil
			}
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return toggled, nil
}

func (tu *TodoUseCaseImpl) Remove(ctx context.Context, userID, id string) error {
	apmSpan, _ := apm.StartSpan(ctx, "TodoUseCaseImpl.Remove", "service")
	defer apmSpan.End()

	return tu.update(ctx, userID, func(todos []*TodoModel) ([]*TodoModel, error) {
		for i, item := range todos {
			if item.ID == id {
				return append(todos[:i], todos[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

func (tu *TodoUseCaseImpl) update(ctx context.Context, userID string, fn func([]*TodoModel) ([]*TodoModel, error)) error {
	tu.mu.Lock()
	defer tu.mu.Unlock()

	todos, err := tu.TodoRepository.Load(ctx, userID)
	if err != nil {
		return err
	}
	todos, err = fn(todos)
	if err != nil {
		return err
	}
	return tu.TodoRepository.Save(ctx, userID, todos)
}
