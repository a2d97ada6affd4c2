package todo

import (
	"context"
	"testing"
	"time"

	"github.com/pot-code/study-tracker/internal/infrastructure/driver"
	"github.com/pot-code/study-tracker/internal/infrastructure/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUseCase(ids ...string) (*TodoUseCaseImpl, *driver.MemoryKV) {
	kv := driver.NewMemoryKV()
	uc := NewTodoUseCase(NewTodoRepository(kv), &uuid.SequenceGenerator{IDs: ids})
	uc.Now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return uc, kv
}

func texts(todos []*TodoModel) []string {
	result := make([]string, 0, len(todos))
	for _, t := range todos {
		result = append(result, t.Text)
	}
	return result
}

func TestTodoUseCase_AddAndList(t *testing.T) {
	ctx := context.Background()
	uc, kv := newUseCase("t1", "t2")

	todos, err := uc.List(ctx, "alice")
	require.NoError(t, err)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)

	first, err := uc.Add(ctx, "alice", "  read chapter 3 ")
	require.NoError(t, err)
	assert.Equal(t, "t1", first.ID)
	assert.Equal(t, "read chapter 3", first.Text)
	assert.False(t, first.Done)

	_, err = uc.Add(ctx, "alice", "flashcards")
	require.NoError(t, err)

	todos, err = uc.List(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"flashcards", "read chapter 3"}, texts(todos))

	exists, err := kv.Exists(ctx, KeyPrefix+"alice")
	require.NoError(t, err)
	assert.True(t, exists)

	others, err := uc.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestTodoUseCase_AddEmpty(t *testing.T) {
	uc, _ := newUseCase("t1")
	_, err := uc.Add(context.Background(), "alice", "   ")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestTodoUseCase_Toggle(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase("t1")
	_, err := uc.Add(ctx, "alice", "flashcards")
	require.NoError(t, err)

	item, err := uc.Toggle(ctx, "alice", "t1")
	require.NoError(t, err)
	assert.True(t, item.Done)

	todos, err := uc.List(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, todos[0].Done)

	item, err = uc.Toggle(ctx, "alice", "t1")
	require.NoError(t, err)
	assert.False(t, item.Done)

	_, err = uc.Toggle(ctx, "alice", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = uc.Toggle(ctx, "bob", "t1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTodoUseCase_Remove(t *testing.T) {
	ctx := context.Background()
	uc, kv := newUseCase("t1", "t2")
	_, err := uc.Add(ctx, "alice", "one")
	require.NoError(t, err)
	_, err = uc.Add(ctx, "alice", "two")
	require.NoError(t, err)

	require.NoError(t, uc.Remove(ctx, "alice", "t1"))
	todos, err := uc.List(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"two"}, texts(todos))

	assert.ErrorIs(t, uc.Remove(ctx, "alice", "t1"), ErrNotFound)

	require.NoError(t, uc.Remove(ctx, "alice", "t2"))
	exists, err := kv.Exists(ctx, KeyPrefix+"alice")
	require.NoError(t, err)
	assert.False(t, exists, "an emptied list drops its key")
}

func TestTodoKV_Corrupted(t *testing.T) {
	ctx := context.Background()
	kv := driver.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, KeyPrefix+"alice", "not json", 0))

	_, err := NewTodoRepository(kv).Load(ctx, "alice")
	assert.Error(t, err)
}
