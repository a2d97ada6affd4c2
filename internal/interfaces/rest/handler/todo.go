package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/study-tracker/internal/infrastructure/validate"
	"github.com/pot-code/study-tracker/internal/todo"
)

type TodoHandler struct {
	todoUseCase todo.TodoUseCase
	validator   validate.Validator
}

func NewTodoHandler(TodoUseCase todo.TodoUseCase, Validator validate.Validator) *TodoHandler {
	return &TodoHandler{TodoUseCase, Validator}
}

// HandleListTodos GET /todos?userId=
func (th *TodoHandler) HandleListTodos(c echo.Context) error {
	userID := c.QueryParam("userId")
	if errs := th.validator.Empty("userId", userID); errs != nil {
		return respondValidation(c, errs)
	}

	todos, err := th.todoUseCase.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, todos)
}

// HandleAddTodo POST /todos
func (th *TodoHandler) HandleAddTodo(c echo.Context) error {
	form := new(todo.TodoForm)
	if ok, err := bindForm(c, th.validator, form); !ok {
		return err
	}

	item, err := th.todoUseCase.Add(c.Request().Context(), form.UserID, form.Text)
	if errors.Is(err, todo.ErrEmptyText) {
		return respondValidation(c, []*validate.FieldError{validate.NewFieldError("text", err.Error())})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

// HandleToggleTodo PATCH /todos/:id?userId=
func (th *TodoHandler) HandleToggleTodo(c echo.Context) error {
	userID := c.QueryParam("userId")
	if errs := th.validator.Empty("userId", userID); errs != nil {
		return respondValidation(c, errs)
	}

	item, err := th.todoUseCase.Toggle(c.Request().Context(), userID, c.Param("id"))
	if errors.Is(err, todo.ErrNotFound) {
		return respondError(c, http.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// HandleRemoveTodo DELETE /todos/:id?userId=
func (th *TodoHandler) HandleRemoveTodo(c echo.Context) error {
	userID := c.QueryParam("userId")
	if errs := th.validator.Empty("userId", userID); errs != nil {
		return respondValidation(c, errs)
	}

	err := th.todoUseCase.Remove(c.Request().Context(), userID, c.Param("id"))
	if errors.Is(err, todo.ErrNotFound) {
		return respondError(c, http.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
