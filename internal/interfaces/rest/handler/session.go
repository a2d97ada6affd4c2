package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/study-tracker/internal/infrastructure/validate"
	"github.com/pot-code/study-tracker/internal/session"
)

// UserFilter reads the optional userId query parameter
type UserFilter struct {
	// Required rejects requests without userId instead of listing every user
	Required  bool
	Validator validate.Validator
}

// UserID returns field errors when the parameter is required but missing
func (uf *UserFilter) UserID(c echo.Context) (string, []*validate.FieldError) {
	userID := c.QueryParam("userId")
	if uf.Required {
		if errs := uf.Validator.Empty("userId", userID); errs != nil {
			return "", errs
		}
	}
	return userID, nil
}

type SessionHandler struct {
	sessionUseCase session.SessionUseCase
	validator      validate.Validator
	filter         *UserFilter
}

func NewSessionHandler(
	SessionUseCase session.SessionUseCase,
	Validator validate.Validator,
	Filter *UserFilter,
) *SessionHandler {
	return &SessionHandler{SessionUseCase, Validator, Filter}
}

// HandleListSessions GET /sessions?userId=
func (sh *SessionHandler) HandleListSessions(c echo.Context) error {
	userID, errs := sh.filter.UserID(c)
	if errs != nil {
		return respondValidation(c, errs)
	}

	sessions, err := sh.sessionUseCase.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	if sessions == nil {
		sessions = []*session.SessionModel{}
	}
	return c.JSON(http.StatusOK, sessions)
}

// HandleCreateSession POST /sessions
func (sh *SessionHandler) HandleCreateSession(c echo.Context) error {
	form := new(session.SessionForm)
	if ok, err := bindForm(c, sh.validator, form); !ok {
		return err
	}

	created, err := sh.sessionUseCase.Create(c.Request().Context(), form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// HandleDeleteSession DELETE /sessions/:id
func (sh *SessionHandler) HandleDeleteSession(c echo.Context) error {
	id := c.Param("id")
	err := sh.sessionUseCase.Delete(c.Request().Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		return respondError(c, http.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
