package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/study-tracker/internal/analytics"
)

type AnalyticsHandler struct {
	analyticsUseCase analytics.AnalyticsUseCase
	filter           *UserFilter
}

func NewAnalyticsHandler(AnalyticsUseCase analytics.AnalyticsUseCase, Filter *UserFilter) *AnalyticsHandler {
	return &AnalyticsHandler{AnalyticsUseCase, Filter}
}

// HandleGetSummary GET /analytics/summary?userId=
func (ah *AnalyticsHandler) HandleGetSummary(c echo.Context) error {
	userID, errs := ah.filter.UserID(c)
	if errs != nil {
		return respondValidation(c, errs)
	}

	summary, err := ah.analyticsUseCase.WeeklySummary(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}
