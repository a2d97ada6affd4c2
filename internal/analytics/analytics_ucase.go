package analytics

import (
	"context"
	"time"

	"github.com/pot-code/study-tracker/internal/calendar"
	"go.elastic.co/apm"
)

// AnalyticsUseCaseImpl ...
type AnalyticsUseCaseImpl struct {
	Sessions SessionSource
	Location *time.Location
	Now      func() time.Time
}

var _ AnalyticsUseCase = &AnalyticsUseCaseImpl{}

// NewAnalyticsUseCase loc is the calendar zone of both the store range and the day buckets
func NewAnalyticsUseCase(Sessions SessionSource, loc *time.Location) *AnalyticsUseCaseImpl {
	return &AnalyticsUseCaseImpl{
		Sessions: Sessions,
		Location: loc,
		Now:      time.Now,
	}
}

func (au *AnalyticsUseCaseImpl) WeeklySummary(ctx context.Context, userID string) (*WeeklySummary, error) {
	apmSpan, _ := apm.StartSpan(ctx, "AnalyticsUseCaseImpl.WeeklySummary", "service")
	defer apmSpan.End()

	now := au.Now()
	sessions, err := au.Sessions.ListSince(ctx, userID, calendar.WindowStart(now, au.Location))
	if err != nil {
		return nil, err
	}
	return Aggregate(sessions, userID, now, au.Location), nil
}
