package analytics

import (
	"context"
	"time"

	"github.com/pot-code/study-tracker/internal/calendar"
	"github.com/pot-code/study-tracker/internal/session"
)

// DailyBucket minutes studied on one calendar day
type DailyBucket struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

// WeeklySummary study minutes of the 7 days ending today
type WeeklySummary struct {
	ByDay         []DailyBucket `json:"byDay"`
	TotalThisWeek int           `json:"totalThisWeek"`
	StreakDays    int           `json:"streakDays"`
}

// SessionSource provides the sessions started at or after since
type SessionSource interface {
	ListSince(ctx context.Context, userID string, since time.Time) ([]*session.SessionModel, error)
}

type AnalyticsUseCase interface {
	// WeeklySummary summary of userID's window ending at the current day, every user when userID is empty
	WeeklySummary(ctx context.Context, userID string) (*WeeklySummary, error)
}

// Aggregate bucket sessions of userID into the window ending on now's day in loc.
// An empty userID keeps every session, sessions outside the window are dropped.
func Aggregate(sessions []*session.SessionModel, userID string, now time.Time, loc *time.Location) *WeeklySummary {
	days := calendar.Window(now, loc)
	summary := &WeeklySummary{ByDay: make([]DailyBucket, len(days))}

	index := make(map[string]int, len(days))
	for i, day := range days {
		key := calendar.DayKey(day, loc)
		summary.ByDay[i] = DailyBucket{Date: key}
		index[key] = i
	}

	for _, s := range sessions {
		if userID != "" && s.UserID != userID {
			continue
		}
		i, ok := index[calendar.DayKey(s.StartedAt, loc)]
		if !ok {
			continue
		}
		summary.ByDay[i].Minutes += s.DurationMin
		summary.TotalThisWeek += s.DurationMin
	}

	for i := len(summary.ByDay) - 1; i >= 0; i-- {
		if summary.ByDay[i].Minutes <= 0 {
			break
		}
		summary.StreakDays++
	}
	return summary
}
