// Package calendar holds the single day convention shared by the session store
// range filter and the weekly bucket keys. Every day boundary in the service is
// computed here, in one location.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout date key layout, eg. 2024-03-01
const DayLayout = "2006-01-02"

// WindowDays number of days in a weekly window, today included
const WindowDays = 7

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DayLayout,
}

// LoadLocation resolves a zone name, "" and "Local" both mean the server zone
func LoadLocation(name string) (*time.Location, error) {
	switch name {
	case "", "Local", "local":
		return time.Local, nil
	case "UTC", "utc":
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

// StartOfDay returns midnight of t's calendar date in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// AddDays moves a midnight by n calendar days, keeping it on midnight across DST changes
func AddDays(day time.Time, n int, loc *time.Location) time.Time {
	lt := day.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day()+n, 0, 0, 0, 0, loc)
}

// DayKey returns the YYYY-MM-DD date of t in loc
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// WindowStart returns the midnight opening the 7-day window that ends on now's date
func WindowStart(now time.Time, loc *time.Location) time.Time {
	return AddDays(StartOfDay(now, loc), -(WindowDays - 1), loc)
}

// Window returns the 7 day midnights of the window ending on now's date, oldest first
func Window(now time.Time, loc *time.Location) []time.Time {
	start := WindowStart(now, loc)
	days := make([]time.Time, WindowDays)
	for i := range days {
		days[i] = AddDays(start, i, loc)
	}
	return days
}

// ParseTimestamp parses a client supplied timestamp and normalizes it to UTC.
//
// Timestamps without an offset are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
