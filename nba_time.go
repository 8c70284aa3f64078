package poller

import (
	"strings"
	"time"
	_ "time/tzdata"
)

var eastern = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// Eastern is the league's reference time zone.
func Eastern() *time.Location {
	return eastern
}

var offsetLayouts = []string{
	time.RFC3339,             // 2006-01-02T15:04:05-05:00
	"2006-01-02T15:04Z07:00", // no seconds
	"2006-01-02 15:04:05Z07:00",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseStartTime parses a game start time and returns it in Eastern time.
// The feed labels Eastern wall-clock times with a trailing "Z", so a "Z" is
// dropped and the time read as Eastern. Times without an offset are Eastern too.
func ParseStartTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "Z")
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range offsetLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.In(eastern), true
		}
	}
	for _, layout := range naiveLayouts {
		if parsed, err := time.ParseInLocation(layout, s, eastern); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// NBADate returns the game-day date (YYYY-MM-DD) for now. Games that run past
// midnight belong to the previous day until 04:00 Eastern.
func NBADate(now time.Time) string {
	et := now.In(eastern)
	if et.Hour() < 4 {
		et = et.AddDate(0, 0, -1)
	}
	return et.Format(time.DateOnly)
}

// EarliestStartTime returns the earliest parseable start time among records, in UTC.
func EarliestStartTime(records []GameRecord) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, rec := range records {
		start, ok := ParseStartTime(rec.StartTime)
		if !ok {
			continue
		}
		if !found || start.Before(earliest) {
			earliest = start
			found = true
		}
	}
	return earliest.UTC(), found
}
