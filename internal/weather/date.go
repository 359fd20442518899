package weather

import (
	"errors"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateLayout is the applicable_date format used by the provider.
const DateLayout = "2006-01-02"

// extraLayouts covers spellings dateparse does not recognise.
var extraLayouts = []string{
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
}

// ParseDate accepts the common calendar date spellings (with or without a
// time of day) and returns the date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("date is required")
	}
	if ts, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return midnight(ts), nil
	}
	for _, layout := range extraLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return midnight(ts), nil
		}
	}
	return time.Time{}, errors.New("invalid date format; use YYYY-MM-DD")
}

func midnight(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}
