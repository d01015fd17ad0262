package parse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the display format of expiry dates.
const DateLayout = "2006.01.02"

var dateLayouts = []string{
	DateLayout,
	"2006-01-02",
	"2006/01/02",
	"20060102",
}

// Date parses an expiry date typed by a user. Date-only inputs are
// interpreted as midnight in loc; RFC3339 timestamps keep their instant.
func Date(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %q", raw)
}

// FormatDate renders t in loc using DateLayout.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// DaysLeft returns the number of calendar days from now until expiry, both
// taken as dates in loc. It is negative once the voucher has expired.
func DaysLeft(expiry, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	return int(calendarDay(expiry, loc).Sub(calendarDay(now, loc)).Hours() / 24)
}

// calendarDay maps t onto midnight UTC of its calendar date in loc, so
// subtraction is not skewed by DST transitions.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DDay renders a days-left count the way the dashboard shows it.
func DDay(daysLeft int) string {
	switch {
	case daysLeft > 0:
		return "D-" + strconv.Itoa(daysLeft)
	case daysLeft == 0:
		return "D-DAY"
	default:
		return "D+" + strconv.Itoa(-daysLeft)
	}
}
