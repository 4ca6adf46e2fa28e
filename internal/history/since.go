package history

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"ownergen/internal/errors"
)

var relativePattern = regexp.MustCompile(`^(\d+)\s*(second|minute|hour|day|week|month|year)s?\s+ago$`)

var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseSince parses a --since value: an RFC3339 timestamp, a date
// (YYYY-MM-DD, optionally with a THH:MM:SS or " HH:MM:SS" time in local time),
// or a relative "N <unit>(s) ago" with units second through year.
func ParseSince(s string, now time.Time) (time.Time, error) {
	value := strings.ToLower(strings.TrimSpace(s))
	if value == "" {
		return time.Time{}, errors.Newf(errors.InvalidArgument, "empty date")
	}

	switch value {
	case "today":
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
	case "yesterday":
		y, m, d := now.AddDate(0, 0, -1).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
	}

	if m := relativePattern.FindStringSubmatch(value); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, errors.New(errors.InvalidArgument, "invalid date "+s, err)
		}
		switch m[2] {
		case "second":
			return now.Add(-time.Duration(n) * time.Second), nil
		case "minute":
			return now.Add(-time.Duration(n) * time.Minute), nil
		case "hour":
			return now.Add(-time.Duration(n) * time.Hour), nil
		case "day":
			return now.AddDate(0, 0, -n), nil
		case "week":
			return now.AddDate(0, 0, -7*n), nil
		case "month":
			return now.AddDate(0, -n, 0), nil
		default:
			return now.AddDate(-n, 0, 0), nil
		}
	}

	raw := strings.TrimSpace(s)
	for _, layout := range absoluteLayouts {
		if layout == time.RFC3339 {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, raw, now.Location()); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.Newf(errors.InvalidArgument,
		"invalid date %q (use YYYY-MM-DD, RFC3339, or \"N days|weeks|months|years ago\")", s)
}
