package utils

import (
	"errors"
	"strings"
	"time"
)

// IST is the fixed UTC+05:30 zone every time is presented in.
var IST = time.FixedZone("IST", 5*3600+30*60)

// ErrBadTime is returned by ParseISO for input it cannot read.
var ErrBadTime = errors.New("invalid ISO-8601 time")

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04Z07:00",
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseISO reads an ISO-8601 time.  Input without an offset is taken to
// be in IST.  The result is always expressed in IST.
func ParseISO(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrBadTime
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(IST), nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, IST); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrBadTime
}

// FormatISO renders t in IST as RFC 3339, e.g. 2025-12-01T19:00:00+05:30.
func FormatISO(t time.Time) string {
	return t.In(IST).Format(time.RFC3339)
}

// NowIST returns the current time in IST.
func NowIST() time.Time { return time.Now().In(IST) }
