package subscription

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of subscription dates.
const DateLayout = "2006-01-02"

var strictLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDate parses an ISO-8601 timestamp. A bare date is retried once as
// "<date>T00:00:00".
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	for _, layout := range strictLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s+"T00:00:00"); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

// FormatDate renders t in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
