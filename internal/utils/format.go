package utils

import (
	"fmt"
	"time"
)

// TimeAgo renders t relative to now, e.g. "5 minutes ago".
func TimeAgo(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	seconds := int(time.Since(t).Seconds())
	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return plural(seconds/60, "minute") + " ago"
	case seconds < 86400:
		return plural(seconds/3600, "hour") + " ago"
	case seconds < 2592000:
		return plural(seconds/86400, "day") + " ago"
	case seconds < 31536000:
		return plural(seconds/2592000, "month") + " ago"
	}
	return plural(seconds/31536000, "year") + " ago"
}

// FormatMinutes renders a cooking time, e.g. 90 -> "1 h 30 min".
func FormatMinutes(minutes int) string {
	if minutes <= 0 {
		return "-"
	}
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%d min", m)
	case m == 0:
		return fmt.Sprintf("%d h", h)
	}
	return fmt.Sprintf("%d h %d min", h, m)
}

// DaysSince counts whole days since t, for "member for N days".
func DaysSince(t time.Time) int {
	return int(time.Since(t).Hours() / 24)
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
