package books

import (
	"fmt"
	"time"
)

// FormatRelativeDate renders a timestamp as a coarse relative string for
// the activity feed ("today", "yesterday", "3 weeks ago", ...).
func FormatRelativeDate(t, now time.Time) string {
	days := int(now.Sub(t).Hours() / 24)

	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return plural(days/7, "week")
	case days < 365:
		return plural(days/30, "month")
	default:
		return plural(days/365, "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
