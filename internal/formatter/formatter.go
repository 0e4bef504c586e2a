// package formatter renders recent sheets, CM objects and GTM requests as text, CSV or Markdown, and formats relative dates
package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const day = 24 * time.Hour

// DaysBetween returns the signed number of whole days from now to t, rounding half days up.
func DaysBetween(t, now time.Time) int {
	return int(math.Floor(float64(t.Sub(now))/float64(day) + 0.5))
}

// RelativeDays renders the distance from now to t in English the way a short, auto-numeric relative time format does:
// "today", "yesterday", "tomorrow", "3 days ago", "in 3 days".
func RelativeDays(t, now time.Time) string {
	switch n := DaysBetween(t, now); {
	case n == 0:
		return "today"
	case n == -1:
		return "yesterday"
	case n == 1:
		return "tomorrow"
	case n < 0:
		return fmt.Sprintf("%d days ago", -n)
	default:
		return fmt.Sprintf("in %d days", n)
	}
}

var titleCaser = cases.Title(language.English)

// Humanize turns backend enum values such as FULL_AUTH or APPROVE into "Full Auth" and "Approve".
func Humanize(s string) string {
	if s == "" {
		return ""
	}
	return titleCaser.String(strings.ToLower(strings.ReplaceAll(s, "_", " ")))
}
