package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultWindow is the report window used when none is given.
const DefaultWindow = "1w"

var windowSegment = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)

var windowUnits = map[string]int{
	"d": 1, "day": 1, "days": 1,
	"w": 7, "wk": 7, "wks": 7, "week": 7, "weeks": 7,
}

// ParseWindow reads a look-back window such as "3d", "2w" or "1w2d" and
// returns its length in days with a compact label.
func ParseWindow(input string) (int, string, error) {
	rest := strings.ToLower(strings.TrimSpace(input))
	if rest == "" {
		rest = DefaultWindow
	}
	days := 0
	for rest != "" {
		m := windowSegment.FindStringSubmatch(rest)
		if m == nil {
			return 0, "", fmt.Errorf("calendar: invalid window segment %q", strings.TrimSpace(rest))
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, "", fmt.Errorf("calendar: invalid window value %q: %w", m[1], err)
		}
		unit, ok := windowUnits[m[2]]
		if !ok {
			return 0, "", fmt.Errorf("calendar: unsupported window unit %q", m[2])
		}
		days += n * unit
		rest = strings.TrimSpace(rest[len(m[0]):])
	}
	if days <= 0 {
		return 0, "", fmt.Errorf("calendar: window must be at least one day")
	}
	return days, WindowLabel(days), nil
}

// WindowLabel renders days as weeks and days ("1w2d").
func WindowLabel(days int) string {
	if days <= 0 {
		return "0d"
	}
	var b strings.Builder
	if w := days / 7; w > 0 {
		fmt.Fprintf(&b, "%dw", w)
	}
	if d := days % 7; d > 0 {
		fmt.Fprintf(&b, "%dd", d)
	}
	return b.String()
}

// WindowStart is the midnight that opens a window of days ending today.
func WindowStart(now time.Time, days int) time.Time {
	return Midnight(now).AddDate(0, 0, -(days - 1))
}
