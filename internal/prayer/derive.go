// Derivation math over already-fetched prayer times. Everything here is pure:
// HH:MM strings in, HH:MM strings out, no network and no persisted state.
package prayer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var clockPattern = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

// reference day for clock arithmetic; only the time-of-day survives into results.
var refDay = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// parseClock places an "HH:MM" string on the reference day. Anything that does
// not match the strict pattern, or whose fields are out of range, is rejected.
func parseClock(s string) (time.Time, bool) {
	if !clockPattern.MatchString(s) {
		return time.Time{}, false
	}
	parts := strings.SplitN(s, ":", 2)
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	if h > 23 || m > 59 {
		return time.Time{}, false
	}
	return refDay.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute), true
}

func formatClock(t time.Time) string {
	return t.Format("15:04")
}

// ValidClock reports whether s is a well-formed "HH:MM" wall-clock string.
func ValidClock(s string) bool {
	_, ok := parseClock(s)
	return ok
}

// NightDuration returns the Maghrib→Fajr span. Fajr is rolled to the next
// calendar day whenever its raw clock value is not after Maghrib's.
func NightDuration(maghrib, fajr string) (time.Duration, bool) {
	m, ok := parseClock(maghrib)
	if !ok {
		return 0, false
	}
	f, ok := parseClock(fajr)
	if !ok {
		return 0, false
	}
	if !f.After(m) {
		f = f.Add(24 * time.Hour)
	}
	return f.Sub(m), true
}

// LastThirdOfNight returns the start of the last third of the night between
// Maghrib and the following Fajr, as "HH:MM". Returns "" on unparseable input.
func LastThirdOfNight(maghrib, fajr string) string {
	night, ok := NightDuration(maghrib, fajr)
	if !ok {
		return ""
	}
	m, _ := parseClock(maghrib)
	start := m.Add(night * 2 / 3)
	return formatClock(start)
}

// TimeBeforeFajr returns Fajr minus the given number of minutes, as "HH:MM",
// rolling under midnight when needed. Returns "" on unparseable input.
func TimeBeforeFajr(fajr string, minutesBefore int) string {
	f, ok := parseClock(fajr)
	if !ok {
		return ""
	}
	return formatClock(f.Add(-time.Duration(minutesBefore) * time.Minute))
}

// RecommendedQailulahTime is half an hour after Dhuhr, the customary midday
// nap slot. Falls back to 13:00 when no prayer times are available.
func RecommendedQailulahTime(dhuhr string) string {
	d, ok := parseClock(dhuhr)
	if !ok {
		return "13:00"
	}
	return formatClock(d.Add(30 * time.Minute))
}

// ClampDuration floors a duration at zero. Sleep and night spans can come out
// negative near polar latitudes or from malformed inputs and must never be
// displayed that way.
func ClampDuration(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// FormatDuration renders a duration as "3h 45m" for display, clamping
// negatives to "0h 0m".
func FormatDuration(d time.Duration) string {
	d = ClampDuration(d)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", h, m)
}
