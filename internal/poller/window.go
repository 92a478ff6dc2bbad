package poller

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// secondsPerDay is also the end-of-day sentinel: a window end of 24:00 means
// "active until midnight, exclusive".
const secondsPerDay = 24 * 60 * 60

// TimeOfDay is a civil time of day expressed as seconds since local midnight.
type TimeOfDay int

// String renders the time of day back to HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/3600, int(t)%3600/60)
}

// ParseTimeOfDay converts an HH:MM string into a TimeOfDay. "24:00" is the
// end-of-day sentinel and the only valid value with hour 24.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	value = strings.TrimSpace(value)
	hourStr, minuteStr, ok := strings.Cut(value, ":")
	if !ok {
		return 0, fmt.Errorf("time %q must be in HH:MM format", value)
	}
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return 0, fmt.Errorf("time %q has invalid hour: %w", value, err)
	}
	minute, err := strconv.Atoi(minuteStr)
	if err != nil {
		return 0, fmt.Errorf("time %q has invalid minute: %w", value, err)
	}
	if hour == 24 && minute == 0 {
		return secondsPerDay, nil
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time %q out of range: hour must be 0-24, minute 0-59", value)
	}
	return TimeOfDay(hour*3600 + minute*60), nil
}

// Window is the daily civil-time range during which fetching is permitted.
// The start bound is inclusive, the end bound exclusive. Windows never wrap
// past local midnight; NewWindow rejects such configurations.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
	loc   *time.Location
}

// NewWindow parses and validates an active window in the named timezone.
func NewWindow(start, end, timezone string) (Window, error) {
	startTOD, err := ParseTimeOfDay(start)
	if err != nil {
		return Window{}, fmt.Errorf("active window start: %w", err)
	}
	endTOD, err := ParseTimeOfDay(end)
	if err != nil {
		return Window{}, fmt.Errorf("active window end: %w", err)
	}
	if startTOD == secondsPerDay {
		return Window{}, fmt.Errorf("active window start cannot be 24:00")
	}
	if startTOD == endTOD {
		return Window{}, fmt.Errorf("active window start and end cannot both be %s", startTOD)
	}
	if endTOD < startTOD {
		return Window{}, fmt.Errorf(
			"active window %s-%s wraps past midnight, which is not supported; use 24:00 as the end sentinel",
			startTOD, endTOD,
		)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Window{}, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return Window{Start: startTOD, End: endTOD, loc: loc}, nil
}

// Location returns the window's timezone.
func (w Window) Location() *time.Location {
	return w.loc
}

// Contains reports whether the instant falls inside the active window. The
// comparison happens on wall-clock fields in the configured zone, so it
// tracks daylight-saving shifts rather than a fixed UTC offset.
func (w Window) Contains(now time.Time) bool {
	local := now.In(w.loc)
	second := TimeOfDay(local.Hour()*3600 + local.Minute()*60 + local.Second())
	return second >= w.Start && second < w.End
}
