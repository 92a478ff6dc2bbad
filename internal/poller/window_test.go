package poller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{name: "morning", input: "05:00", want: 5 * 3600},
		{name: "single digits", input: "7:5", want: 7*3600 + 5*60},
		{name: "midnight", input: "00:00", want: 0},
		{name: "end of day sentinel", input: "24:00", want: secondsPerDay},
		{name: "surrounding whitespace", input: " 09:30 ", want: 9*3600 + 30*60},
		{name: "past the sentinel", input: "24:01", wantErr: true},
		{name: "hour out of range", input: "25:00", wantErr: true},
		{name: "minute out of range", input: "12:60", wantErr: true},
		{name: "negative hour", input: "-1:00", wantErr: true},
		{name: "no separator", input: "1200", wantErr: true},
		{name: "not a number", input: "ab:cd", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTimeOfDay(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestNewWindowRejectsBadConfigurations(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name             string
		start, end, zone string
	}{
		{name: "wraps past midnight", start: "22:00", end: "02:00", zone: "Asia/Singapore"},
		{name: "start equals end", start: "09:00", end: "09:00", zone: "Asia/Singapore"},
		{name: "start is sentinel", start: "24:00", end: "24:00", zone: "Asia/Singapore"},
		{name: "malformed start", start: "9am", end: "17:00", zone: "Asia/Singapore"},
		{name: "malformed end", start: "09:00", end: "17h", zone: "Asia/Singapore"},
		{name: "unknown timezone", start: "09:00", end: "17:00", zone: "Mars/Olympus_Mons"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewWindow(tc.start, tc.end, tc.zone)
			require.Error(t, err)
		})
	}
}

func TestWindowContainsBoundaries(t *testing.T) {
	t.Parallel()

	w, err := NewWindow("09:00", "17:00", "UTC")
	require.NoError(t, err)

	day := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "before start", at: day.Add(8*time.Hour + 59*time.Minute + 59*time.Second), want: false},
		{name: "exactly start is active", at: day.Add(9 * time.Hour), want: true},
		{name: "mid window", at: day.Add(12 * time.Hour), want: true},
		{name: "last active second", at: day.Add(16*time.Hour + 59*time.Minute + 59*time.Second), want: true},
		{name: "exactly end is inactive", at: day.Add(17 * time.Hour), want: false},
		{name: "evening", at: day.Add(20 * time.Hour), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, w.Contains(tc.at))
		})
	}
}

func TestWindowEndOfDaySentinel(t *testing.T) {
	t.Parallel()

	w, err := NewWindow("05:00", "24:00", "Asia/Singapore")
	require.NoError(t, err)

	sg, err := time.LoadLocation("Asia/Singapore")
	require.NoError(t, err)

	require.True(t, w.Contains(time.Date(2026, 6, 15, 23, 59, 59, 0, sg)))
	require.True(t, w.Contains(time.Date(2026, 6, 15, 5, 0, 0, 0, sg)))
	require.False(t, w.Contains(time.Date(2026, 6, 15, 4, 59, 59, 0, sg)))
	require.False(t, w.Contains(time.Date(2026, 6, 16, 0, 0, 0, 0, sg)))
}

// TestWindowTracksDaylightSaving pins the comparison to wall-clock fields:
// the same UTC instant-of-day flips between active and inactive across a
// DST transition.
func TestWindowTracksDaylightSaving(t *testing.T) {
	t.Parallel()

	w, err := NewWindow("09:00", "17:00", "America/New_York")
	require.NoError(t, err)

	// 2026-03-08 is the spring-forward date in the US. 13:00 UTC is
	// 08:00 EST the day before the change and 09:00 EDT after it.
	require.False(t, w.Contains(time.Date(2026, 3, 7, 13, 0, 0, 0, time.UTC)))
	require.True(t, w.Contains(time.Date(2026, 3, 8, 13, 0, 0, 0, time.UTC)))
}

func TestWindowContainsIsPure(t *testing.T) {
	t.Parallel()

	w, err := NewWindow("09:00", "17:00", "Asia/Singapore")
	require.NoError(t, err)

	at := time.Date(2026, 6, 15, 4, 0, 0, 0, time.UTC) // 12:00 SGT
	first := w.Contains(at)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, w.Contains(at))
	}
	require.True(t, first)
}
