package processor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekOf(t *testing.T) {
	tests := []struct {
		name      string
		in        time.Time
		wantStart time.Time
	}{
		{"monday maps to itself", date(2025, time.January, 20), date(2025, time.January, 20)},
		{"midweek", time.Date(2025, time.January, 22, 14, 30, 0, 0, time.UTC), date(2025, time.January, 20)},
		{"sunday rolls back to previous monday", date(2025, time.January, 26), date(2025, time.January, 20)},
		{"year boundary", date(2025, time.January, 1), date(2024, time.December, 30)},
		{"leap february", date(2024, time.February, 29), date(2024, time.February, 26)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := weekOf(tt.in)
			assert.True(t, start.Equal(tt.wantStart), "start = %v, want %v", start, tt.wantStart)
			assert.Equal(t, time.Monday, start.Weekday())
			assert.Equal(t, time.Sunday, end.Weekday())

			wantEnd := tt.wantStart.AddDate(0, 0, 6).Add(23*time.Hour + 59*time.Minute + 59*time.Second)
			assert.True(t, end.Equal(wantEnd), "end = %v, want %v", end, wantEnd)
		})
	}
}

func TestWeekOfIdempotent(t *testing.T) {
	// Feeding the computed start back in must return the same week.
	for d := 0; d < 14; d++ {
		in := date(2025, time.March, 3).AddDate(0, 0, d)
		start, _ := weekOf(in)
		again, _ := weekOf(start)
		assert.True(t, start.Equal(again), "weekOf not stable for %v", in)
	}
}

func TestWeekKeyOrdering(t *testing.T) {
	a, _ := weekOf(date(2025, time.January, 20))
	b, _ := weekOf(date(2025, time.January, 27))
	assert.Less(t, weekKey(a), weekKey(b))
	assert.Equal(t, "2025-01-20", weekKey(a))
	assert.Equal(t, "2025-01-27", weekKey(b))
}

func TestWeekDateRange(t *testing.T) {
	start, end := weekOf(date(2025, time.January, 22))
	assert.Equal(t, "2025-01-20 - 2025-01-26", weekDateRange(start, end))
}

func TestParseTimestamp(t *testing.T) {
	valid := []string{
		"2025-01-20",
		"2025-01-20T10:30:00",
		"2025-01-20 10:30:00",
		"2025-01-20T10:30:00Z",
		"2025-01-20T10:30:00+02:00",
	}
	for _, s := range valid {
		ts, ok := parseTimestamp(s)
		require.True(t, ok, "expected %q to parse", s)
		assert.Equal(t, 2025, ts.Year())
	}

	invalid := []string{"", "not-a-date", "20/01/2025", "2025-13-40"}
	for _, s := range invalid {
		_, ok := parseTimestamp(s)
		assert.False(t, ok, "expected %q to be rejected", s)
	}
}
