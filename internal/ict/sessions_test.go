package ict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eastern(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func TestSessionWindows(t *testing.T) {
	loc := eastern(t)
	clock := NewSessionClock()
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, loc) // a Tuesday

	cases := []struct {
		hour, min int
		want      Session
	}{
		{6, 59, SessionOther},
		{7, 0, SessionNYKill},
		{9, 59, SessionNYKill},
		{10, 0, SessionReversal},
		{11, 29, SessionReversal},
		{11, 30, SessionOther},
		{15, 0, SessionOther},
	}
	for _, tc := range cases {
		at := day.Add(time.Duration(tc.hour)*time.Hour + time.Duration(tc.min)*time.Minute)
		assert.Equal(t, tc.want, clock.Session(at), "%02d:%02d", tc.hour, tc.min)
	}
}

func TestConfidenceBuckets(t *testing.T) {
	loc := eastern(t)
	clock := NewSessionClock()
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, loc)

	cases := []struct {
		hour, min int
		want      int
	}{
		{9, 29, 2},
		{9, 30, 10},
		{10, 29, 10},
		{10, 30, 7},
		{11, 30, 4},
		{13, 59, 4},
		{14, 0, 6},
		{16, 14, 6},
		{16, 15, 2},
		{5, 0, 2},
	}
	for _, tc := range cases {
		at := day.Add(time.Duration(tc.hour)*time.Hour + time.Duration(tc.min)*time.Minute)
		assert.Equal(t, tc.want, clock.Confidence(at), "%02d:%02d", tc.hour, tc.min)
	}
}

func TestConfidenceOffDays(t *testing.T) {
	loc := eastern(t)
	clock := NewSessionClock()

	saturday := time.Date(2024, 3, 9, 10, 0, 0, 0, loc)
	assert.False(t, clock.TradingDay(saturday))
	assert.Equal(t, 2, clock.Confidence(saturday))

	christmas := time.Date(2024, 12, 25, 10, 0, 0, 0, loc)
	assert.False(t, clock.TradingDay(christmas))
	assert.Equal(t, 2, clock.Confidence(christmas))
}

func TestConfidenceConvertsFromOtherZones(t *testing.T) {
	clock := NewSessionClock()

	// 14:45 UTC on 2024-03-05 is 09:45 Eastern, the opening bucket.
	at := time.Date(2024, 3, 5, 14, 45, 0, 0, time.UTC)
	assert.Equal(t, 10, clock.Confidence(at))
	assert.Equal(t, SessionNYKill, clock.Session(at))
}
