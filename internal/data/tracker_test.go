package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ict-algo-trader/internal/model"
	"ict-algo-trader/pkg/ta"
)

var trackerStart = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

func testCalc() *ta.Calculator {
	return ta.NewCalculator(1, zap.NewNop().Sugar())
}

func testTick(at time.Time, last, cumVolume float64) model.Tick {
	return model.Tick{Symbol: "MES", Timestamp: at, Last: last, Volume: cumVolume}
}

func newMinuteTracker(t *testing.T, offset time.Duration) *Tracker {
	t.Helper()
	return NewTracker("MES", time.Minute, offset, 600, testCalc(), zap.NewNop().Sugar())
}

func TestAddTickVolumeDelta(t *testing.T) {
	tr := newMinuteTracker(t, 0)

	require.NoError(t, tr.AddTick(testTick(trackerStart.Add(1*time.Second), 100, 1000)))
	require.NoError(t, tr.AddTick(testTick(trackerStart.Add(10*time.Second), 100.5, 1000)))
	require.NoError(t, tr.AddTick(testTick(trackerStart.Add(20*time.Second), 101, 1050)))

	c, ok := tr.Current()
	require.True(t, ok)
	assert.Equal(t, 50.0, c.Volume, "first tick seeds the baseline, later ticks contribute deltas")
}

func TestAddTickVolumeRegressionClampsToZero(t *testing.T) {
	tr := newMinuteTracker(t, 0)

	require.NoError(t, tr.AddTick(testTick(trackerStart.Add(1*time.Second), 100, 5000)))
	require.NoError(t, tr.AddTick(testTick(trackerStart.Add(5*time.Second), 100, 4000)))
	require.NoError(t, tr.AddTick(testTick(trackerStart.Add(9*time.Second), 100, 4025)))

	c, _ := tr.Current()
	assert.Equal(t, 25.0, c.Volume)
}

func TestAddTickBuildsOHLC(t *testing.T) {
	tr := newMinuteTracker(t, 0)

	for i, px := range []float64{10, 12, 9, 11} {
		at := trackerStart.Add(time.Duration(i+1) * time.Second)
		require.NoError(t, tr.AddTick(testTick(at, px, float64(100+i))))
	}

	c, ok := tr.Current()
	require.True(t, ok)
	assert.Equal(t, 10.0, c.Open)
	assert.Equal(t, 12.0, c.High)
	assert.Equal(t, 9.0, c.Low)
	assert.Equal(t, 11.0, c.Close)
	assert.Equal(t, trackerStart, c.TimeStart)
	assert.Equal(t, trackerStart.Add(time.Minute), c.TimeEnd)
}

func TestRolloverFreezesCandle(t *testing.T) {
	tr := newMinuteTracker(t, 0)

	require.NoError(t, tr.AddTick(testTick(trackerStart.Add(5*time.Second), 100, 1000)))
	require.NoError(t, tr.AddTick(testTick(trackerStart.Add(40*time.Second), 102, 1010)))
	require.NoError(t, tr.AddTick(testTick(trackerStart.Add(61*time.Second), 103, 1015)))

	require.Equal(t, 1, tr.Len())
	closed := tr.History()[0]
	assert.Equal(t, trackerStart, closed.TimeStart)
	assert.Equal(t, 100.0, closed.Open)
	assert.Equal(t, 102.0, closed.Close)
	assert.Equal(t, 10.0, closed.Volume)

	c, ok := tr.Current()
	require.True(t, ok)
	assert.Equal(t, trackerStart.Add(time.Minute), c.TimeStart)
	assert.Equal(t, 103.0, c.Open)
	assert.Equal(t, 5.0, c.Volume)
}

func TestOffsetShiftsWindowBoundaries(t *testing.T) {
	plain := newMinuteTracker(t, 0)
	shifted := newMinuteTracker(t, 30*time.Second)

	ticks := []model.Tick{
		testTick(trackerStart.Add(40*time.Second), 100, 1000),
		testTick(trackerStart.Add(70*time.Second), 101, 1005),
		testTick(trackerStart.Add(80*time.Second), 102, 1010),
	}
	for _, tk := range ticks {
		require.NoError(t, plain.AddTick(tk))
		require.NoError(t, shifted.AddTick(tk))
	}

	// The plain tracker rolls at the minute mark, the shifted one holds
	// its window open until :30 past.
	assert.Equal(t, 1, plain.Len())
	require.Equal(t, 0, shifted.Len())

	c, _ := shifted.Current()
	assert.Equal(t, trackerStart.Add(30*time.Second), c.TimeStart)
	assert.Equal(t, 102.0, c.Close)

	require.NoError(t, shifted.AddTick(testTick(trackerStart.Add(100*time.Second), 103, 1012)))
	require.Equal(t, 1, shifted.Len())
	assert.Equal(t, trackerStart.Add(90*time.Second), mustCurrent(t, shifted).TimeStart)
}

// Ticks arriving before the first shifted boundary roll one-tick candles
// onto the same key; the overwrite keeps exactly one row for that key.
func TestFirstPartialWindowCollapsesToOneRow(t *testing.T) {
	tr := newMinuteTracker(t, 30*time.Second)

	require.NoError(t, tr.AddTick(testTick(trackerStart.Add(5*time.Second), 100, 1000)))
	require.NoError(t, tr.AddTick(testTick(trackerStart.Add(10*time.Second), 101, 1002)))
	require.NoError(t, tr.AddTick(testTick(trackerStart.Add(40*time.Second), 102, 1004)))
	require.NoError(t, tr.AddTick(testTick(trackerStart.Add(100*time.Second), 103, 1006)))

	require.Equal(t, 1, tr.Len())
	closed := tr.History()[0]
	assert.Equal(t, trackerStart.Add(30*time.Second), closed.TimeStart)
	assert.Equal(t, 101.0, closed.Open)
	assert.Equal(t, 102.0, closed.Close)

	assert.Equal(t, trackerStart.Add(90*time.Second), mustCurrent(t, tr).TimeStart)
}

func TestAddTickRejectsMalformed(t *testing.T) {
	tr := newMinuteTracker(t, 0)

	bad := testTick(trackerStart, -1, 100)
	err := tr.AddTick(bad)
	require.ErrorIs(t, err, model.ErrInvalidTick)
	assert.Equal(t, 0, tr.Len())
	_, ok := tr.Current()
	assert.False(t, ok)

	// The rejected tick must not seed the volume baseline either.
	require.NoError(t, tr.AddTick(testTick(trackerStart.Add(time.Second), 100, 100)))
	require.NoError(t, tr.AddTick(testTick(trackerStart.Add(2*time.Second), 100, 130)))
	c, _ := tr.Current()
	assert.Equal(t, 30.0, c.Volume)
}

func TestHistoryRetentionTrims(t *testing.T) {
	tr := NewTracker("MES", time.Minute, 0, 3, testCalc(), zap.NewNop().Sugar())

	for i := 0; i < 6; i++ {
		at := trackerStart.Add(time.Duration(i) * time.Minute)
		require.NoError(t, tr.AddTick(testTick(at, 100+float64(i), float64(1000+i))))
	}

	require.Equal(t, 3, tr.Len())
	assert.Equal(t, trackerStart.Add(2*time.Minute), tr.History()[0].TimeStart)
	assert.Equal(t, trackerStart.Add(4*time.Minute), tr.History()[2].TimeStart)
}

func TestRolloverComputesIndicators(t *testing.T) {
	tr := newMinuteTracker(t, 0)

	px := 100.0
	for i := 0; i < 13; i++ {
		px += 0.5
		at := trackerStart.Add(time.Duration(i) * time.Minute)
		require.NoError(t, tr.AddTick(testTick(at, px, float64(1000+10*i))))
	}

	require.Equal(t, 12, tr.Len())
	last := tr.History()[tr.Len()-1]
	assert.NotNil(t, last.SMA9)
	assert.NotNil(t, last.Momentum9)
	assert.NotNil(t, last.VWAP)
	assert.Nil(t, last.RSI14, "fourteen-row indicators stay unset this early")
	assert.Nil(t, tr.History()[5].SMA9, "older rows keep the values they closed with")
}

func mustCurrent(t *testing.T, tr *Tracker) model.Candle {
	t.Helper()
	c, ok := tr.Current()
	require.True(t, ok)
	return c
}
