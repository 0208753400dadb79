package levels

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ict-algo-trader/internal/model"
)

func zone(low, high float64) *model.Zone {
	return &model.Zone{Low: low, High: high}
}

func fp(v float64) *float64 {
	return &v
}

func lows(vals ...float64) []model.Candle {
	out := make([]model.Candle, len(vals))
	for i, v := range vals {
		out[i] = model.Candle{Low: v, High: v + 1}
	}
	return out
}

func highs(vals ...float64) []model.Candle {
	out := make([]model.Candle, len(vals))
	for i, v := range vals {
		out[i] = model.Candle{Low: v - 1, High: v}
	}
	return out
}

func TestEntryAveragesAnchors(t *testing.T) {
	c := Calc{
		Direction: model.DirLong,
		ATR:       2.0,
		VWAP:      fp(99.9),
		MergedOB:  zone(99, 101),
		FVG:       zone(99.5, 99.8),
	}
	tick := model.Tick{Mark: 100.0, Last: 100.1}

	// Anchors: 100, 100.1, 99.25, 99.75, 99.9 -> mean 99.8.
	assert.Equal(t, 99.75, c.Entry(tick, 100.0))
}

func TestEntryClipsToHalfATRFromMark(t *testing.T) {
	c := Calc{Direction: model.DirLong, ATR: 2.0, VWAP: fp(90)}
	tick := model.Tick{Mark: 100, Last: 100}

	// Mean of 100, 100, 90 is far below mark; the clip lands in the
	// trade direction, above mark.
	assert.Equal(t, 101.0, c.Entry(tick, 100.0))
}

func TestEntryShortUsesUpperEdges(t *testing.T) {
	c := Calc{
		Direction: model.DirShort,
		ATR:       2.0,
		VWAP:      fp(100.2),
		MergedOB:  zone(99, 101),
		FVG:       zone(100.2, 100.6),
	}
	tick := model.Tick{Mark: 100.0, Last: 99.9}

	// Anchors: 100, 99.9, 100.75, 100.35, 100.2 -> mean 100.24.
	assert.Equal(t, 100.25, c.Entry(tick, 100.0))
}

func TestEntryFallsBackToLastClose(t *testing.T) {
	c := Calc{Direction: model.DirLong, ATR: 2.0}

	assert.Equal(t, 123.4, c.Entry(model.Tick{}, 123.4))
}

func TestEntryIgnoresUnfavorableVWAP(t *testing.T) {
	c := Calc{Direction: model.DirLong, ATR: 5.0, VWAP: fp(102)}
	tick := model.Tick{Mark: 100, Last: 100}

	// VWAP above last is not a long anchor; mean of mark and last only.
	assert.Equal(t, 100.0, c.Entry(tick, 100.0))
}

func TestStopLossPrefersTighterStructure(t *testing.T) {
	c := Calc{Direction: model.DirLong, ATR: 4.0, NearestOB: zone(92, 94)}
	history := lows(99, 98.5, 98, 98.2, 99.1)

	// Composite block stop clamps to 92; the 97.75 structure stop is
	// closer to entry and wins.
	assert.Equal(t, 97.75, c.StopLoss(history, 100.0))
}

func TestStopLossKeepsCompositeWhenStructureFarther(t *testing.T) {
	c := Calc{Direction: model.DirLong, ATR: 2.0, NearestOB: zone(97.5, 98.5)}
	history := lows(96, 95, 95.5, 96.2, 96.8)

	assert.Equal(t, 97.25, c.StopLoss(history, 100.0))
}

func TestStopLossPoolTighterThanBlock(t *testing.T) {
	c := Calc{
		Direction: model.DirLong,
		ATR:       3.0,
		NearestOB: zone(95, 96),
		Pools:     zone(97, 98.5),
	}

	assert.Equal(t, 98.25, c.StopLoss(nil, 100.0))
}

func TestStopLossGapBacksAbsentBlockAndPool(t *testing.T) {
	c := Calc{Direction: model.DirLong, ATR: 2.0, FVG: zone(98, 99)}

	assert.Equal(t, 97.75, c.StopLoss(nil, 100.0))
}

func TestStopLossGapUsedWhenBlockOnWrongSide(t *testing.T) {
	c := Calc{
		Direction: model.DirLong,
		ATR:       2.0,
		NearestOB: zone(101, 102),
		FVG:       zone(98, 99),
	}

	assert.Equal(t, 97.75, c.StopLoss(nil, 100.0))
}

func TestStopLossBoundedToTwoATR(t *testing.T) {
	c := Calc{Direction: model.DirLong, ATR: 1.0, NearestOB: zone(90, 91)}

	assert.Equal(t, 98.0, c.StopLoss(nil, 100.0))
}

func TestStopLossFallsBackToHalfATR(t *testing.T) {
	c := Calc{Direction: model.DirLong, ATR: 2.0}

	assert.Equal(t, 99.0, c.StopLoss(nil, 100.0))
}

func TestStopLossShortMirror(t *testing.T) {
	c := Calc{
		Direction: model.DirShort,
		ATR:       2.0,
		NearestOB: zone(101.5, 102.5),
		Pools:     zone(103, 104),
	}
	history := highs(101.5, 101, 100.8, 101.2, 101.4)

	// Block stop 102.75 beats the pool stop 103.25, then the 101.75
	// structure stop tightens further.
	assert.Equal(t, 101.75, c.StopLoss(history, 100.0))
}

func TestStopLossNeverLandsOnEntry(t *testing.T) {
	long := Calc{Direction: model.DirLong, ATR: 0}
	short := Calc{Direction: model.DirShort, ATR: 0}

	assert.Equal(t, 99.75, long.StopLoss(nil, 100.0))
	assert.Equal(t, 100.25, short.StopLoss(nil, 100.0))
}

func TestTakeProfitUsesBlockRange(t *testing.T) {
	c := Calc{Direction: model.DirLong, ATR: 4.0, NearestOB: zone(94, 96)}

	// Range 6 projects entry + 9, inside the four-ATR cap.
	assert.Equal(t, 109.0, c.TakeProfit(100.0))
}

func TestTakeProfitDefaultRangeWithoutBlock(t *testing.T) {
	c := Calc{Direction: model.DirLong, ATR: 3.0}

	assert.Equal(t, 107.5, c.TakeProfit(100.0))
}

func TestTakeProfitPulledInByGapThenPool(t *testing.T) {
	c := Calc{
		Direction: model.DirLong,
		ATR:       4.0,
		FVG:       zone(105, 106),
		Pools:     zone(102, 103),
		VWAP:      fp(102.9),
	}

	// 107.5 -> gap edge 105 -> pool edge 103 less a tick.
	assert.Equal(t, 102.75, c.TakeProfit(100.0))
}

func TestTakeProfitVWAPBelowEntryForcesATRFallback(t *testing.T) {
	c := Calc{Direction: model.DirLong, ATR: 2.0, VWAP: fp(99)}

	assert.Equal(t, 106.0, c.TakeProfit(100.0))
}

func TestTakeProfitHardCapAtFourATR(t *testing.T) {
	c := Calc{Direction: model.DirLong, ATR: 1.0}

	assert.Equal(t, 104.0, c.TakeProfit(100.0))
}

func TestTakeProfitShortMirror(t *testing.T) {
	c := Calc{
		Direction: model.DirShort,
		ATR:       2.0,
		NearestOB: zone(102, 104),
		FVG:       zone(95, 96),
		Pools:     zone(96.5, 99),
		VWAP:      fp(96),
	}

	// Range 4 projects 94, raised to the gap edge 96, then to the pool
	// edge 96.5 plus a tick.
	assert.Equal(t, 96.75, c.TakeProfit(100.0))
}

func TestLevelsKeepEntryBetweenStopAndTarget(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 300; i++ {
		dir := model.DirLong
		if rng.Intn(2) == 1 {
			dir = model.DirShort
		}
		px := 90 + 20*rng.Float64()
		c := Calc{Direction: dir, ATR: 5 * rng.Float64()}
		if rng.Intn(2) == 0 {
			c.NearestOB = zone(px-3+2*rng.Float64(), px+1+2*rng.Float64())
		}
		if rng.Intn(2) == 0 {
			lo := px - 2 + 4*rng.Float64()
			c.FVG = zone(lo, lo+rng.Float64())
		}
		if rng.Intn(2) == 0 {
			lo := px - 3 + 5*rng.Float64()
			c.Pools = zone(lo, lo+2*rng.Float64())
		}
		if rng.Intn(2) == 0 {
			c.VWAP = fp(px - 2 + 4*rng.Float64())
		}
		c.MergedOB = c.NearestOB

		tick := model.Tick{Mark: px + rng.Float64() - 0.5, Last: px}
		entry := c.Entry(tick, px)
		var history []model.Candle
		if rng.Intn(2) == 0 {
			history = lows(px-1, px-2+rng.Float64(), px-1.5, px-0.5, px-1)
		}
		sl := c.StopLoss(history, entry)
		tp := c.TakeProfit(entry)

		require.False(t, math.IsNaN(entry) || math.IsNaN(sl) || math.IsNaN(tp))
		if dir == model.DirLong {
			require.Less(t, sl, entry, "case %d", i)
			require.Greater(t, tp, entry, "case %d", i)
		} else {
			require.Greater(t, sl, entry, "case %d", i)
			require.Less(t, tp, entry, "case %d", i)
		}
	}
}
