package levels

import (
	"math"

	"ict-algo-trader/internal/service"
)

// TakeProfit projects entry plus one and a half times the block-implied
// range, pulls the target inward to the first gap or pool edge in the
// way, and caps it with VWAP and four ATR. A target that ends up on the
// wrong side of entry falls back to three ATR.
func (c Calc) TakeProfit(entry float64) float64 {
	r := 5.0
	if c.NearestOB != nil {
		if c.long() {
			r = math.Abs(entry - c.NearestOB.Low)
		} else {
			r = math.Abs(entry - c.NearestOB.High)
		}
	}
	tp := entry + c.sign()*1.5*r

	if c.FVG != nil {
		if c.long() && c.FVG.Low > entry && c.FVG.Low < tp {
			tp = c.FVG.Low
		} else if !c.long() && c.FVG.High < entry && c.FVG.High > tp {
			tp = c.FVG.High
		}
	}
	if c.Pools != nil {
		if c.long() && c.Pools.High > entry && c.Pools.High < tp {
			tp = c.Pools.High - 0.25
		} else if !c.long() && c.Pools.Low < entry && c.Pools.Low > tp {
			tp = c.Pools.Low + 0.25
		}
	}
	if c.VWAP != nil {
		if c.long() {
			tp = math.Min(tp, *c.VWAP)
		} else {
			tp = math.Max(tp, *c.VWAP)
		}
	}

	if c.long() && tp <= entry {
		tp = entry + 3*c.ATR
	} else if !c.long() && tp >= entry {
		tp = entry - 3*c.ATR
	}

	if c.long() {
		tp = math.Min(tp, entry+4*c.ATR)
	} else {
		tp = math.Max(tp, entry-4*c.ATR)
	}

	rounded := service.RoundQuarter(tp)
	if c.long() && rounded <= entry {
		rounded = entry + 0.25
	} else if !c.long() && rounded >= entry {
		rounded = entry - 0.25
	}
	return rounded
}
