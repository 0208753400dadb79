package levels

import (
	"math"

	"ict-algo-trader/internal/model"
	"ict-algo-trader/internal/service"
)

// StopLoss picks the tighter of a structure stop (five-candle extreme
// offset a quarter) and a composite stop built from the zone envelopes.
// Composite candidates must sit beyond entry on the adverse side; the
// gap edge is consulted only when neither block nor pool yielded one,
// and half an ATR beyond entry is the last resort. The composite never
// sits farther than two ATR from entry.
func (c Calc) StopLoss(history []model.Candle, entry float64) float64 {
	var zones []float64
	if c.NearestOB != nil {
		if c.long() {
			zones = append(zones, c.NearestOB.Low-0.25)
		} else {
			zones = append(zones, c.NearestOB.High+0.25)
		}
	}
	if c.Pools != nil {
		if c.long() && c.Pools.High < entry {
			zones = append(zones, c.Pools.High-0.25)
		} else if !c.long() && c.Pools.Low > entry {
			zones = append(zones, c.Pools.Low+0.25)
		}
	}

	composite := c.closestAdverse(zones, entry)
	if math.IsNaN(composite) && c.FVG != nil {
		if c.long() {
			composite = c.closestAdverse([]float64{c.FVG.Low - 0.25}, entry)
		} else {
			composite = c.closestAdverse([]float64{c.FVG.High + 0.25}, entry)
		}
	}
	if math.IsNaN(composite) {
		composite = entry - c.sign()*0.5*c.ATR
	}
	if c.long() {
		composite = math.Max(composite, entry-2*c.ATR)
	} else {
		composite = math.Min(composite, entry+2*c.ATR)
	}

	sl := composite
	if n := len(history); n >= 5 {
		if c.long() {
			low := history[n-1].Low
			for _, cd := range history[n-5 : n-1] {
				low = math.Min(low, cd.Low)
			}
			if s := low - 0.25; s < entry && s > sl {
				sl = s
			}
		} else {
			high := history[n-1].High
			for _, cd := range history[n-5 : n-1] {
				high = math.Max(high, cd.High)
			}
			if s := high + 0.25; s > entry && s < sl {
				sl = s
			}
		}
	}

	rounded := service.RoundQuarter(sl)
	// The quarter round can land on the entry itself; push it one tick
	// back to the adverse side.
	if c.long() && rounded >= entry {
		rounded = entry - 0.25
	} else if !c.long() && rounded <= entry {
		rounded = entry + 0.25
	}
	return rounded
}

// closestAdverse returns the candidate nearest to entry that still sits
// strictly beyond it in the adverse direction, NaN when none qualifies.
func (c Calc) closestAdverse(cands []float64, entry float64) float64 {
	best := math.NaN()
	for _, cand := range cands {
		if c.long() {
			if cand >= entry {
				continue
			}
			if math.IsNaN(best) || cand > best {
				best = cand
			}
		} else {
			if cand <= entry {
				continue
			}
			if math.IsNaN(best) || cand < best {
				best = cand
			}
		}
	}
	return best
}
