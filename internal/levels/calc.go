// Package levels derives trade price levels (entry, stop-loss, target)
// from the zone envelopes and volatility of one scoring pass. All
// outputs land on quarter-point increments.
package levels

import (
	"math"

	"ict-algo-trader/internal/model"
	"ict-algo-trader/internal/service"
)

// Calc carries the shared inputs of one pass. Zone pointers are nil
// when detection came up empty; every method handles the absence.
type Calc struct {
	Direction model.Direction
	ATR       float64
	VWAP      *float64

	MergedOB  *model.Zone // envelope over every detected order block
	NearestOB *model.Zone // closest block matching the trade direction
	FVG       *model.Zone // gap envelope for the trade direction
	Pools     *model.Zone // liquidity envelope for the trade direction
}

func (c Calc) sign() float64 {
	if c.Direction == model.DirShort {
		return -1
	}
	return 1
}

func (c Calc) long() bool {
	return c.Direction != model.DirShort
}

// Entry averages the available anchors (mark, last, order-block edge,
// gap edge, favorable VWAP) and clips the result to half an ATR from
// mark. With no anchors at all it falls back to the reference close.
func (c Calc) Entry(tick model.Tick, lastClose float64) float64 {
	var sum float64
	var count int
	add := func(v float64) {
		sum += v
		count++
	}

	if tick.Mark > 0 {
		add(tick.Mark)
	}
	if tick.Last > 0 {
		add(tick.Last)
	}

	if c.MergedOB != nil && c.MergedOB.Contains(lastClose) {
		if c.long() {
			add(c.MergedOB.Low + 0.25)
		} else {
			add(c.MergedOB.High - 0.25)
		}
	}
	if c.FVG != nil {
		if c.long() && c.FVG.Low < lastClose {
			add(c.FVG.Low + 0.25)
		} else if !c.long() && c.FVG.High > lastClose {
			add(c.FVG.High - 0.25)
		}
	}
	if c.VWAP != nil {
		if c.long() && *c.VWAP < tick.Last {
			add(*c.VWAP)
		} else if !c.long() && *c.VWAP > tick.Last {
			add(*c.VWAP)
		}
	}

	if count == 0 {
		return lastClose
	}

	proposed := sum / float64(count)
	if tick.Mark <= 0 || math.Abs(proposed-tick.Mark) <= 0.5*c.ATR {
		return service.RoundQuarter(proposed)
	}
	// Too far from mark: clip to half an ATR from mark, in the trade
	// direction regardless of which side the average fell on.
	return service.RoundQuarter(tick.Mark + c.sign()*0.5*c.ATR)
}
