// Package ict implements the structural price-pattern detectors: order
// blocks, fair value gaps, liquidity pools/sweeps, and the session clock
// that supplies time-of-day context.
package ict

import (
	"math"

	"ict-algo-trader/internal/model"
	"ict-algo-trader/internal/service"

	"github.com/markcheno/go-talib"
)

const (
	atrPeriod   = 5
	atrFallback = 10.0
)

// ATR is the simple 5-period mean of the true range, rounded to one
// decimal. Histories too short for a full period fall back to 10.
func ATR(history []model.Candle) float64 {
	if len(history) < atrPeriod+1 {
		return atrFallback
	}

	tr := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		h, l, pc := history[i].High, history[i].Low, history[i-1].Close
		tr = append(tr, math.Max(h-l, math.Max(math.Abs(h-pc), math.Abs(l-pc))))
	}

	mean := talib.Sma(tr, atrPeriod)
	return service.Round1(mean[len(mean)-1])
}
