package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidTick marks ticks rejected at the aggregation boundary.
var ErrInvalidTick = errors.New("invalid tick")

// Tick is the smallest unit of market data (a quote/trade snapshot).
// Volume is the cumulative session volume, not a per-tick delta.
type Tick struct {
	Symbol    string
	Timestamp time.Time // millisecond precision

	Last     float64
	Bid      float64
	Ask      float64
	Volume   float64
	BidSize  float64
	AskSize  float64
	LastSize float64

	Open  float64 // session open
	Close float64 // previous session close
	High  float64
	Low   float64
	Mark  float64

	// Derived fields, filled by Derive or supplied by the feed.
	NetChange        float64
	NetPercentChange float64
	FairValueDelta   float64 // Mark - Last
	Pressure         float64 // BidSize - AskSize
	Momentum         float64 // Last - Open
}

// Derive fills the computed columns from their source fields.
// Percent change short-circuits to 0 when the reference close is 0.
func (t *Tick) Derive() {
	t.FairValueDelta = t.Mark - t.Last
	t.Pressure = t.BidSize - t.AskSize
	t.Momentum = t.Last - t.Open
	t.NetChange = t.Last - t.Close
	if t.Close != 0 {
		t.NetPercentChange = t.NetChange / t.Close * 100
	} else {
		t.NetPercentChange = 0
	}
}

// Validate checks the fields every aggregation step depends on.
func (t Tick) Validate() error {
	if t.Symbol == "" {
		return fmt.Errorf("%w: missing symbol", ErrInvalidTick)
	}
	if t.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidTick)
	}
	if math.IsNaN(t.Last) || math.IsInf(t.Last, 0) || t.Last <= 0 {
		return fmt.Errorf("%w: bad last price %v", ErrInvalidTick, t.Last)
	}
	if math.IsNaN(t.Volume) || math.IsInf(t.Volume, 0) || t.Volume < 0 {
		return fmt.Errorf("%w: bad cumulative volume %v", ErrInvalidTick, t.Volume)
	}
	return nil
}

// Candle is one fixed-duration OHLCV bar plus the indicator slots computed
// over its history. Indicator fields stay nil until the window behind them
// is long enough.
type Candle struct {
	Symbol    string
	Duration  time.Duration
	TimeStart time.Time // window is [TimeStart, TimeEnd)
	TimeEnd   time.Time

	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64 // delta-accumulated within the window, never negative

	Momentum9  *float64
	EMA9       *float64
	SMA9       *float64
	VWAP       *float64
	RSI14      *float64
	StochRSI14 *float64
	EMA20      *float64
	SMA20      *float64
	VWMA20     *float64
}

// TypicalPrice is (H+L+C)/3, the VWAP numerator term.
func (c Candle) TypicalPrice() float64 {
	return (c.High + c.Low + c.Close) / 3
}
