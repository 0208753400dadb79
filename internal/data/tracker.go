// Package data folds validated ticks into fixed-duration candles. A
// Tracker owns one (duration, offset) pair; a Set fans one symbol's tick
// stream out to every configured tracker.
package data

import (
	"math"
	"time"

	"ict-algo-trader/internal/metrics"
	"ict-algo-trader/internal/model"
	"ict-algo-trader/internal/service"
	"ict-algo-trader/pkg/ta"

	"go.uber.org/zap"
)

// Tracker aggregates one symbol's ticks into candles for a single
// (duration, offset) pair. Offset variants of the same duration run
// independently and share no mutable state.
type Tracker struct {
	symbol   string
	duration time.Duration
	offset   time.Duration

	calc   *ta.Calculator
	logger *zap.SugaredLogger

	current model.Candle
	open    bool

	history []model.Candle
	maxLen  int

	lastCumVolume float64
	haveCumVolume bool
}

// NewTracker builds a tracker. maxLen bounds history retention; calc runs
// over the history each time a candle closes.
func NewTracker(symbol string, duration, offset time.Duration, maxLen int, calc *ta.Calculator, logger *zap.SugaredLogger) *Tracker {
	return &Tracker{
		symbol:   symbol,
		duration: duration,
		offset:   offset,
		calc:     calc,
		logger:   logger,
		history:  make([]model.Candle, 0, maxLen),
		maxLen:   maxLen,
	}
}

// AddTick folds one tick into the current candle, rolling the candle over
// when the tick falls outside its window. Malformed ticks are rejected
// without touching any state.
func (tr *Tracker) AddTick(tick model.Tick) error {
	if err := tick.Validate(); err != nil {
		return err
	}

	delta := tr.volumeDelta(tick.Volume)

	if !tr.open {
		tr.openCandle(tr.windowStart(tick.Timestamp), tick.Last, delta)
		return nil
	}

	// A tick outside [TimeStart, TimeEnd) closes the candle. Offset
	// variants compare against their own shifted window, so the same
	// tick stream rolls over at different moments per variant.
	if tick.Timestamp.Before(tr.current.TimeStart) || !tick.Timestamp.Before(tr.current.TimeEnd) {
		tr.rollover()
		tr.openCandle(tr.windowStart(tick.Timestamp), tick.Last, delta)
		return nil
	}

	// Same window: extend the open candle.
	tr.current.Close = tick.Last
	tr.current.High = math.Max(tr.current.High, tick.Last)
	tr.current.Low = math.Min(tr.current.Low, tick.Last)
	tr.current.Volume += delta
	return nil
}

// volumeDelta converts the cumulative session volume into this tick's
// contribution. The first observed tick contributes 0, and a cumulative
// regression (session reset, bad print) clamps to 0 instead of going
// negative.
func (tr *Tracker) volumeDelta(cum float64) float64 {
	if !tr.haveCumVolume {
		tr.haveCumVolume = true
		tr.lastCumVolume = cum
		return 0
	}
	delta := cum - tr.lastCumVolume
	tr.lastCumVolume = cum
	return math.Max(delta, 0)
}

// windowStart is the duration floor of t shifted by the offset. Until
// the stream reaches the first shifted boundary the key sits ahead of
// the ticks that produced it; those early rollovers land on the same
// key and overwrite each other in history.
func (tr *Tracker) windowStart(t time.Time) time.Time {
	return t.Truncate(tr.duration).Add(tr.offset)
}

func (tr *Tracker) openCandle(start time.Time, price, volume float64) {
	tr.current = model.Candle{
		Symbol:    tr.symbol,
		Duration:  tr.duration,
		TimeStart: start,
		TimeEnd:   start.Add(tr.duration),
		Open:      price,
		High:      price,
		Low:       price,
		Close:     price,
		Volume:    volume,
	}
	tr.open = true
}

// rollover freezes the current candle, appends it to the history (a
// duplicate start time overwrites the prior row), trims retention, and
// recomputes indicators so the newest closed row carries fresh values.
func (tr *Tracker) rollover() {
	if n := len(tr.history); n > 0 && tr.history[n-1].TimeStart.Equal(tr.current.TimeStart) {
		tr.history[n-1] = tr.current
	} else {
		tr.history = append(tr.history, tr.current)
	}

	if len(tr.history) > tr.maxLen {
		tr.history = tr.history[len(tr.history)-tr.maxLen:]
	}

	tr.calc.Compute(tr.history)
	metrics.CandlesTotal.WithLabelValues(tr.symbol, service.FormatInterval(tr.duration)).Inc()
}

// History is the ordered view of closed candles. Callers treat it as
// read-only.
func (tr *Tracker) History() []model.Candle {
	return tr.history
}

// Current returns the open candle, ok=false before the first tick.
func (tr *Tracker) Current() (model.Candle, bool) {
	return tr.current, tr.open
}

// Len is the number of closed candles.
func (tr *Tracker) Len() int {
	return len(tr.history)
}

// Duration returns the tracker's candle duration.
func (tr *Tracker) Duration() time.Duration {
	return tr.duration
}

// Offset returns the tracker's start-time offset within the duration.
func (tr *Tracker) Offset() time.Duration {
	return tr.offset
}
