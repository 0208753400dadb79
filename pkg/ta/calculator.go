package ta

import (
	"math"

	"ict-algo-trader/internal/model"
	"ict-algo-trader/internal/service"

	"github.com/markcheno/go-talib"
	"go.uber.org/zap"
)

// Minimum rows each indicator family needs before it produces a value.
// The stochastic chains an RSI pass with a 14/3 fast stochastic, so it
// consumes 14+13+2 rows before the first real output; anything shorter
// returns zero padding.
const (
	momWindow   = 9
	rsiWindow   = 14
	slowWindow  = 20
	stochWindow = 2*rsiWindow + 1
)

// Calculator computes the rolling indicator set over a candle history and
// maps the latest values to a discrete composite score.
type Calculator struct {
	GatherLen int // minimum total history before any computation
	WindowLen int // trailing recomputation bound
	logger    *zap.SugaredLogger
}

// NewCalculator initializes the indicator calculator. gatherLen is the
// cold-start guard; histories shorter than it are left untouched.
func NewCalculator(gatherLen int, logger *zap.SugaredLogger) *Calculator {
	return &Calculator{
		GatherLen: gatherLen,
		WindowLen: 50,
		logger:    logger,
	}
}

// Compute populates the most recent candle's indicator fields using only
// the trailing WindowLen rows. It is a no-op below GatherLen. Each
// indicator additionally needs its own minimum window; shorter windows
// leave the field nil.
func (c *Calculator) Compute(history []model.Candle) {
	if len(history) < c.GatherLen {
		c.logger.Debugw("not enough history for indicators",
			"len", len(history), "need", c.GatherLen)
		return
	}

	window := history
	if len(window) > c.WindowLen {
		window = window[len(window)-c.WindowLen:]
	}

	closes := make([]float64, len(window))
	highs := make([]float64, len(window))
	lows := make([]float64, len(window))
	volumes := make([]float64, len(window))
	for i, cd := range window {
		closes[i] = cd.Close
		highs[i] = cd.High
		lows[i] = cd.Low
		volumes[i] = cd.Volume
	}

	last := &history[len(history)-1]

	if len(window) > momWindow {
		last.Momentum9 = latest(talib.Mom(closes, momWindow))
		last.EMA9 = latest(talib.Ema(closes, momWindow))
		last.SMA9 = latest(talib.Sma(closes, momWindow))
		last.VWAP = vwap(window)
	}

	if len(window) > rsiWindow {
		last.RSI14 = latest(talib.Rsi(closes, rsiWindow))
	}

	if len(window) > stochWindow {
		fastK, _ := talib.StochRsi(closes, rsiWindow, rsiWindow, 3, talib.SMA)
		// A flat RSI stretch makes the stochastic 0/0; keep the slot nil then.
		if v := latest(fastK); v != nil && !math.IsNaN(*v) {
			scaled := *v / 100 // talib reports 0..100, thresholds are 0..1
			last.StochRSI14 = &scaled
		}
	}

	if len(window) > slowWindow {
		last.EMA20 = latest(talib.Ema(closes, slowWindow))
		last.SMA20 = latest(talib.Sma(closes, slowWindow))
		last.VWMA20 = vwma(closes, volumes, slowWindow)
	}
}

// Score maps a candle's indicator values to a composite in [-10, 10] and
// the per-indicator sub-signals in {-1, 0, +1}. Missing indicators score 0.
func (c *Calculator) Score(candle model.Candle) (int, map[string]int) {
	subs := map[string]int{
		"rsi":       scoreRSI(candle.RSI14),
		"stoch_rsi": scoreStochRSI(candle.StochRSI14),
		"momentum":  scoreMomentum(candle.Momentum9),
		"ema_cross": scoreEMACross(candle.EMA9, candle.EMA20),
		"vwap":      scoreVWAP(candle.Close, candle.VWAP),
	}

	sum := 0
	for _, s := range subs {
		sum += s * 2
	}
	return service.ClampInt(sum, -10, 10), subs
}

func scoreRSI(rsi *float64) int {
	switch {
	case rsi == nil:
		return 0
	case *rsi < 30: // oversold, bullish
		return 1
	case *rsi > 70:
		return -1
	}
	return 0
}

func scoreStochRSI(v *float64) int {
	switch {
	case v == nil:
		return 0
	case *v < 0.2:
		return 1
	case *v > 0.8:
		return -1
	}
	return 0
}

func scoreMomentum(mom *float64) int {
	switch {
	case mom == nil:
		return 0
	case *mom > 0:
		return 1
	case *mom < 0:
		return -1
	}
	return 0
}

func scoreEMACross(fast, slow *float64) int {
	if fast == nil || slow == nil {
		return 0
	}
	switch {
	case *fast > *slow:
		return 1
	case *fast < *slow:
		return -1
	}
	return 0
}

func scoreVWAP(close float64, vwap *float64) int {
	switch {
	case vwap == nil:
		return 0
	case close > *vwap:
		return 1
	case close < *vwap:
		return -1
	}
	return 0
}

// vwap is the cumulative typical-price x volume over the window divided by
// cumulative volume. Zero traded volume leaves the field unset.
func vwap(window []model.Candle) *float64 {
	var pv, vol float64
	for _, cd := range window {
		pv += cd.TypicalPrice() * cd.Volume
		vol += cd.Volume
	}
	if vol == 0 {
		return nil
	}
	v := pv / vol
	return &v
}

// vwma is Sma(close*volume, n) / Sma(volume, n) at the latest row.
func vwma(closes, volumes []float64, period int) *float64 {
	weighted := make([]float64, len(closes))
	for i := range closes {
		weighted[i] = closes[i] * volumes[i]
	}
	num := latest(talib.Sma(weighted, period))
	den := latest(talib.Sma(volumes, period))
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	v := *num / *den
	return &v
}

// latest returns a pointer to the final slice element, nil when empty.
func latest(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	v := xs[len(xs)-1]
	return &v
}
