// Package strategy turns candle histories and the live tick into trade
// recommendations: order blocks, fair value gaps, liquidity sweeps and
// indicator context are scored per offset variant, averaged, and mapped
// to price levels when the composite clears the entry threshold.
package strategy

import (
	"math"
	"time"

	"go.uber.org/zap"

	"ict-algo-trader/internal/data"
	"ict-algo-trader/internal/ict"
	"ict-algo-trader/internal/levels"
	"ict-algo-trader/internal/metrics"
	"ict-algo-trader/internal/model"
	"ict-algo-trader/internal/service"
	"ict-algo-trader/pkg/ta"
)

// Engine scores one symbol's offset variants and derives price levels
// from the primary variant.
type Engine struct {
	cfg      service.InstanceConfig
	calc     *ta.Calculator
	sessions *ict.SessionClock
	logger   *zap.SugaredLogger
}

func NewEngine(cfg service.InstanceConfig, calc *ta.Calculator, sessions *ict.SessionClock, logger *zap.SugaredLogger) *Engine {
	return &Engine{cfg: cfg, calc: calc, sessions: sessions, logger: logger}
}

// MakeRecommendation scores every variant with enough history and, when
// the composite clears the entry threshold, attaches direction, price
// levels, timeout and contract count. Below the threshold (or before
// enough history exists) the result keeps direction none and carries
// the score alone.
func (e *Engine) MakeRecommendation(set *data.Set, tick model.Tick) model.Recommendation {
	rec := model.Recommendation{
		Symbol:    set.Symbol(),
		Time:      tick.Timestamp,
		Direction: model.DirNone,
	}

	var qualifying []*data.Tracker
	for _, v := range set.Variants() {
		if v.Len() >= e.cfg.DataGatherLen {
			qualifying = append(qualifying, v)
		}
	}
	if len(qualifying) == 0 {
		return rec
	}

	var (
		allOBs   []model.Zone
		allFVGs  = map[model.Direction][]model.Zone{}
		allPools = map[model.Direction][]float64{}
		scoreSum float64
		subs     map[string]float64
	)

	price := tick.Last
	for _, v := range qualifying {
		history := v.History()
		lastCandle := history[len(history)-1]

		blocks := ict.FindOrderBlocks(history, e.cfg.Zones.OrderBlockLookback)
		allOBs = append(allOBs, blocks...)

		var sweepScore, fvgScore int
		for _, dir := range []model.Direction{model.DirShort, model.DirLong} {
			pools := ict.FindLiquidityPools(history, dir, lastCandle.Close,
				e.cfg.Zones.LiquidityLookback, e.cfg.Zones.LiquidityTolerance, e.cfg.Zones.LiquidityGroupSize)
			gaps := ict.FindFairValueGaps(history, dir, e.cfg.Zones.FVGLookback)
			allPools[dir] = append(allPools[dir], pools...)
			allFVGs[dir] = append(allFVGs[dir], gaps...)

			if s := ict.ScoreLiquiditySweeps(pools, dir, closes(history)); abs(s) > abs(sweepScore) {
				sweepScore = s
			}
			if s := ict.ScoreFairValueGaps(gaps, dir, price); abs(s) > abs(fvgScore) {
				fvgScore = s
			}
		}

		obScore := ict.ScoreOrderBlocks(blocks, price)
		pressure := service.Clamp(tick.Pressure, -10, 10)
		dislocation := math.Round(-10 * math.Tanh(0.4*tick.FairValueDelta))
		indScore, _ := e.calc.Score(lastCandle)
		sessionVolume := 0.5*float64(e.sessions.Confidence(tick.Timestamp)) + 0.5*float64(volumeSpikeScore(history))

		components := []float64{
			float64(obScore), float64(sweepScore), float64(fvgScore),
			pressure, dislocation, float64(indScore), sessionVolume,
		}
		scoreSum += math.Round(service.Mean(components))

		// Like the composite's inputs, the recorded breakdown reflects
		// the last variant evaluated.
		subs = map[string]float64{
			"order_blocks":       float64(obScore),
			"liq_sweep":          float64(sweepScore),
			"fvg":                float64(fvgScore),
			"pressure_imbalance": pressure,
			"fv_dislocation":     dislocation,
			"indicators":         float64(indScore),
			"session_volume":     sessionVolume,
		}
	}

	rec.Value = int(math.Round(scoreSum / float64(len(qualifying))))
	rec.SubScores = subs

	switch {
	case float64(rec.Value) > e.cfg.EntryThreshold:
		rec.Direction = model.DirLong
	case float64(rec.Value) < -e.cfg.EntryThreshold:
		rec.Direction = model.DirShort
	}
	metrics.RecommendationsTotal.WithLabelValues(rec.Symbol, rec.Direction.String()).Inc()
	if !rec.Valid() {
		return rec
	}

	ph := set.Primary().History()
	if len(ph) == 0 {
		ph = qualifying[0].History()
	}
	lastCandle := ph[len(ph)-1]
	atr := ict.ATR(ph)

	mergedOB, obOK := ict.MergeZones(allOBs)
	dirFVG, fvgOK := ict.MergeZones(allFVGs[rec.Direction])
	dirPools, poolsOK := ict.MergeLevels(allPools[rec.Direction])

	kind := model.ZoneBullishOrderBlock
	if rec.Direction == model.DirShort {
		kind = model.ZoneBearishOrderBlock
	}

	calc := levels.Calc{
		Direction: rec.Direction,
		ATR:       atr,
		VWAP:      lastCandle.VWAP,
	}
	if obOK {
		calc.MergedOB = &mergedOB
		rec.Zones.OrderBlocks = []model.Zone{mergedOB}
	}
	if nearest, ok := ict.NearestOrderBlock(allOBs, kind, price); ok {
		calc.NearestOB = &nearest
	}
	if fvgOK {
		calc.FVG = &dirFVG
		rec.Zones.FairValueGaps = []model.Zone{dirFVG}
	}
	if poolsOK {
		calc.Pools = &dirPools
		rec.Zones.LiquidityPools = append([]float64(nil), allPools[rec.Direction]...)
	}

	rec.Entry = calc.Entry(tick, lastCandle.Close)
	rec.StopLoss = calc.StopLoss(ph, rec.Entry)
	rec.TakeProfit = calc.TakeProfit(rec.Entry)
	rec.Timeout = timeoutFor(atr)
	rec.NumContracts = contractsFor(rec.Value)
	rec.SubScores["atr"] = atr

	e.logger.Debugw("recommendation",
		"value", rec.Value,
		"direction", rec.Direction,
		"entry", rec.Entry,
		"stop_loss", rec.StopLoss,
		"take_profit", rec.TakeProfit,
		"contracts", rec.NumContracts,
	)
	return rec
}

// volumeSpikeScore maps the latest candle's volume against the mean of
// the three before it onto [0, 10]; the ratio saturates at double.
func volumeSpikeScore(history []model.Candle) int {
	n := len(history)
	if n < 4 {
		return 0
	}
	avg := (history[n-4].Volume + history[n-3].Volume + history[n-2].Volume) / 3
	if avg == 0 {
		return 0
	}
	ratio := math.Min(history[n-1].Volume/avg, 2.0)
	return service.ClampInt(int(math.Round((ratio-1.0)*10)), 0, 10)
}

func timeoutFor(atr float64) time.Duration {
	switch {
	case atr > 50:
		return 120 * time.Second
	case atr > 20:
		return 180 * time.Second
	default:
		return 300 * time.Second
	}
}

func contractsFor(value int) int {
	switch {
	case abs(value) > 8:
		return 3
	case abs(value) > 5:
		return 2
	default:
		return 1
	}
}

func closes(history []model.Candle) []float64 {
	out := make([]float64, len(history))
	for i, c := range history {
		out[i] = c.Close
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
