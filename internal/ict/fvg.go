package ict

import (
	"math"
	"sort"

	"ict-algo-trader/internal/model"
	"ict-algo-trader/internal/service"
)

// FindFairValueGaps walks consecutive candle triplets (prev, mid, curr)
// through the trailing lookback window. A long gap exists when both
// neighbors' lows sit above the middle candle's high; the gap is the range
// price skipped: [mid.High, min(prev.Low, curr.Low)]. A short gap mirrors
// on the highs: [max(prev.High, curr.High), mid.Low]. Only gaps matching
// dir are returned, sorted by gap-midpoint proximity to the latest close.
func FindFairValueGaps(history []model.Candle, dir model.Direction, lookback int) []model.Zone {
	n := len(history)
	if n < 3 {
		return nil
	}
	lastClose := history[n-1].Close

	var gaps []model.Zone
	for i := 2; i < lookback+2 && i < n; i++ {
		prev, mid, curr := history[n-i-1], history[n-i], history[n-i+1]

		if dir == model.DirLong && prev.Low > mid.High && curr.Low > mid.High {
			gaps = append(gaps, model.Zone{
				Low:  mid.High,
				High: math.Min(prev.Low, curr.Low),
				Kind: model.ZoneLongFVG,
				Time: mid.TimeStart,
			})
		}
		if dir == model.DirShort && prev.High < mid.Low && curr.High < mid.Low {
			gaps = append(gaps, model.Zone{
				Low:  math.Max(prev.High, curr.High),
				High: mid.Low,
				Kind: model.ZoneShortFVG,
				Time: mid.TimeStart,
			})
		}
	}

	sort.Slice(gaps, func(i, j int) bool {
		return math.Abs(gaps[i].Mid()-lastClose) < math.Abs(gaps[j].Mid()-lastClose)
	})
	return gaps
}

// ScoreFairValueGaps sums +-2 per gap strictly containing price (+2 long,
// -2 short), then flips the sign for long queries before clamping. Both
// directions therefore net -2 per containing gap: resting inside unfilled
// imbalance is read as pressure against the queried side.
func ScoreFairValueGaps(gaps []model.Zone, dir model.Direction, price float64) int {
	score := 0
	for _, g := range gaps {
		if !g.Contains(price) {
			continue
		}
		if dir == model.DirLong {
			score += 2
		} else {
			score -= 2
		}
	}
	if dir != model.DirShort {
		score = -score
	}
	return service.ClampInt(score, -10, 10)
}
