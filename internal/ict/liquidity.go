package ict

import (
	"math"
	"sort"

	"ict-algo-trader/internal/model"
	"ict-algo-trader/internal/service"
)

// FindLiquidityPools clusters equal lows (long queries) or equal highs
// (short) over the trailing lookback candles. Levels are rounded to two
// decimals, grouped within tolerance, and a group of at least groupSize
// levels becomes a pool at the group mean. Long pools are the ones below
// the latest close, nearest first; short pools the ones above, nearest
// first.
func FindLiquidityPools(history []model.Candle, dir model.Direction, lastClose float64, lookback int, tolerance float64, groupSize int) []float64 {
	if len(history) == 0 {
		return nil
	}

	start := len(history) - lookback
	if start < 0 {
		start = 0
	}
	recent := history[start:]

	levels := make([]float64, len(recent))
	for i, c := range recent {
		if dir == model.DirLong {
			levels[i] = round2(c.Low)
		} else {
			levels[i] = round2(c.High)
		}
	}

	visited := make(map[int]bool, len(levels))
	var pools []float64
	for i, lv := range levels {
		if visited[i] {
			continue
		}
		group := []float64{lv}
		for j := i + 1; j < len(levels); j++ {
			if visited[j] {
				continue
			}
			if math.Abs(levels[j]-lv) <= tolerance {
				group = append(group, levels[j])
				visited[j] = true
			}
		}
		if len(group) >= groupSize {
			pools = append(pools, service.Mean(group))
		}
	}

	kept := pools[:0]
	for _, p := range pools {
		if (dir == model.DirLong && p < lastClose) || (dir == model.DirShort && p > lastClose) {
			kept = append(kept, p)
		}
	}

	if dir == model.DirLong {
		sort.Sort(sort.Reverse(sort.Float64Slice(kept)))
	} else {
		sort.Float64s(kept)
	}
	return kept
}

// ScoreLiquiditySweeps counts stop-runs through the given pools using the
// last two closes: for a long query, prior close above the level and
// latest close below it; mirror for short. Each sweep weighs 3 points;
// short-side sweeps score positive, long-side negative. No pools or fewer
// than two closes scores 0.
func ScoreLiquiditySweeps(pools []float64, dir model.Direction, closes []float64) int {
	if len(pools) == 0 || len(closes) < 2 {
		return 0
	}

	prior, last := closes[len(closes)-2], closes[len(closes)-1]
	swept := 0
	for _, level := range pools {
		if dir == model.DirLong && prior > level && last < level {
			swept++
		}
		if dir == model.DirShort && prior < level && last > level {
			swept++
		}
	}

	if dir == model.DirShort {
		return service.ClampInt(swept*3, -10, 10)
	}
	return service.ClampInt(-swept*3, -10, 10)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
