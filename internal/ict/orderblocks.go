package ict

import (
	"math"
	"sort"

	"ict-algo-trader/internal/model"
	"ict-algo-trader/internal/service"
)

// FindOrderBlocks scans the trailing lookback candle pairs for engulfing
// patterns. A bullish block is a down candle immediately followed by an up
// candle closing above the down candle's high; the block's range is the
// down candle's low..high. Bearish is the mirror. A block is dropped once
// any later candle in the history closes beyond its bound; the check runs
// against the full subsequent history, so an invalidated block can never
// reappear for the same prefix.
func FindOrderBlocks(history []model.Candle, lookback int) []model.Zone {
	n := len(history)
	var blocks []model.Zone

	for i := 1; i < lookback && i < n; i++ {
		prev, curr := history[n-i-1], history[n-i]
		later := history[n-i:]

		switch {
		case prev.Close < prev.Open && curr.Close > curr.Open && curr.Close > prev.High:
			if !anyCloseBelow(later, prev.Low) {
				blocks = append(blocks, model.Zone{
					Low:  prev.Low,
					High: prev.High,
					Kind: model.ZoneBullishOrderBlock,
					Time: prev.TimeStart,
				})
			}
		case prev.Close > prev.Open && curr.Close < curr.Open && curr.Close < prev.Low:
			if !anyCloseAbove(later, prev.High) {
				blocks = append(blocks, model.Zone{
					Low:  prev.Low,
					High: prev.High,
					Kind: model.ZoneBearishOrderBlock,
					Time: prev.TimeStart,
				})
			}
		}
	}

	return blocks
}

// ScoreOrderBlocks counts the blocks whose range covers price and nets
// them: clamp((bearish - bullish) x 3, -10, 10). Sitting inside bearish
// supply reads as downward pressure, hence the positive bearish weight.
func ScoreOrderBlocks(blocks []model.Zone, price float64) int {
	bullish, bearish := 0, 0
	for _, b := range blocks {
		if price < b.Low || price > b.High {
			continue
		}
		if b.Kind == model.ZoneBullishOrderBlock {
			bullish++
		} else if b.Kind == model.ZoneBearishOrderBlock {
			bearish++
		}
	}
	return service.ClampInt((bearish-bullish)*3, -10, 10)
}

// NearestOrderBlock returns the block of the requested kind whose midpoint
// is closest to price. ok is false when no block of that kind exists.
func NearestOrderBlock(blocks []model.Zone, kind model.ZoneKind, price float64) (model.Zone, bool) {
	var matches []model.Zone
	for _, b := range blocks {
		if b.Kind == kind {
			matches = append(matches, b)
		}
	}
	if len(matches) == 0 {
		return model.Zone{}, false
	}

	sort.Slice(matches, func(i, j int) bool {
		return math.Abs(matches[i].Mid()-price) < math.Abs(matches[j].Mid()-price)
	})
	return matches[0], true
}

func anyCloseBelow(candles []model.Candle, bound float64) bool {
	for _, c := range candles {
		if c.Close < bound {
			return true
		}
	}
	return false
}

func anyCloseAbove(candles []model.Candle, bound float64) bool {
	for _, c := range candles {
		if c.Close > bound {
			return true
		}
	}
	return false
}
