package ict

import (
	"math"

	"ict-algo-trader/internal/model"
)

// MergeZones folds zones gathered from multiple offset variants into one
// coarse envelope: low = min of lows, high = max of highs. A single zone
// merges to itself. ok is false when the input is empty.
func MergeZones(zones []model.Zone) (model.Zone, bool) {
	if len(zones) == 0 {
		return model.Zone{}, false
	}

	out := zones[0]
	for _, z := range zones[1:] {
		out.Low = math.Min(out.Low, z.Low)
		out.High = math.Max(out.High, z.High)
	}
	return out, true
}

// MergeLevels is the scalar counterpart for liquidity pool levels: the
// envelope spanning the lowest to the highest level.
func MergeLevels(levels []float64) (model.Zone, bool) {
	if len(levels) == 0 {
		return model.Zone{}, false
	}

	out := model.Zone{Low: levels[0], High: levels[0], Kind: model.ZoneLiquidityPool}
	for _, lv := range levels[1:] {
		out.Low = math.Min(out.Low, lv)
		out.High = math.Max(out.High, lv)
	}
	return out, true
}
