package model

import "time"

// ZoneKind tags the structural pattern a zone came from.
type ZoneKind string

const (
	ZoneBullishOrderBlock ZoneKind = "bullish_order_block"
	ZoneBearishOrderBlock ZoneKind = "bearish_order_block"
	ZoneLongFVG           ZoneKind = "long_fvg"
	ZoneShortFVG          ZoneKind = "short_fvg"
	ZoneLiquidityPool     ZoneKind = "liquidity_pool"
)

// Zone is a price interval with a pattern tag and provenance timestamp.
type Zone struct {
	Low  float64
	High float64
	Kind ZoneKind
	Time time.Time
}

// Mid returns the zone midpoint, the reference for proximity sorting.
func (z Zone) Mid() float64 {
	return (z.Low + z.High) / 2
}

// Contains reports whether price sits strictly inside the zone.
func (z Zone) Contains(price float64) bool {
	return price > z.Low && price < z.High
}
