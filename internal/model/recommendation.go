package model

import (
	"fmt"
	"time"
)

// Direction is the trade side a recommendation resolves to.
type Direction string

const (
	DirLong  Direction = "long"
	DirShort Direction = "short"
	DirNone  Direction = "none" // composite score inside the threshold band
)

func (d Direction) String() string {
	return string(d)
}

// ZoneSet carries the structural zones a recommendation was derived from,
// merged across offset variants.
type ZoneSet struct {
	OrderBlocks    []Zone
	FairValueGaps  []Zone
	LiquidityPools []float64
}

// Recommendation is the latest scoring result for one symbol. There is
// exactly one live value per pipeline; it is replaced wholesale on every
// scoring pass.
type Recommendation struct {
	Symbol string
	Time   time.Time

	Value     int // composite score in [-10, 10]
	Direction Direction

	Entry        float64
	StopLoss     float64
	TakeProfit   float64
	Timeout      time.Duration
	NumContracts int // 1..3

	SubScores map[string]float64
	Zones     ZoneSet
}

// Valid reports whether the recommendation carries a tradeable direction.
func (r Recommendation) Valid() bool {
	return r.Direction == DirLong || r.Direction == DirShort
}

func (r Recommendation) String() string {
	return fmt.Sprintf("REC [%s | %+d] entry %.2f | SL %.2f | TP %.2f | timeout %s | contracts %d",
		r.Direction, r.Value, r.Entry, r.StopLoss, r.TakeProfit, r.Timeout, r.NumContracts)
}
