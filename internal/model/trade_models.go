package model

import (
	"fmt"
	"time"
)

// ExitReason records which condition closed a position. The lifecycle
// checks them in this order on every tick; the first satisfied one wins.
type ExitReason string

const (
	ExitTimeout    ExitReason = "timeout"
	ExitTakeProfit ExitReason = "take_profit"
	ExitStopLoss   ExitReason = "stop_loss"
)

// TradeRecord is one completed open/close round trip.
type TradeRecord struct {
	ID        string // uuid
	Symbol    string
	Direction Direction
	Contracts int

	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64

	Revenue     float64 // signed points x points-to-currency factor
	Profit      float64 // revenue net of the round-trip fee
	HoldingTime time.Duration
	ExitReason  ExitReason
}

func (t TradeRecord) String() string {
	return fmt.Sprintf("TRADE [%s | %s] %s in %.2f out %.2f | revenue %.2f | profit %.2f | held %s",
		t.Direction, t.ExitReason, t.Symbol, t.EntryPrice, t.ExitPrice, t.Revenue, t.Profit, t.HoldingTime)
}
