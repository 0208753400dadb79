// Package executor runs the simulated trade lifecycle: one position at
// a time per instrument, entered on sustained recommendation confidence
// and closed by timeout, take-profit, or stop-loss, whichever a tick
// satisfies first.
package executor

import (
	"time"

	"ict-algo-trader/internal/model"
)

// Executor is the lifecycle surface the tick pipeline drives. It is
// called once per tick, after the tick and its recommendation have been
// written to the buffer.
type Executor interface {
	// OnTick advances the lifecycle one step: exit checks while a
	// position is open, the entry gate while flat.
	OnTick(tick model.Tick, rec model.Recommendation) error

	// Position reports the open position, ok=false when flat.
	Position() (Position, bool)

	// Balance returns the account balance including all realized
	// profits and losses.
	Balance() float64

	// TradeHistory returns copies of the completed round trips.
	TradeHistory() []model.TradeRecord
}

// Position is one live simulated trade, frozen from the recommendation
// that opened it.
type Position struct {
	ID         string
	Symbol     string
	Direction  model.Direction
	Contracts  int
	EntryTime  time.Time
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	Timeout    time.Duration
}
