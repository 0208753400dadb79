package executor

import (
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ict-algo-trader/internal/buffer"
	"ict-algo-trader/internal/metrics"
	"ict-algo-trader/internal/model"
	"ict-algo-trader/internal/service"
)

// Trader is the simulated Executor. It holds at most one position and
// settles every exit against the account balance; realized results are
// written back to the buffer row the trade was entered on.
type Trader struct {
	cfg    service.InstanceConfig
	store  *buffer.Store
	logger *zap.SugaredLogger

	mu       sync.RWMutex
	balance  float64
	position *Position
	history  []model.TradeRecord
}

// NewTrader builds a flat Trader funded with the configured starting
// balance.
func NewTrader(cfg service.InstanceConfig, store *buffer.Store, logger *zap.SugaredLogger) *Trader {
	metrics.AccountBalance.WithLabelValues(cfg.Symbol).Set(cfg.StartingBalance)
	metrics.PositionOpen.WithLabelValues(cfg.Symbol).Set(0)

	return &Trader{
		cfg:     cfg,
		store:   store,
		logger:  logger,
		balance: cfg.StartingBalance,
	}
}

// OnTick advances the lifecycle one step. In a position it checks the
// exit conditions against the tick; flat, it evaluates the entry gate.
func (t *Trader) OnTick(tick model.Tick, rec model.Recommendation) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.position != nil {
		return t.checkExits(tick)
	}
	return t.checkEntry(tick, rec)
}

// checkEntry opens a position when the mean absolute confidence over
// the recent buffer rows clears the threshold and the current pass
// produced a tradeable recommendation to take levels from.
func (t *Trader) checkEntry(tick model.Tick, rec model.Recommendation) error {
	if !rec.Valid() {
		return nil
	}

	confidences, err := t.store.RecentConfidences(t.cfg.Symbol, t.cfg.EntryLookback)
	if err != nil {
		return fmt.Errorf("entry gate: %w", err)
	}
	if len(confidences) == 0 {
		return nil
	}
	for i, v := range confidences {
		confidences[i] = math.Abs(v)
	}
	if service.Mean(confidences) <= t.cfg.EntryThreshold {
		return nil
	}

	t.position = &Position{
		ID:         uuid.NewString(),
		Symbol:     t.cfg.Symbol,
		Direction:  rec.Direction,
		Contracts:  rec.NumContracts,
		EntryTime:  tick.Timestamp,
		EntryPrice: rec.Entry,
		StopLoss:   rec.StopLoss,
		TakeProfit: rec.TakeProfit,
		Timeout:    rec.Timeout,
	}

	metrics.TradesOpened.WithLabelValues(t.cfg.Symbol, rec.Direction.String()).Inc()
	metrics.PositionOpen.WithLabelValues(t.cfg.Symbol).Set(1)

	t.logger.Infof("OPEN [%s] %s x%d @ %.2f | sl %.2f tp %.2f timeout %s",
		rec.Direction, t.cfg.Symbol, rec.NumContracts, rec.Entry, rec.StopLoss, rec.TakeProfit, rec.Timeout)
	return nil
}

// checkExits closes the position on the first satisfied condition:
// timeout, then take-profit, then stop-loss.
func (t *Trader) checkExits(tick model.Tick) error {
	pos := t.position
	price := tick.Last
	elapsed := tick.Timestamp.Sub(pos.EntryTime)

	var reason model.ExitReason
	switch {
	case elapsed >= pos.Timeout:
		reason = model.ExitTimeout
	case pos.Direction == model.DirLong && price >= pos.TakeProfit:
		reason = model.ExitTakeProfit
	case pos.Direction == model.DirLong && price <= pos.StopLoss:
		reason = model.ExitStopLoss
	case pos.Direction == model.DirShort && price <= pos.TakeProfit:
		reason = model.ExitTakeProfit
	case pos.Direction == model.DirShort && price >= pos.StopLoss:
		reason = model.ExitStopLoss
	default:
		return nil
	}

	return t.closePosition(tick, reason)
}

// closePosition settles the trade at the tick's last price. Revenue is
// quoted for a single contract and the fee is a flat round trip.
func (t *Trader) closePosition(tick model.Tick, reason model.ExitReason) error {
	pos := t.position
	price := tick.Last

	points := price - pos.EntryPrice
	if pos.Direction == model.DirShort {
		points = pos.EntryPrice - price
	}
	revenue := t.cfg.PointsToDollars * points
	profit := revenue - t.cfg.FeePerContract
	held := tick.Timestamp.Sub(pos.EntryTime)

	t.balance += profit
	record := model.TradeRecord{
		ID:          pos.ID,
		Symbol:      pos.Symbol,
		Direction:   pos.Direction,
		Contracts:   pos.Contracts,
		EntryTime:   pos.EntryTime,
		ExitTime:    tick.Timestamp,
		EntryPrice:  pos.EntryPrice,
		ExitPrice:   price,
		Revenue:     revenue,
		Profit:      profit,
		HoldingTime: held,
		ExitReason:  reason,
	}
	t.history = append(t.history, record)
	t.position = nil

	metrics.TradesClosed.WithLabelValues(t.cfg.Symbol, string(reason)).Inc()
	metrics.PositionOpen.WithLabelValues(t.cfg.Symbol).Set(0)
	metrics.AccountBalance.WithLabelValues(t.cfg.Symbol).Set(t.balance)

	t.logger.Infof("%s | balance %.2f", record, t.balance)

	if err := t.store.WriteResult(pos.Symbol, pos.EntryTime, revenue, profit, held); err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}

// Position reports the open position, ok=false when flat.
func (t *Trader) Position() (Position, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.position == nil {
		return Position{}, false
	}
	return *t.position, true
}

// Balance returns the account balance including all realized results.
func (t *Trader) Balance() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.balance
}

// TradeHistory returns copies of the completed round trips.
func (t *Trader) TradeHistory() []model.TradeRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]model.TradeRecord, len(t.history))
	copy(out, t.history)
	return out
}
