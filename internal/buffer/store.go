// Package buffer persists the per-tick feature log: one row per tick,
// keyed by timestamp and symbol, annotated in place with trade
// projections when a recommendation lands and with realized results
// when a trade closes.
package buffer

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"ict-algo-trader/internal/model"
)

// Row is one persisted tick. Projection and realized columns stay NULL
// until a recommendation or a closed trade fills them.
type Row struct {
	Timestamp int64  `gorm:"primaryKey;autoIncrement:false"` // unix milliseconds
	Symbol    string `gorm:"primaryKey"`

	Last     float64
	Bid      float64
	Ask      float64
	Volume   float64
	BidSize  float64
	AskSize  float64
	LastSize float64

	Open  float64
	Close float64
	High  float64
	Low   float64
	Mark  float64

	NetChange        float64
	NetPercentChange float64
	FairValueDelta   float64
	Pressure         float64
	Momentum         float64

	Direction    *string
	Confidence   *float64
	Entry        *float64
	StopLoss     *float64
	Timeout      *float64 // seconds
	TakeProfit   *float64
	NumContracts *int

	ActualRevenue *float64
	ActualProfit  *float64
	TimeInTrade   *float64 // seconds
}

// Store wraps the sqlite-backed tick log.
type Store struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// Open creates or opens the database at path (":memory:" works) and
// migrates the schema.
func Open(path string, logger *zap.SugaredLogger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open buffer db: %w", err)
	}
	if err := db.AutoMigrate(&Row{}); err != nil {
		return nil, fmt.Errorf("migrate buffer schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// WriteFeatures records the raw tick, replacing any row already keyed
// by the same timestamp.
func (s *Store) WriteFeatures(tick model.Tick) error {
	row := Row{
		Timestamp:        tick.Timestamp.UnixMilli(),
		Symbol:           tick.Symbol,
		Last:             tick.Last,
		Bid:              tick.Bid,
		Ask:              tick.Ask,
		Volume:           tick.Volume,
		BidSize:          tick.BidSize,
		AskSize:          tick.AskSize,
		LastSize:         tick.LastSize,
		Open:             tick.Open,
		Close:            tick.Close,
		High:             tick.High,
		Low:              tick.Low,
		Mark:             tick.Mark,
		NetChange:        tick.NetChange,
		NetPercentChange: tick.NetPercentChange,
		FairValueDelta:   tick.FairValueDelta,
		Pressure:         tick.Pressure,
		Momentum:         tick.Momentum,
	}
	if err := s.db.Save(&row).Error; err != nil {
		return fmt.Errorf("write features: %w", err)
	}
	return nil
}

// WriteRecommendation fills the projection columns of the row at the
// recommendation's timestamp. Confidence and direction are logged for
// every pass; price levels only when the recommendation is tradeable.
// A missing row is left alone.
func (s *Store) WriteRecommendation(rec model.Recommendation) error {
	updates := map[string]any{
		"direction":  rec.Direction.String(),
		"confidence": float64(rec.Value),
	}
	if rec.Valid() {
		updates["entry"] = rec.Entry
		updates["stop_loss"] = rec.StopLoss
		updates["take_profit"] = rec.TakeProfit
		updates["timeout"] = rec.Timeout.Seconds()
		updates["num_contracts"] = rec.NumContracts
	}

	err := s.db.Model(&Row{}).
		Where("timestamp = ? AND symbol = ?", rec.Time.UnixMilli(), rec.Symbol).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("write recommendation: %w", err)
	}
	return nil
}

// WriteResult fills the realized columns of the row the trade was
// entered on. A missing row is left alone.
func (s *Store) WriteResult(symbol string, entryTime time.Time, revenue, profit float64, held time.Duration) error {
	err := s.db.Model(&Row{}).
		Where("timestamp = ? AND symbol = ?", entryTime.UnixMilli(), symbol).
		Updates(map[string]any{
			"actual_revenue": revenue,
			"actual_profit":  profit,
			"time_in_trade":  held.Seconds(),
		}).Error
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// RecentConfidences returns the non-null confidence values among the
// last n rows for symbol, oldest first.
func (s *Store) RecentConfidences(symbol string, n int) ([]float64, error) {
	var vals []*float64
	err := s.db.Model(&Row{}).
		Where("symbol = ?", symbol).
		Order("timestamp DESC").
		Limit(n).
		Pluck("confidence", &vals).Error
	if err != nil {
		return nil, fmt.Errorf("read confidences: %w", err)
	}

	out := make([]float64, 0, len(vals))
	for i := len(vals) - 1; i >= 0; i-- {
		if vals[i] != nil {
			out = append(out, *vals[i])
		}
	}
	return out, nil
}

// Row fetches one persisted row, ok=false when absent.
func (s *Store) Row(symbol string, ts time.Time) (Row, bool, error) {
	var row Row
	err := s.db.Where("timestamp = ? AND symbol = ?", ts.UnixMilli(), symbol).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, fmt.Errorf("read row: %w", err)
	}
	return row, true, nil
}

// Count reports how many rows symbol has accumulated.
func (s *Store) Count(symbol string) (int64, error) {
	var n int64
	if err := s.db.Model(&Row{}).Where("symbol = ?", symbol).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}
