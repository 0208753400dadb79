package data

import (
	"time"

	"go.uber.org/zap"

	"ict-algo-trader/internal/metrics"
	"ict-algo-trader/internal/model"
	"ict-algo-trader/internal/service"
	"ict-algo-trader/pkg/ta"
)

type trackerKey struct {
	duration time.Duration
	offset   time.Duration
}

// Set owns every tracker of one instrument: one per configured duration
// plus one per start offset of the signal duration. The offset-0 signal
// variant and the plain signal-duration tracker are the same instance.
type Set struct {
	symbol string
	logger *zap.SugaredLogger

	trackers  map[trackerKey]*Tracker
	durations []time.Duration
	variants  []*Tracker
}

// NewSet builds the trackers described by one instance config. Durations
// are minutes, offsets seconds, both taken in config order.
func NewSet(cfg service.InstanceConfig, calc *ta.Calculator, logger *zap.SugaredLogger) *Set {
	s := &Set{
		symbol:   cfg.Symbol,
		logger:   logger,
		trackers: make(map[trackerKey]*Tracker),
	}

	get := func(k trackerKey) *Tracker {
		if tr, ok := s.trackers[k]; ok {
			return tr
		}
		tr := NewTracker(cfg.Symbol, k.duration, k.offset, cfg.MaxHistoryLen, calc,
			logger.With("interval", service.FormatInterval(k.duration), "offset", k.offset.String()))
		s.trackers[k] = tr
		return tr
	}

	for _, m := range cfg.Durations {
		d := time.Duration(m) * time.Minute
		get(trackerKey{duration: d})
		s.durations = append(s.durations, d)
	}

	signal := time.Duration(cfg.SignalDuration) * time.Minute
	for _, sec := range cfg.Offsets {
		s.variants = append(s.variants, get(trackerKey{duration: signal, offset: time.Duration(sec) * time.Second}))
	}
	if len(s.variants) == 0 {
		s.variants = append(s.variants, get(trackerKey{duration: signal}))
	}

	return s
}

// AddTick validates the tick once, counts it, and fans it out to every
// tracker. A rejected tick mutates nothing.
func (s *Set) AddTick(tick model.Tick) error {
	if err := tick.Validate(); err != nil {
		metrics.TicksRejected.WithLabelValues(s.symbol).Inc()
		return err
	}
	metrics.TicksTotal.WithLabelValues(s.symbol).Inc()

	for _, tr := range s.trackers {
		if err := tr.AddTick(tick); err != nil {
			return err
		}
	}
	return nil
}

// Variants returns the signal-duration trackers in configured offset order.
func (s *Set) Variants() []*Tracker {
	return s.variants
}

// Primary returns the offset-0 signal variant, the one zone detection and
// price levels read from.
func (s *Set) Primary() *Tracker {
	for _, tr := range s.variants {
		if tr.Offset() == 0 {
			return tr
		}
	}
	return s.variants[0]
}

// Tracker returns the plain (offset-0) tracker for d, nil when d is not
// configured.
func (s *Set) Tracker(d time.Duration) *Tracker {
	return s.trackers[trackerKey{duration: d}]
}

// Durations lists the configured plain durations in config order.
func (s *Set) Durations() []time.Duration {
	return s.durations
}

// Symbol returns the instrument this set aggregates.
func (s *Set) Symbol() string {
	return s.symbol
}
