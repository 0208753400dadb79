package api

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"ict-algo-trader/internal/model"
)

const (
	syntheticStart = 1000.0
	walkFraction   = 0.001 // per-tick drift and spread bound
)

// Synthetic emits a seedable random-walk tick stream shaped like the
// live feed: cumulative volume, a mark straddling the spread, session
// open fixed at the walk's origin, running high/low extremes.
type Synthetic struct {
	symbol   string
	interval time.Duration
	rng      *rand.Rand
	logger   *zap.SugaredLogger

	out chan model.Tick

	last   float64
	high   float64
	low    float64
	volume float64
}

// NewSynthetic seeds a generator. The same seed replays the same walk.
func NewSynthetic(symbol string, interval time.Duration, seed int64, logger *zap.SugaredLogger) *Synthetic {
	return &Synthetic{
		symbol:   symbol,
		interval: interval,
		rng:      rand.New(rand.NewSource(seed)),
		logger:   logger,
		out:      make(chan model.Tick, 2048),
		last:     syntheticStart,
		high:     syntheticStart,
		low:      syntheticStart,
		volume:   1000,
	}
}

// Ticks returns the generator's output channel.
func (s *Synthetic) Ticks() <-chan model.Tick {
	return s.out
}

// Run emits one tick per interval until ctx is done, then closes the
// channel.
func (s *Synthetic) Run(ctx context.Context) {
	defer close(s.out)

	tk := time.NewTicker(s.interval)
	defer tk.Stop()

	s.logger.Infow("synthetic feed started", "symbol", s.symbol, "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tk.C:
			tick := s.next(now)
			select {
			case s.out <- tick:
			default:
				s.logger.Warnw("tick channel full, dropping", "symbol", s.symbol)
			}
		}
	}
}

// next advances the walk one step and snapshots it as a tick.
func (s *Synthetic) next(now time.Time) model.Tick {
	s.last += s.uniform(-walkFraction, walkFraction) * s.last
	bid := s.last - s.uniform(0, walkFraction)*s.last
	ask := s.last + s.uniform(0, walkFraction)*s.last

	s.volume += 10 + float64(s.rng.Intn(91))
	if s.last > s.high {
		s.high = s.last
	}
	if s.last < s.low {
		s.low = s.last
	}

	tick := model.Tick{
		Symbol:    s.symbol,
		Timestamp: now,
		Last:      s.last,
		Bid:       bid,
		Ask:       ask,
		Volume:    s.volume,
		BidSize:   float64(1 + s.rng.Intn(5)),
		AskSize:   float64(1 + s.rng.Intn(5)),
		LastSize:  float64(1 + s.rng.Intn(5)),
		Open:      syntheticStart,
		Close:     syntheticStart,
		High:      s.high,
		Low:       s.low,
		Mark:      math.Round((bid+ask)/2*100) / 100,
	}
	tick.Derive()
	return tick
}

func (s *Synthetic) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}
