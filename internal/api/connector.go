// Package api ingests market ticks: a websocket connector for live
// streams and a synthetic random-walk generator for offline runs. Both
// emit model.Tick on buffered channels and never block their read loop.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"ict-algo-trader/internal/model"
	"ict-algo-trader/internal/service"
)

// tickTimeLayout is ISO-8601 with millisecond precision and no zone,
// as the upstream publisher stamps it. Parsed as UTC.
const tickTimeLayout = "2006-01-02T15:04:05.000"

// wireTick is the JSON shape of one published tick. Numeric fields
// arrive as strings.
type wireTick struct {
	Timestamp string `json:"timestamp"`
	Symbol    string `json:"symbol"`

	Last     string `json:"last"`
	Bid      string `json:"bid"`
	Ask      string `json:"ask"`
	Volume   string `json:"volume"`
	BidSize  string `json:"bid_size"`
	AskSize  string `json:"ask_size"`
	LastSize string `json:"last_size"`

	Open  string `json:"open"`
	Close string `json:"close"`
	High  string `json:"high"`
	Low   string `json:"low"`
	Mark  string `json:"mark"`

	NetChange        string `json:"net_change"`
	NetPercentChange string `json:"net_percent_change"`
	FairValueDelta   string `json:"fair_value_delta"`
	Pressure         string `json:"pressure"`
	Momentum         string `json:"momentum"`
}

// ParseTick decodes one wire message. When the publisher omits any of
// the derived columns they are recomputed locally from the source
// fields.
func ParseTick(raw []byte) (model.Tick, error) {
	var w wireTick
	if err := json.Unmarshal(raw, &w); err != nil {
		return model.Tick{}, fmt.Errorf("decode tick: %w", err)
	}

	ts, err := time.Parse(tickTimeLayout, w.Timestamp)
	if err != nil {
		return model.Tick{}, fmt.Errorf("parse tick timestamp %q: %w", w.Timestamp, err)
	}

	tick := model.Tick{Symbol: w.Symbol, Timestamp: ts}
	fields := []struct {
		dst *float64
		src string
	}{
		{&tick.Last, w.Last},
		{&tick.Bid, w.Bid},
		{&tick.Ask, w.Ask},
		{&tick.Volume, w.Volume},
		{&tick.BidSize, w.BidSize},
		{&tick.AskSize, w.AskSize},
		{&tick.LastSize, w.LastSize},
		{&tick.Open, w.Open},
		{&tick.Close, w.Close},
		{&tick.High, w.High},
		{&tick.Low, w.Low},
		{&tick.Mark, w.Mark},
		{&tick.NetChange, w.NetChange},
		{&tick.NetPercentChange, w.NetPercentChange},
		{&tick.FairValueDelta, w.FairValueDelta},
		{&tick.Pressure, w.Pressure},
		{&tick.Momentum, w.Momentum},
	}
	for _, f := range fields {
		if f.src == "" {
			continue
		}
		v, err := service.StringToFloat(f.src)
		if err != nil {
			return model.Tick{}, fmt.Errorf("parse tick field %q: %w", f.src, err)
		}
		*f.dst = v
	}

	if w.FairValueDelta == "" || w.Pressure == "" || w.Momentum == "" ||
		w.NetChange == "" || w.NetPercentChange == "" {
		tick.Derive()
	}
	return tick, nil
}

// Connector consumes the tick stream over a websocket and fans ticks
// out per symbol. The read loop redials with backoff on any error.
type Connector struct {
	url     string
	logger  *zap.SugaredLogger
	symbols map[string]chan model.Tick
}

// NewConnector builds a connector for the given symbols. Each symbol
// gets its own buffered channel so one stalled pipeline cannot block
// the others.
func NewConnector(url string, symbols []string, logger *zap.SugaredLogger) *Connector {
	chans := make(map[string]chan model.Tick, len(symbols))
	for _, s := range symbols {
		chans[s] = make(chan model.Tick, 2048)
	}
	return &Connector{url: url, logger: logger, symbols: chans}
}

// Ticks returns the channel for symbol, nil when not subscribed.
func (c *Connector) Ticks(symbol string) <-chan model.Tick {
	return c.symbols[symbol]
}

// Run dials and reads until ctx is done. All symbol channels close on
// return.
func (c *Connector) Run(ctx context.Context) {
	defer func() {
		for _, ch := range c.symbols {
			close(ch)
		}
	}()

	backoff := time.Second
	for ctx.Err() == nil {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
		if err != nil {
			c.logger.Errorw("feed dial failed", "url", c.url, "retry_in", backoff, "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.subscribe(conn); err != nil {
			c.logger.Errorw("feed subscribe failed", "err", err)
			conn.Close()
			continue
		}
		c.logger.Infow("feed connected", "url", c.url, "symbols", len(c.symbols))

		// Closing the connection is the only way to unblock a pending
		// ReadMessage when ctx is cancelled.
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				conn.Close()
			case <-done:
			}
		}()

		c.readLoop(conn)
		close(done)
		conn.Close()
	}
}

func (c *Connector) subscribe(conn *websocket.Conn) error {
	symbols := make([]string, 0, len(c.symbols))
	for s := range c.symbols {
		symbols = append(symbols, s)
	}
	msg := map[string]any{"op": "subscribe", "symbols": symbols}
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

func (c *Connector) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.logger.Warnw("feed read failed, redialing", "err", err)
			return
		}

		// Control frames (subscription acks and the like) carry an
		// event field and no tick payload.
		var probe struct {
			Event string `json:"event"`
		}
		if json.Unmarshal(raw, &probe) == nil && probe.Event != "" {
			continue
		}

		tick, err := ParseTick(raw)
		if err != nil {
			c.logger.Debugw("skipping malformed feed message", "err", err)
			continue
		}

		ch, ok := c.symbols[tick.Symbol]
		if !ok {
			continue
		}
		select {
		case ch <- tick:
		default:
			c.logger.Warnw("tick channel full, dropping", "symbol", tick.Symbol)
		}
	}
}
