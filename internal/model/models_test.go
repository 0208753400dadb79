package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validTick() Tick {
	return Tick{
		Symbol:    "MES",
		Timestamp: time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC),
		Last:      100.25,
		Volume:    50000,
	}
}

func TestTickValidate(t *testing.T) {
	assert.NoError(t, validTick().Validate())

	cases := []struct {
		name   string
		mutate func(*Tick)
	}{
		{"missing symbol", func(tk *Tick) { tk.Symbol = "" }},
		{"zero timestamp", func(tk *Tick) { tk.Timestamp = time.Time{} }},
		{"zero last", func(tk *Tick) { tk.Last = 0 }},
		{"negative last", func(tk *Tick) { tk.Last = -1 }},
		{"nan last", func(tk *Tick) { tk.Last = math.NaN() }},
		{"inf last", func(tk *Tick) { tk.Last = math.Inf(1) }},
		{"negative volume", func(tk *Tick) { tk.Volume = -10 }},
		{"nan volume", func(tk *Tick) { tk.Volume = math.NaN() }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tk := validTick()
			tc.mutate(&tk)
			assert.ErrorIs(t, tk.Validate(), ErrInvalidTick)
		})
	}
}

func TestTickDerive(t *testing.T) {
	tk := validTick()
	tk.Mark = 100.5
	tk.BidSize = 5
	tk.AskSize = 2
	tk.Open = 99.0
	tk.Close = 98.0

	tk.Derive()

	assert.InDelta(t, 0.25, tk.FairValueDelta, 1e-9)
	assert.Equal(t, 3.0, tk.Pressure)
	assert.Equal(t, 1.25, tk.Momentum)
	assert.Equal(t, 2.25, tk.NetChange)
	assert.InDelta(t, 2.25/98.0*100, tk.NetPercentChange, 1e-9)
}

func TestTickDeriveZeroCloseSkipsPercent(t *testing.T) {
	tk := validTick()
	tk.Close = 0

	tk.Derive()

	assert.Equal(t, 0.0, tk.NetPercentChange)
}

func TestCandleTypicalPrice(t *testing.T) {
	c := Candle{High: 102, Low: 99, Close: 100.5}
	assert.InDelta(t, (102+99+100.5)/3, c.TypicalPrice(), 1e-9)
}

func TestRecommendationValid(t *testing.T) {
	assert.True(t, Recommendation{Direction: DirLong}.Valid())
	assert.True(t, Recommendation{Direction: DirShort}.Valid())
	assert.False(t, Recommendation{Direction: DirNone}.Valid())
	assert.False(t, Recommendation{}.Valid())
}
