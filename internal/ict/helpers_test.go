package ict

import (
	"time"

	"ict-algo-trader/internal/model"
)

var testStart = time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

// bar builds one minute candle; seq is the minute index from testStart.
func bar(seq int, o, h, l, c float64) model.Candle {
	return model.Candle{
		Symbol:    "MES",
		Duration:  time.Minute,
		TimeStart: testStart.Add(time.Duration(seq) * time.Minute),
		TimeEnd:   testStart.Add(time.Duration(seq+1) * time.Minute),
		Open:      o,
		High:      h,
		Low:       l,
		Close:     c,
		Volume:    100,
	}
}

// flat is a doji bar that can never form an engulfing pair.
func flat(seq int, price float64) model.Candle {
	return bar(seq, price, price+0.1, price-0.1, price)
}
