package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ticks_total", Help: "Market ticks accepted into the pipeline"},
		[]string{"symbol"},
	)
	TicksRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ticks_rejected_total", Help: "Malformed ticks dropped at the aggregation boundary"},
		[]string{"symbol"},
	)
	CandlesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "candles_total", Help: "Candles closed, per duration"},
		[]string{"symbol", "interval"},
	)
	RecommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "recommendations_total", Help: "Scoring passes, by resolved direction"},
		[]string{"symbol", "direction"},
	)
	TradesOpened = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trades_opened_total", Help: "Positions opened"},
		[]string{"symbol", "direction"},
	)
	TradesClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trades_closed_total", Help: "Positions closed, by exit reason"},
		[]string{"symbol", "reason"},
	)
	AccountBalance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "account_balance", Help: "Simulated running balance"},
		[]string{"symbol"},
	)
	PositionOpen = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "position_open", Help: "1 while a position is held"},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(
		TicksTotal,
		TicksRejected,
		CandlesTotal,
		RecommendationsTotal,
		TradesOpened,
		TradesClosed,
		AccountBalance,
		PositionOpen,
	)
}

// Serve exposes /metrics on addr in a background goroutine.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
