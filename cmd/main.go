package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"ict-algo-trader/internal/api"
	"ict-algo-trader/internal/buffer"
	"ict-algo-trader/internal/data"
	"ict-algo-trader/internal/executor"
	"ict-algo-trader/internal/ict"
	"ict-algo-trader/internal/metrics"
	"ict-algo-trader/internal/model"
	"ict-algo-trader/internal/service"
	"ict-algo-trader/internal/strategy"
	"ict-algo-trader/pkg/ta"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	service.InitLogger()
	defer service.Logger.Sync()
	logger := service.Logger.Sugar()

	configPath := "config"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		logger.Fatal("configuration directory 'config/' not found")
	}
	cfg := service.LoadConfig(configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Addr != "" {
		metrics.Serve(cfg.Metrics.Addr)
		logger.Infow("metrics listening", "addr", cfg.Metrics.Addr)
	}

	store, err := buffer.Open(cfg.Buffer.Path, logger)
	if err != nil {
		logger.Fatalw("open buffer", "path", cfg.Buffer.Path, "err", err)
	}

	feeds := buildFeeds(ctx, cfg, logger)

	var wg sync.WaitGroup
	for name, inst := range cfg.Instances {
		ticks, ok := feeds[inst.Symbol]
		if !ok {
			logger.Warnw("no feed for instance, skipping", "instance", name, "symbol", inst.Symbol)
			continue
		}

		wg.Add(1)
		go func(name string, inst service.InstanceConfig, ticks <-chan model.Tick) {
			defer wg.Done()
			runPipeline(name, inst, ticks, store, logger)
		}(name, inst, ticks)
	}

	wg.Wait()
	logger.Info("all pipelines drained")
}

// buildFeeds starts the configured tick source and returns one channel
// per symbol. Channels close when ctx is cancelled, which drains the
// pipelines.
func buildFeeds(ctx context.Context, cfg *service.Config, logger *zap.SugaredLogger) map[string]<-chan model.Tick {
	symbols := make([]string, 0, len(cfg.Instances))
	for _, inst := range cfg.Instances {
		symbols = append(symbols, inst.Symbol)
	}

	feeds := make(map[string]<-chan model.Tick, len(symbols))
	switch cfg.Feed.Mode {
	case "websocket":
		conn := api.NewConnector(cfg.Feed.WSURL, symbols, logger)
		go conn.Run(ctx)
		for _, s := range symbols {
			feeds[s] = conn.Ticks(s)
		}
	default: // synthetic
		for i, s := range symbols {
			gen := api.NewSynthetic(s, time.Second, time.Now().UnixNano()+int64(i), logger)
			go gen.Run(ctx)
			feeds[s] = gen.Ticks()
		}
	}
	return feeds
}

// runPipeline drives one instrument end to end: aggregate, log, score,
// trade. One tick is fully processed before the next is read.
func runPipeline(name string, cfg service.InstanceConfig, ticks <-chan model.Tick, store *buffer.Store, logger *zap.SugaredLogger) {
	plog := logger.With("instance", name, "symbol", cfg.Symbol)
	plog.Infow("pipeline starting",
		"durations", cfg.Durations, "offsets", cfg.Offsets, "gather", cfg.DataGatherLen)

	calc := ta.NewCalculator(cfg.DataGatherLen, plog)
	set := data.NewSet(cfg, calc, plog)
	engine := strategy.NewEngine(cfg, calc, ict.NewSessionClock(), plog)
	trader := executor.NewTrader(cfg, store, plog)

	for tick := range ticks {
		if err := set.AddTick(tick); err != nil {
			plog.Warnw("tick rejected", "err", err)
			continue
		}
		if err := store.WriteFeatures(tick); err != nil {
			plog.Errorw("write features", "err", err)
		}

		rec := engine.MakeRecommendation(set, tick)
		if rec.SubScores != nil { // a scored pass, not a warmup no-op
			if err := store.WriteRecommendation(rec); err != nil {
				plog.Errorw("write recommendation", "err", err)
			}
		}

		if err := trader.OnTick(tick, rec); err != nil {
			plog.Errorw("trade lifecycle", "err", err)
		}
	}

	plog.Infow("pipeline stopped",
		"balance", trader.Balance(), "trades", len(trader.TradeHistory()))
}
