// internal/service/config.go
package service

import (
	"log"

	"github.com/spf13/viper"
)

// ZoneConfig holds the pattern-detection windows and grouping parameters.
type ZoneConfig struct {
	OrderBlockLookback int
	FVGLookback        int
	LiquidityLookback  int
	LiquidityTolerance float64
	LiquidityGroupSize int
}

// InstanceConfig describes one isolated instrument pipeline.
type InstanceConfig struct {
	Symbol string

	Durations      []int // candle durations in minutes
	SignalDuration int   // the duration (minutes) the offset variants run on
	Offsets        []int // start-time offsets in seconds within SignalDuration
	DataGatherLen  int   // minimum candle history before scoring/trading
	MaxHistoryLen  int   // candle retention per tracker

	EntryThreshold float64 // |confidence| gate shared by scoring and lifecycle
	EntryLookback  int     // buffer rows averaged for the entry gate

	FeePerContract  float64 // round-trip fee
	PointsToDollars float64 // symbol-specific points-to-currency factor
	StartingBalance float64

	Zones ZoneConfig
}

// FeedConfig selects the tick source.
type FeedConfig struct {
	Mode  string // "synthetic" or "websocket"
	WSURL string
}

type MetricsConfig struct {
	Addr string // prometheus listen address, empty disables
}

type BufferConfig struct {
	Path string // sqlite path, ":memory:" allowed
}

type Config struct {
	Feed      FeedConfig                `mapstructure:"Feed"`
	Metrics   MetricsConfig             `mapstructure:"Metrics"`
	Buffer    BufferConfig              `mapstructure:"Buffer"`
	Instances map[string]InstanceConfig `mapstructure:"Instances"`
}

// GlobalConfig stores the loaded configuration.
var GlobalConfig Config

// LoadConfig reads and parses config.yaml under configPath.
func LoadConfig(configPath string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Fatalf("Config file not found: %s", err)
		} else {
			log.Fatalf("Error reading config file: %s", err)
		}
	}

	if err := viper.Unmarshal(&GlobalConfig); err != nil {
		log.Fatalf("Unable to decode config into struct: %s", err)
	}

	for name, inst := range GlobalConfig.Instances {
		ApplyInstanceDefaults(&inst)
		GlobalConfig.Instances[name] = inst
	}

	return &GlobalConfig
}

// ApplyInstanceDefaults fills the zero-valued fields of an instance with
// the documented defaults so a minimal config stays runnable.
func ApplyInstanceDefaults(c *InstanceConfig) {
	if len(c.Durations) == 0 {
		c.Durations = []int{1, 2, 3, 5, 15}
	}
	if c.SignalDuration == 0 {
		c.SignalDuration = 1
	}
	if len(c.Offsets) == 0 {
		c.Offsets = []int{0, 10, 20, 30, 40, 50}
	}
	if c.DataGatherLen == 0 {
		c.DataGatherLen = 30
	}
	if c.MaxHistoryLen == 0 {
		c.MaxHistoryLen = 600
	}
	if c.EntryThreshold == 0 {
		c.EntryThreshold = 4.0
	}
	if c.EntryLookback == 0 {
		c.EntryLookback = 20
	}
	if c.FeePerContract == 0 {
		c.FeePerContract = 2.00
	}
	if c.PointsToDollars == 0 {
		c.PointsToDollars = 5.0
	}
	if c.StartingBalance == 0 {
		c.StartingBalance = 1000.0
	}
	if c.Zones.OrderBlockLookback == 0 {
		c.Zones.OrderBlockLookback = 20
	}
	if c.Zones.FVGLookback == 0 {
		c.Zones.FVGLookback = 20
	}
	if c.Zones.LiquidityLookback == 0 {
		c.Zones.LiquidityLookback = 30
	}
	if c.Zones.LiquidityTolerance == 0 {
		c.Zones.LiquidityTolerance = 0.5
	}
	if c.Zones.LiquidityGroupSize == 0 {
		c.Zones.LiquidityGroupSize = 2
	}
}
