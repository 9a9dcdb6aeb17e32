package config

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// RelayConfig holds the tunables that shape how the bot talks to the chat platform.
type RelayConfig struct {
	Pacing                 PacingConfig      `mapstructure:"pacing"`
	Correlation            CorrelationConfig `mapstructure:"correlation"`
	OperatorForwardTimeout time.Duration     `mapstructure:"operatorForwardTimeout"`
}

// PacingConfig is the pause inserted between presentation stages.
type PacingConfig struct {
	BetweenItems  time.Duration `mapstructure:"betweenItems"`
	BeforeSummary time.Duration `mapstructure:"beforeSummary"`
	BeforePrompt  time.Duration `mapstructure:"beforePrompt"`
}

// CorrelationConfig sizes the operator reply correlation table. Read once at startup.
type CorrelationConfig struct {
	Tolerance int `mapstructure:"tolerance"`
	Capacity  int `mapstructure:"capacity"`
}

func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		Pacing: PacingConfig{
			BetweenItems:  500 * time.Millisecond,
			BeforeSummary: 500 * time.Millisecond,
			BeforePrompt:  500 * time.Millisecond,
		},
		Correlation: CorrelationConfig{
			Tolerance: 2,
			Capacity:  10_000,
		},
		OperatorForwardTimeout: 30 * time.Second,
	}
}

type RelayConfigHolder struct {
	current atomic.Value // holds RelayConfig
}

// NewRelayConfigHolder reads relay.yml (optional) and keeps it reloaded on change.
func NewRelayConfigHolder(cfg Config, log *zap.Logger) (*RelayConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.relay")

	v := viper.New()

	v.SetConfigName("relay")
	v.SetConfigType("yml")
	if dir := strings.TrimSpace(cfg.RelayConfigDir); dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	defaults := DefaultRelayConfig()
	v.SetDefault("relay.pacing.betweenItems", defaults.Pacing.BetweenItems)
	v.SetDefault("relay.pacing.beforeSummary", defaults.Pacing.BeforeSummary)
	v.SetDefault("relay.pacing.beforePrompt", defaults.Pacing.BeforePrompt)
	v.SetDefault("relay.correlation.tolerance", defaults.Correlation.Tolerance)
	v.SetDefault("relay.correlation.capacity", defaults.Correlation.Capacity)
	v.SetDefault("relay.operatorForwardTimeout", defaults.OperatorForwardTimeout)

	found := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		found = false
	}

	var relayCfg RelayConfig
	if err := v.UnmarshalKey("relay", &relayCfg); err != nil {
		return nil, err
	}
	if err := validateRelayConfig(relayCfg); err != nil {
		return nil, err
	}

	holder := NewRelayConfigHolderFrom(relayCfg)
	if !found {
		log.Info("relay config file not found, using defaults")
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated RelayConfig
		if err := v.UnmarshalKey("relay", &updated); err != nil {
			log.Warn("relay config reload failed", zap.Error(err))
			return
		}
		if err := validateRelayConfig(updated); err != nil {
			log.Warn("invalid relay config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("relay config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// NewRelayConfigHolderFrom returns a holder pinned to cfg.
func NewRelayConfigHolderFrom(cfg RelayConfig) *RelayConfigHolder {
	holder := &RelayConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *RelayConfigHolder) Get() RelayConfig {
	if h == nil {
		return DefaultRelayConfig()
	}
	return h.current.Load().(RelayConfig)
}

func validateRelayConfig(cfg RelayConfig) error {
	if cfg.Pacing.BetweenItems < 0 || cfg.Pacing.BeforeSummary < 0 || cfg.Pacing.BeforePrompt < 0 {
		return errors.New("relay.pacing delays cannot be negative")
	}
	if cfg.Correlation.Tolerance < 0 {
		return errors.New("relay.correlation.tolerance cannot be negative")
	}
	if cfg.Correlation.Capacity <= 0 {
		return errors.New("relay.correlation.capacity must be positive")
	}
	if cfg.OperatorForwardTimeout <= 0 {
		return errors.New("relay.operatorForwardTimeout must be positive")
	}
	return nil
}
