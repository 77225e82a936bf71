package config

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// RuntimeConfig holds the settings that can change without a restart.
type RuntimeConfig struct {
	LogLevel        string          `mapstructure:"logLevel"`
	CreateRateLimit RateLimitPolicy `mapstructure:"createRateLimit"`
}

type RateLimitPolicy struct {
	Rate  float64 `mapstructure:"rate"`
	Burst int     `mapstructure:"burst"`
}

func DefaultRuntimeConfig(cfg Config) RuntimeConfig {
	return RuntimeConfig{
		LogLevel: "info",
		CreateRateLimit: RateLimitPolicy{
			Rate:  cfg.RateLimit.CreateRate,
			Burst: cfg.RateLimit.CreateBurst,
		},
	}
}

type RuntimeConfigHolder struct {
	current atomic.Value // holds RuntimeConfig

	mu        sync.Mutex
	listeners []func(RuntimeConfig)
}

// NewRuntimeConfigHolder reads payrecord.yml from the configured paths and watches it.
func NewRuntimeConfigHolder(cfg Config) (*RuntimeConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("payrecord")
	v.SetConfigType("yml")
	for _, path := range cfg.RuntimeConfigPaths {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix("PAYRECORD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultRuntimeConfig(cfg)
	v.SetDefault("runtime.logLevel", defaults.LogLevel)
	v.SetDefault("runtime.createRateLimit.rate", defaults.CreateRateLimit.Rate)
	v.SetDefault("runtime.createRateLimit.burst", defaults.CreateRateLimit.Burst)

	watch := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		watch = false
	}

	holder, err := newRuntimeConfigHolder(v)
	if err != nil {
		return nil, err
	}

	if watch {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			holder.reload(v, e.Name)
		})
	}

	return holder, nil
}

type runtimeFile struct {
	Runtime RuntimeConfig `mapstructure:"runtime"`
}

// decodeRuntime goes through AllSettings so defaults fill keys missing from the file.
func decodeRuntime(v *viper.Viper) (RuntimeConfig, error) {
	var file runtimeFile
	if err := v.Unmarshal(&file); err != nil {
		return RuntimeConfig{}, err
	}
	return file.Runtime, nil
}

func newRuntimeConfigHolder(v *viper.Viper) (*RuntimeConfigHolder, error) {
	cfg, err := decodeRuntime(v)
	if err != nil {
		return nil, err
	}
	if err := validateRuntimeConfig(cfg); err != nil {
		return nil, err
	}

	holder := &RuntimeConfigHolder{}
	holder.current.Store(cfg)
	return holder, nil
}

func (h *RuntimeConfigHolder) Get() RuntimeConfig {
	return h.current.Load().(RuntimeConfig)
}

// OnChange registers fn to run after every accepted reload.
func (h *RuntimeConfigHolder) OnChange(fn func(RuntimeConfig)) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}

func (h *RuntimeConfigHolder) reload(v *viper.Viper, source string) {
	updated, err := decodeRuntime(v)
	if err != nil {
		zap.L().Warn("runtime config reload failed", zap.String("source", source), zap.Error(err))
		return
	}
	if err := h.apply(updated); err != nil {
		zap.L().Warn("invalid runtime config ignored", zap.String("source", source), zap.Error(err))
		return
	}
	zap.L().Info("runtime config reloaded", zap.String("source", source))
}

func (h *RuntimeConfigHolder) apply(updated RuntimeConfig) error {
	if err := validateRuntimeConfig(updated); err != nil {
		return err
	}
	h.current.Store(updated)

	h.mu.Lock()
	listeners := append([]func(RuntimeConfig){}, h.listeners...)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(updated)
	}
	return nil
}

func validateRuntimeConfig(cfg RuntimeConfig) error {
	switch strings.ToLower(strings.TrimSpace(cfg.LogLevel)) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("runtime.logLevel must be one of debug, info, warn, error")
	}
	if cfg.CreateRateLimit.Rate <= 0 {
		return errors.New("runtime.createRateLimit.rate must be positive")
	}
	if cfg.CreateRateLimit.Burst <= 0 {
		return errors.New("runtime.createRateLimit.burst must be positive")
	}
	return nil
}
