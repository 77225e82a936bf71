package observability

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/payrecord/internal/config"
	"github.com/smallbiznis/payrecord/internal/observability/logger"
	"github.com/smallbiznis/payrecord/internal/observability/metrics"
	"github.com/smallbiznis/payrecord/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		provideLoggerConfig,
		logger.New,
		provideGormLogger,
		provideTracingConfig,
		tracing.NewProvider,
		provideMetricsConfig,
		metrics.NewProvider,
		metrics.New,
		providePrometheusRegisterer,
		metrics.NewHTTPMetrics,
	),
	fx.Invoke(ensureTracingProvider),
	fx.Invoke(watchLogLevel),
)

func ensureTracingProvider(_ *sdktrace.TracerProvider) {}

func provideLoggerConfig(cfg Config) logger.Config {
	return logger.Config{
		ServiceName:         cfg.ServiceName,
		Environment:         cfg.Environment,
		Version:             cfg.Version,
		Level:               cfg.LogLevel,
		Format:              cfg.LogFormat,
		Debug:               cfg.Debug(),
		IncludeCaller:       true,
		IncludeStackOnError: cfg.Debug(),
		File: logger.FileConfig{
			Path:       cfg.LogFile,
			MaxSizeMB:  cfg.LogFileMaxSizeMB,
			MaxAgeDays: cfg.LogFileMaxAge,
			MaxBackups: cfg.LogFileBackups,
		},
	}
}

func provideGormLogger(cfg Config) gormlogger.Interface {
	gormCfg := logger.DefaultGormLoggerConfig()
	if cfg.Debug() {
		gormCfg.Level = gormlogger.Info
	}
	return logger.NewGormLogger(gormCfg)
}

func provideTracingConfig(cfg Config) tracing.Config {
	return tracing.Config{
		Enabled:          cfg.OtelEnabled,
		ServiceName:      cfg.ServiceName,
		ServiceVersion:   cfg.Version,
		Environment:      cfg.Environment,
		ExporterEndpoint: cfg.OtelExporterEndpoint,
		ExporterProtocol: cfg.OtelExporterProtocol,
		SamplingRatio:    cfg.OtelSamplingRatio,
	}
}

func provideMetricsConfig(cfg Config) metrics.Config {
	return metrics.Config{
		Enabled:          cfg.OtelEnabled,
		ExporterEndpoint: cfg.OtelExporterEndpoint,
		ExporterProtocol: cfg.OtelExporterProtocol,
		ServiceName:      cfg.ServiceName,
		Environment:      cfg.Environment,
	}
}

func providePrometheusRegisterer() prometheus.Registerer {
	return prometheus.DefaultRegisterer
}

// watchLogLevel applies logLevel changes from the runtime config file.
func watchLogLevel(holder *config.RuntimeConfigHolder, level zap.AtomicLevel, log *zap.Logger) {
	holder.OnChange(func(rc config.RuntimeConfig) {
		next := strings.ToLower(strings.TrimSpace(rc.LogLevel))
		if next == level.Level().String() {
			return
		}
		if err := level.UnmarshalText([]byte(next)); err != nil {
			log.Warn("ignoring runtime log level", zap.String("level", next), zap.Error(err))
			return
		}
		log.Info("log level changed", zap.String("level", next))
	})
}
