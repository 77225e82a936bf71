package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/payrecord/internal/config"
	"github.com/smallbiznis/payrecord/internal/events"
	"github.com/smallbiznis/payrecord/internal/observability"
	obsmiddleware "github.com/smallbiznis/payrecord/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/payrecord/internal/observability/metrics"
	obstracing "github.com/smallbiznis/payrecord/internal/observability/tracing"
	"github.com/smallbiznis/payrecord/internal/payment"
	paymentdomain "github.com/smallbiznis/payrecord/internal/payment/domain"
	"github.com/smallbiznis/payrecord/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	events.Module,
	payment.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig()))
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware(obstracing.MiddlewareConfig{
		Operations:      paymentOperations,
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// corsConfig allows any origin; the API carries no credentials.
func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowHeaders = append(cfg.AllowHeaders, obsmiddleware.RequestIDHeader)
	cfg.ExposeHeaders = []string{obsmiddleware.RequestIDHeader, "Retry-After"}
	return cfg
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if obsCfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type createLimiter interface {
	Enabled() bool
	Allow(ctx context.Context, clientKey string) (*ratelimit.RateLimitResult, error)
}

type Server struct {
	engine        *gin.Engine
	paymentSvc    paymentdomain.Service
	createLimiter createLimiter
	obsMetrics    *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	PaymentSvc    paymentdomain.Service
	CreateLimiter *ratelimit.CreateLimiter `optional:"true"`
	ObsMetrics    *obsmetrics.Metrics      `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		paymentSvc: p.PaymentSvc,
		obsMetrics: p.ObsMetrics,
	}
	if p.CreateLimiter.Enabled() {
		svc.createLimiter = p.CreateLimiter
	}

	svc.registerPaymentRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// paymentOperations names the payment operation behind each route in traces.
var paymentOperations = map[string]string{
	"/payments/create":       "create",
	"/payments/:external_id": "get_by_external_id",
	"/payments/email/:email": "list_by_email",
}

func (s *Server) registerPaymentRoutes() {
	payments := s.engine.Group("/payments")

	payments.POST("/create", s.CreateRateLimit(), s.CreatePayment)
	payments.GET("/email/:email", s.ListPaymentsByEmail)
	payments.GET("/:external_id", s.GetPayment)
}
