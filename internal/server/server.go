package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/bloomloft/garland/internal/authorization"
	checkoutdomain "github.com/bloomloft/garland/internal/checkout/domain"
	"github.com/bloomloft/garland/internal/config"
	"github.com/bloomloft/garland/internal/observability/metrics"
	orderdomain "github.com/bloomloft/garland/internal/order/domain"
	paymentdomain "github.com/bloomloft/garland/internal/payment/domain"
	"github.com/bloomloft/garland/internal/ratelimit"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogMiddleware(log))
	r.Use(MetricsMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	return NewEngine(log, m)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	checkoutSvc checkoutdomain.Service
	orderSvc    orderdomain.Service
	paymentSvc  paymentdomain.Service
	authzSvc    authorization.Service
	pollLimiter *ratelimit.PollLimiter
	metrics     *metrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	CheckoutSvc checkoutdomain.Service
	OrderSvc    orderdomain.Service
	PaymentSvc  paymentdomain.Service
	AuthzSvc    authorization.Service
	PollLimiter *ratelimit.PollLimiter `optional:"true"`
	Metrics     *metrics.Metrics
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("http.server"),
		checkoutSvc: p.CheckoutSvc,
		orderSvc:    p.OrderSvc,
		paymentSvc:  p.PaymentSvc,
		authzSvc:    p.AuthzSvc,
		pollLimiter: p.PollLimiter,
		metrics:     p.Metrics,
	}

	svc.registerGatewayRoutes()
	svc.registerPublicRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerGatewayRoutes() {
	s.engine.POST("/payments/callback", s.PaymentCallback)
}

func (s *Server) registerPublicRoutes() {
	api := s.engine.Group("/api")

	api.POST("/checkout/drafts", s.CreateDraft)
	api.GET("/orders/:orderNumber", s.GetOrder)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/admin", s.AdminAuthRequired())

	admin.GET("/orders", s.ListOrders)
	admin.GET("/orders/:id", s.GetOrderByID)
	admin.PATCH("/orders/:id/status", s.UpdateOrderStatus)
	admin.POST("/orders/:id/refund", s.RefundOrder)
}
