package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/colmadolabs/colmado/internal/auth/domain"
	"github.com/colmadolabs/colmado/internal/auth/session"
	"github.com/colmadolabs/colmado/internal/authorization"
	"github.com/colmadolabs/colmado/internal/config"
	creditdomain "github.com/colmadolabs/colmado/internal/credit/domain"
	"github.com/colmadolabs/colmado/internal/observability"
	obslogger "github.com/colmadolabs/colmado/internal/observability/logger"
	obsmetrics "github.com/colmadolabs/colmado/internal/observability/metrics"
	obstracing "github.com/colmadolabs/colmado/internal/observability/tracing"
	orderdomain "github.com/colmadolabs/colmado/internal/order/domain"
	"github.com/colmadolabs/colmado/internal/ratelimit"
	storedomain "github.com/colmadolabs/colmado/internal/store/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
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
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	sessions        *session.Manager
	authsvc         authdomain.Service
	authzSvc        authorization.Service
	storeSvc        storedomain.Service
	creditSvc       creditdomain.Service
	orderSvc        orderdomain.Service
	checkoutLimiter *ratelimit.CheckoutLimiter
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	Log             *zap.Logger
	GenID           *snowflake.Node
	Sessions        *session.Manager
	Authsvc         authdomain.Service
	AuthzSvc        authorization.Service
	StoreSvc        storedomain.Service
	CreditSvc       creditdomain.Service
	OrderSvc        orderdomain.Service
	CheckoutLimiter *ratelimit.CheckoutLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		log:             p.Log.Named("http.server"),
		genID:           p.GenID,
		sessions:        p.Sessions,
		authsvc:         p.Authsvc,
		authzSvc:        p.AuthzSvc,
		storeSvc:        p.StoreSvc,
		creditSvc:       p.CreditSvc,
		orderSvc:        p.OrderSvc,
		checkoutLimiter: p.CheckoutLimiter,
	}

	svc.registerRoutes()

	return svc
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", s.SignUp)
	authGroup.POST("/login", s.Login)
	authGroup.POST("/logout", s.Logout)
	authGroup.GET("/me", s.AuthRequired(), s.Me)

	stores := api.Group("/stores", s.AuthRequired())
	stores.GET("", s.ListStores)
	stores.GET("/:id", s.GetStore)
	stores.GET("/:id/products", s.RequirePermission(authorization.ObjectCatalog, authorization.ActionView), s.ListProducts)
	stores.GET("/:id/credit", s.RequirePermission(authorization.ObjectCreditInfo, authorization.ActionView), s.GetCreditInfo)
	stores.GET("/:id/credit/history", s.RequirePermission(authorization.ObjectCreditInfo, authorization.ActionView), s.ListCreditHistory)
	stores.POST("/:id/credit", s.RequirePermission(authorization.ObjectCreditInfo, authorization.ActionView), s.RequestCredit)

	api.POST("/checkout", s.AuthRequired(), s.RequirePermission(authorization.ObjectCheckout, authorization.ActionCreate), s.Checkout)

	orders := api.Group("/orders", s.AuthRequired(), s.RequirePermission(authorization.ObjectOrder, authorization.ActionView))
	orders.GET("", s.ListOrders)
	orders.GET("/:id", s.GetOrder)

	business := api.Group("/business", s.AuthRequired())
	business.GET("/customers", s.RequirePermission(authorization.ObjectCreditCustomer, authorization.ActionView), s.ListCustomers)
	business.PUT("/customers/:relationship_id/credit-limit", s.RequirePermission(authorization.ObjectCreditCustomer, authorization.ActionManage), s.AdjustCreditLimit)
	business.POST("/customers/:relationship_id/payments", s.RequirePermission(authorization.ObjectCreditCustomer, authorization.ActionManage), s.RecordPayment)
	business.GET("/customers/:relationship_id/history", s.RequirePermission(authorization.ObjectCreditCustomer, authorization.ActionView), s.ListCustomerHistory)
	business.GET("/orders", s.RequirePermission(authorization.ObjectOrder, authorization.ActionView), s.ListStoreOrders)

	api.POST("/test/cleanup", s.TestCleanup)
}
