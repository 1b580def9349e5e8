// Package server wires the HTTP API: public storefront endpoints and
// the authenticated admin surface.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bondexsafety/backoffice/internal/catalog/category"
	categorydomain "github.com/bondexsafety/backoffice/internal/catalog/category/domain"
	"github.com/bondexsafety/backoffice/internal/catalog/product"
	productdomain "github.com/bondexsafety/backoffice/internal/catalog/product/domain"
	"github.com/bondexsafety/backoffice/internal/clock"
	"github.com/bondexsafety/backoffice/internal/config"
	"github.com/bondexsafety/backoffice/internal/dashboard"
	dashboarddomain "github.com/bondexsafety/backoffice/internal/dashboard/domain"
	"github.com/bondexsafety/backoffice/internal/identity"
	identitydomain "github.com/bondexsafety/backoffice/internal/identity/domain"
	"github.com/bondexsafety/backoffice/internal/identity/token"
	"github.com/bondexsafety/backoffice/internal/media"
	"github.com/bondexsafety/backoffice/internal/notify"
	"github.com/bondexsafety/backoffice/internal/observability"
	obslogger "github.com/bondexsafety/backoffice/internal/observability/logger"
	obsmetrics "github.com/bondexsafety/backoffice/internal/observability/metrics"
	"github.com/bondexsafety/backoffice/internal/order"
	orderdomain "github.com/bondexsafety/backoffice/internal/order/domain"
	"github.com/bondexsafety/backoffice/internal/pdf"
	"github.com/bondexsafety/backoffice/internal/ratelimit"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	media.Module,
	notify.Module,
	pdf.Module,
	ratelimit.Module,
	identity.Module,
	category.Module,
	product.Module,
	order.Module,
	dashboard.Module,
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
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
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
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

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger
	db     *gorm.DB
	genID  *snowflake.Node
	clock  clock.Clock

	identitySvc  identitydomain.Service
	identityRepo identitydomain.Repository
	tokens       *token.Manager
	productSvc   productdomain.Service
	categorySvc  categorydomain.Service
	orderSvc     orderdomain.Service
	dashboardSvc dashboarddomain.Service
	storage      media.Storage
	receipts     pdf.Renderer

	orderLimiter *ratelimit.TokenBucket
	loginLimiter *ratelimit.FixedWindow
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	DB           *gorm.DB
	GenID        *snowflake.Node
	Clock        clock.Clock
	IdentitySvc  identitydomain.Service
	IdentityRepo identitydomain.Repository
	Tokens       *token.Manager
	ProductSvc   productdomain.Service
	CategorySvc  categorydomain.Service
	OrderSvc     orderdomain.Service
	DashboardSvc dashboarddomain.Service
	Storage      media.Storage
	Receipts     pdf.Renderer
	OrderLimiter *ratelimit.TokenBucket `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          p.Log.Named("http.server"),
		db:           p.DB,
		genID:        p.GenID,
		clock:        p.Clock,
		identitySvc:  p.IdentitySvc,
		identityRepo: p.IdentityRepo,
		tokens:       p.Tokens,
		productSvc:   p.ProductSvc,
		categorySvc:  p.CategorySvc,
		orderSvc:     p.OrderSvc,
		dashboardSvc: p.DashboardSvc,
		storage:      p.Storage,
		receipts:     p.Receipts,
		orderLimiter: p.OrderLimiter,
		loginLimiter: ratelimit.NewFixedWindow(10, time.Minute),
	}

	s.registerPublicRoutes()
	s.registerAdminRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerPublicRoutes() {
	s.engine.Static(s.cfg.MediaBaseURL, s.cfg.MediaDir)

	api := s.engine.Group("/api")

	api.POST("/auth/login", s.Login)

	api.GET("/products", s.ListProducts)
	api.GET("/products/:slug", s.GetProductBySlug)
	api.GET("/categories", s.ListCategories)

	api.POST("/orders", s.OrderRateLimit(), s.CreateOrder)
	api.GET("/orders/:number", s.LookupOrder)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/admin", s.AdminRequired())

	admin.GET("/auth/me", s.Me)
	admin.POST("/auth/change-password", s.ChangePassword)

	admin.GET("/users", s.ListUsers)
	admin.POST("/users", s.CreateUser)

	admin.POST("/products", s.CreateProduct)
	admin.GET("/products", s.AdminListProducts)
	admin.GET("/products/:id", s.GetProduct)
	admin.PATCH("/products/:id", s.UpdateProduct)
	admin.DELETE("/products/:id", s.DeleteProduct)
	admin.POST("/products/:id/images", s.UploadProductImage)

	admin.POST("/categories", s.CreateCategory)
	admin.GET("/categories", s.AdminListCategories)
	admin.GET("/categories/:id", s.GetCategory)
	admin.PATCH("/categories/:id", s.UpdateCategory)
	admin.DELETE("/categories/:id", s.DeleteCategory)

	admin.GET("/orders", s.ListOrders)
	admin.GET("/orders/:id", s.GetOrder)
	admin.PATCH("/orders/:id/status", s.UpdateOrderStatus)
	admin.PATCH("/orders/:id/tracking", s.UpdateOrderTracking)
	admin.PATCH("/orders/:id/payment", s.UpdateOrderPayment)
	admin.POST("/orders/:id/refund", s.RefundOrder)
	admin.DELETE("/orders/:id", s.DeleteOrder)
	admin.GET("/orders/:id/receipt", s.OrderReceipt)

	admin.GET("/dashboard/stats", s.DashboardStats)
	admin.GET("/dashboard/revenue", s.DashboardRevenue)
	admin.GET("/dashboard/top-products", s.DashboardTopProducts)
	admin.GET("/dashboard/low-stock", s.DashboardLowStock)
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}
