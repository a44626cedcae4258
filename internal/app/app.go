package app

import (
	"fmt"
	"time"

	"github.com/diemthanh21/shopthoitrang-sub001/internal/module/aftersales"
	"github.com/diemthanh21/shopthoitrang-sub001/internal/module/catalog"
	"github.com/diemthanh21/shopthoitrang-sub001/internal/module/chat"
	"github.com/diemthanh21/shopthoitrang-sub001/internal/module/loyalty"
	"github.com/diemthanh21/shopthoitrang-sub001/internal/module/order"
	"github.com/diemthanh21/shopthoitrang-sub001/internal/module/promotion"
	sharedcache "github.com/diemthanh21/shopthoitrang-sub001/internal/shared/cache"
	"github.com/diemthanh21/shopthoitrang-sub001/internal/shared/config"
	"github.com/diemthanh21/shopthoitrang-sub001/internal/shared/database"
	"github.com/diemthanh21/shopthoitrang-sub001/internal/shared/logger"
	"github.com/diemthanh21/shopthoitrang-sub001/internal/shared/metrics"
	"github.com/diemthanh21/shopthoitrang-sub001/internal/shared/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the assembled application.
type App struct {
	config *config.Config
	logger *zap.Logger
	db     *gorm.DB
	redis  redis.UniversalClient
	router *gin.Engine

	catalogHandler    *catalog.Handler
	orderHandler      *order.Handler
	chatHandler       *chat.Handler
	loyaltyHandler    *loyalty.Handler
	aftersalesHandler *aftersales.Handler
}

// New wires the application from configuration.
func New(cfg *config.Config) (*App, error) {
	log, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	app := &App{config: cfg, logger: log}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	app.db = db

	// Redis is optional; rate limiting and idempotency degrade without it.
	if cfg.Redis.Address != "" {
		redisClient, err := sharedcache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn("redis connection failed, continuing without it", zap.Error(err))
		} else {
			app.redis = redisClient
		}
	}

	m := metrics.New("shopthoitrang")

	if err := app.initModules(m); err != nil {
		return nil, fmt.Errorf("init modules: %w", err)
	}
	app.router = app.setupRouter(m)

	return app, nil
}

// Router returns the configured HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop releases application resources.
func (a *App) Stop() {
	if a.redis != nil {
		if err := sharedcache.Close(a.redis); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if err := database.Close(a.db); err != nil {
		a.logger.Warn("failed to close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func (a *App) initModules(m *metrics.Metrics) error {
	catalogRepo := catalog.NewRepository(a.db)
	orderRepo := order.NewRepository(a.db)
	promotionRepo := promotion.NewRepository(a.db)
	chatRepo := chat.NewRepository(a.db)
	loyaltyRepo := loyalty.NewRepository(a.db)
	aftersalesRepo := aftersales.NewRepository(a.db)

	orderService := order.NewService(orderRepo, a.logger)

	var defaultStaffID uuid.UUID
	if a.config.AfterSales.DefaultStaffID != "" {
		parsed, err := uuid.Parse(a.config.AfterSales.DefaultStaffID)
		if err != nil {
			return fmt.Errorf("parse default staff id: %w", err)
		}
		defaultStaffID = parsed
	}

	validator := aftersales.NewEligibilityValidator(
		orderService, catalogRepo, promotionRepo, a.config.AfterSales.RequestWindow)
	audit := aftersales.NewAuditWriter(aftersalesRepo, a.logger, m)
	notifier := aftersales.NewNotifier(chatRepo, defaultStaffID, a.logger, m)
	enricher := aftersales.NewEnricher(orderService, catalogRepo, a.logger)

	returnService := aftersales.NewReturnService(
		aftersalesRepo, orderService, validator, audit, notifier, a.logger, m)
	exchangeService := aftersales.NewExchangeService(
		aftersalesRepo, orderService, catalogRepo, validator, audit, notifier, a.logger, m)

	a.catalogHandler = catalog.NewHandler(catalogRepo)
	a.orderHandler = order.NewHandler(orderService)
	a.chatHandler = chat.NewHandler(chatRepo)
	a.loyaltyHandler = loyalty.NewHandler(loyaltyRepo)
	a.aftersalesHandler = aftersales.NewHandler(returnService, exchangeService, enricher, aftersalesRepo)

	return nil
}

func (a *App) setupRouter(m *metrics.Metrics) *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.Metrics(m))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	if a.redis != nil {
		limiter := middleware.NewRateLimiter(a.redis)
		api.Use(middleware.RateLimitByIP(limiter, 300, time.Minute))
		api.Use(middleware.Idempotency(a.redis, 24*time.Hour))
	}
	api.Use(middleware.StaffAuth(a.config.Auth.JWTSecret))

	a.catalogHandler.RegisterRoutes(api)
	a.orderHandler.RegisterProtectedRoutes(api)
	a.chatHandler.RegisterProtectedRoutes(api)
	a.loyaltyHandler.RegisterProtectedRoutes(api)
	a.aftersalesHandler.RegisterRoutes(api)

	return r
}
