package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	auditapp "github.com/pharmos/backend/internal/application/audit"
	budgetapp "github.com/pharmos/backend/internal/application/budget"
	catalogapp "github.com/pharmos/backend/internal/application/catalog"
	identityapp "github.com/pharmos/backend/internal/application/identity"
	prescriptionapp "github.com/pharmos/backend/internal/application/prescription"
	salesapp "github.com/pharmos/backend/internal/application/sales"
	"github.com/pharmos/backend/internal/domain/budget"
	"github.com/pharmos/backend/internal/infrastructure/auth"
	"github.com/pharmos/backend/internal/infrastructure/cache"
	"github.com/pharmos/backend/internal/infrastructure/config"
	"github.com/pharmos/backend/internal/infrastructure/logger"
	"github.com/pharmos/backend/internal/infrastructure/persistence"
	"github.com/pharmos/backend/internal/interfaces/http/handler"
	"github.com/pharmos/backend/internal/interfaces/http/middleware"
	"github.com/pharmos/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting pharmacy backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Redis backs the share-code claim fast path and token revocation.
	// Without it both fall back to in-process stores, which is fine for a
	// single instance.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		log.Info("Redis connected", zap.String("host", cfg.Redis.Host))
	}

	// Repositories
	medicineRepo := persistence.NewGormMedicineRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB, cfg.Checkout.OrderNumberPrefix)
	stockLedger := persistence.NewGormStockLedger(db.DB)
	budgetRepo := persistence.NewGormBudgetRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	prescriptionRepo := persistence.NewGormPrescriptionRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Auth infrastructure
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}

	// Application services
	auditRecorder := auditapp.NewRecorder(auditRepo, log)

	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)

	medicineService := catalogapp.NewMedicineService(medicineRepo, stockLedger)
	medicineService.SetAuditRecorder(auditRecorder)

	thresholds := budget.Thresholds{
		WarningPercent:    decimal.NewFromFloat(cfg.Budget.WarningPercent),
		OverBudgetPercent: decimal.NewFromFloat(cfg.Budget.OverBudgetPercent),
	}
	budgetService := budgetapp.NewBudgetService(budgetRepo, thresholds)
	expenseService := budgetapp.NewExpenseService(expenseRepo, budgetRepo)
	expenseService.SetAuditRecorder(auditRecorder)

	resolverService := prescriptionapp.NewResolverService(prescriptionRepo)

	pricer := salesapp.NewPricer(medicineRepo)
	orderService := salesapp.NewOrderService(
		pricer,
		orderRepo,
		stockLedger,
		budgetRepo,
		prescriptionRepo,
		resolverService,
		log,
	)
	orderService.SetAuditRecorder(auditRecorder)
	if redisClient != nil {
		orderService.SetClaimStore(cache.NewRedisShareCodeClaimStore(redisClient, cfg.Checkout.ShareCodeClaimTTL))
	} else {
		orderService.SetClaimStore(cache.NewInMemoryShareCodeClaimStore(cfg.Checkout.ShareCodeClaimTTL))
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.JWTAuthWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/health",
			"/ready",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		Logger: log,
	}))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.RegisterRoot(handler.NewSystemHandler(db))
	r.Register(handler.NewAuthHandler(authService)).
		Register(handler.NewMedicineHandler(medicineService)).
		Register(handler.NewOrderHandler(orderService)).
		Register(handler.NewBudgetHandler(budgetService)).
		Register(handler.NewExpenseHandler(expenseService)).
		Register(handler.NewPrescriptionHandler(resolverService)).
		Register(handler.NewAuditHandler(auditRecorder))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
