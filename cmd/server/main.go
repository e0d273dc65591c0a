package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Abhishek-927/production-online-shop/internal/apperrors"
	"github.com/Abhishek-927/production-online-shop/internal/auth"
	"github.com/Abhishek-927/production-online-shop/internal/awspkg"
	"github.com/Abhishek-927/production-online-shop/internal/cache"
	"github.com/Abhishek-927/production-online-shop/internal/config"
	"github.com/Abhishek-927/production-online-shop/internal/controllers"
	"github.com/Abhishek-927/production-online-shop/internal/database"
	"github.com/Abhishek-927/production-online-shop/internal/logger"
	"github.com/Abhishek-927/production-online-shop/internal/middleware"
	"github.com/Abhishek-927/production-online-shop/internal/payment"
	"github.com/Abhishek-927/production-online-shop/internal/repository"
	"github.com/Abhishek-927/production-online-shop/internal/routes"
	"github.com/Abhishek-927/production-online-shop/internal/services"
)

func main() {
	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	env := os.Getenv("APP_ENV")
	logger.Initialize(env)
	defer func() { _ = logger.Log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// AWS is optional; every client built from it degrades to a no-op when
	// its feature is not configured.
	awsCfg, awsErr := awspkg.LoadAWSConfig(ctx)
	if awsErr != nil {
		logger.Log.Warn("AWS config unavailable, AWS features disabled", zap.Error(awsErr))
	}
	awsReady := awsErr == nil

	var secrets config.SecretSource
	if awsReady {
		secrets = awspkg.NewSecretsClient(awsCfg)
	}
	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		logger.Log.Fatal("Failed to load configuration", zap.Error(err))
	}

	if awsReady && cfg.CloudWatchEnabled {
		cwLogs, err := awspkg.NewCloudWatchLogsClient(ctx, awsCfg, cfg.CloudWatchLogGroup, cfg.ServiceName)
		if err != nil {
			logger.Log.Warn("CloudWatch Logs unavailable", zap.Error(err))
		} else {
			logger.InitializeWithWriter(cfg.Env, cwLogs)
		}
	}

	metrics := awspkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, awsReady && cfg.CloudWatchEnabled)

	mongoClient, db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Log.Fatal("Failed to ensure indexes", zap.Error(err))
	}

	redisClient := newRedis(cfg.RedisURL)
	productCache := cache.NewProductCache(redisClient, cache.DefaultTTL, metrics)

	users := repository.NewUserRepository(db)
	categories := repository.NewCategoryRepository(db)
	products := repository.NewProductRepository(db)
	orders := repository.NewOrderRepository(db)
	payments := repository.NewPaymentRepository(db)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	gateway := payment.NewStripeGateway(cfg.StripeSecretKey)

	var events services.EventSink
	var queue *awspkg.SQSQueue
	if awsReady {
		events = services.NewEventPublisher(awspkg.NewSNSClient(awsCfg), cfg.OrderEventsTopicARN)
		if cfg.ReconcileQueueURL != "" {
			queue = awspkg.NewSQSQueue(awsCfg, cfg.ReconcileQueueURL)
		}
	}
	var reconcileQueue services.ReconcileQueue
	if queue != nil {
		reconcileQueue = queue
	}

	authService := services.NewAuthService(users, tokens)
	categoryService := services.NewCategoryService(categories)
	productService := services.NewProductService(products, categories)
	orderService := services.NewOrderService(orders, products, users, events)
	checkoutService := services.NewCheckoutService(users, payments, orders, gateway, events, reconcileQueue, metrics, cfg.Currency)
	reconciler := services.NewReconciler(checkoutService, payments, cfg.ReconcileGrace)

	var workers sync.WaitGroup
	workers.Add(1)
	go func() {
		defer workers.Done()
		reconciler.Start(ctx, cfg.ReconcileInterval)
	}()
	if queue != nil {
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := queue.StartPolling(ctx, reconciler.HandleMessage); err != nil && !errors.Is(err, context.Canceled) {
				logger.Log.Error("reconcile queue polling stopped", zap.Error(err))
			}
		}()
	}

	limiter := middleware.NewRateLimiter(rate.Every(time.Minute/100), 50, 3*time.Minute)
	defer limiter.Stop()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(middleware.RequestLogger(logger.Log))
	r.Use(middleware.Metrics(metrics, cfg.ServiceName))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(limiter.Middleware())
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(apperrors.ErrorMiddleware())

	routes.RegisterRoutes(r, routes.Controllers{
		Auth:     controllers.NewAuthController(authService),
		Orders:   controllers.NewOrderController(orderService),
		Category: controllers.NewCategoryController(categoryService, productCache),
		Product:  controllers.NewProductController(productService, productCache),
		Payment:  controllers.NewPaymentController(checkoutService),
	}, routes.Gates{Tokens: tokens, Accounts: users})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("server forced to shutdown", zap.Error(err))
	}

	cancel()
	workers.Wait()

	if err := redisClient.Close(); err != nil {
		logger.Log.Warn("failed to close redis", zap.Error(err))
	}
	if err := database.Close(mongoClient); err != nil {
		logger.Log.Warn("failed to close MongoDB", zap.Error(err))
	}
	logger.Log.Info("server exited")
}

func newRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Log.Warn("Failed to parse REDIS_URL, falling back to default", zap.Error(err))
		opts = &redis.Options{Addr: "localhost:6379"}
	}
	return redis.NewClient(opts)
}
