package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/ravinder1302/ARS-Kart/controllers"
	"github.com/ravinder1302/ARS-Kart/database"
	"github.com/ravinder1302/ARS-Kart/events"
	"github.com/ravinder1302/ARS-Kart/logger"
	"github.com/ravinder1302/ARS-Kart/middleware"
	"github.com/ravinder1302/ARS-Kart/notifier"
	awsx "github.com/ravinder1302/ARS-Kart/pkg/aws"
	"github.com/ravinder1302/ARS-Kart/repository"
	"github.com/ravinder1302/ARS-Kart/routes"
	"github.com/ravinder1302/ARS-Kart/services"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		panic(err)
	}

	logger.Initialize(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongo, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	if err := mongo.EnsureIndexes(ctx); err != nil {
		logger.Log.Fatal("Failed to create indexes", zap.Error(err))
	}

	// Redis is optional; the product cache degrades to direct reads without it.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = database.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Log.Warn("Redis unavailable, product cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	// Email is best-effort; without SMTP config orders simply skip the
	// confirmation step.
	var mailer notifier.Notifier
	if cfg.SMTPHost != "" {
		sender, err := notifier.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
		if err != nil {
			logger.Log.Warn("SMTP not configured, order emails disabled", zap.Error(err))
		} else {
			mailer = notifier.NewMailer(sender)
		}
	}

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.OrderEventsTopic)
	}

	var presigner *awsx.S3Presigner
	if cfg.S3Bucket != "" {
		awsCfg, err := awsx.LoadAWSConfig(ctx)
		if err != nil {
			logger.Log.Warn("AWS config unavailable, image uploads disabled", zap.Error(err))
		} else {
			presigner = awsx.NewS3Presigner(awsCfg, cfg.S3Bucket, cfg.S3PublicURL)
		}
	}

	productRepo := repository.NewMongoProductRepository(mongo.DB)
	categoryRepo := repository.NewMongoCategoryRepository(mongo.DB)
	cartRepo := repository.NewMongoCartRepository(mongo.DB)
	wishlistRepo := repository.NewMongoWishlistRepository(mongo.DB)
	orderRepo := repository.NewMongoOrderRepository(mongo.Client, mongo.DB)

	orderService := services.NewOrderService(orderRepo, productRepo, cartRepo, mailer, producer, services.OrderConfig{
		CommitTimeout: cfg.CommitTimeout,
		NotifyTimeout: cfg.NotifyTimeout,
	})
	productService := services.NewProductService(productRepo, redisClient, presigner)
	categoryService := services.NewCategoryService(categoryRepo)
	cartService := services.NewCartService(cartRepo, productRepo)
	wishlistService := services.NewWishlistService(wishlistRepo, productRepo)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimit())
	r.Use(middleware.Metrics())
	r.GET("/metrics", middleware.MetricsHandler())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.Register(r, routes.Controllers{
		Orders:     controllers.NewOrderController(orderService),
		Products:   controllers.NewProductController(productService),
		Categories: controllers.NewCategoryController(categoryService),
		Cart:       controllers.NewCartController(cartService),
		Wishlist:   controllers.NewWishlistController(wishlistService),
	}, []byte(cfg.JWTSecret))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("Server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server shutdown error", zap.Error(err))
	}

	// Let fire-and-forget work (cart-clear retries, emails) finish.
	orderService.Drain()

	if err := producer.Close(); err != nil {
		logger.Log.Error("Kafka producer close error", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Log.Error("Redis close error", zap.Error(err))
		}
	}
	if err := mongo.Close(shutdownCtx); err != nil {
		logger.Log.Error("MongoDB disconnect error", zap.Error(err))
	}
	logger.Log.Info("Shutdown complete")
}
