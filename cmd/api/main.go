package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/address-registry/app/config"
	"github.com/address-registry/app/controllers"
	"github.com/address-registry/app/services"
	"github.com/address-registry/internal/geocode"
	"github.com/address-registry/internal/search"
	"github.com/address-registry/internal/store"
	"github.com/address-registry/routes"
)

func main() {
	// 1. Load configuration
	loadConfig()
	if err := config.Load(viper.GetString("registry.config_path")); err != nil {
		log.Printf("Warning: cannot read registry config, using defaults: %v", err)
	}

	// 2. Initialize logger
	logger := initLogger()
	defer logger.Sync()

	logger.Info("Starting Address Registry Service")

	// 3. Connect MongoDB
	mongoDB := initMongoDB(logger)
	defer func() {
		if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
			logger.Error("Error disconnecting MongoDB", zap.Error(err))
		}
	}()
	addressStore := store.NewMongoStore(mongoDB, logger)

	// 4. Initialize Meilisearch (optional; search endpoint disabled without it)
	var addressIndex *search.AddressIndex
	if host := viper.GetString("meilisearch.url"); host != "" {
		addressIndex = search.NewAddressIndex(host, viper.GetString("meilisearch.master_key"), logger)
		logger.Info("Meilisearch index enabled", zap.String("host", host))
	}

	// 5. Initialize resolve cache (Redis when configured, in-process LRU otherwise)
	cacheService := initResolveCache(logger)
	defer cacheService.Close()

	// 6. Initialize geocoder
	apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if apiKey == "" {
		logger.Fatal("GOOGLE_MAPS_API_KEY is required")
	}
	geocoder := geocode.NewGoogleGeocoder(apiKey, logger)

	// 7. Initialize services
	addressService := services.NewAddressService(addressStore, geocoder, cacheService, addressIndex, logger)
	optimizerService := services.NewOptimizerService(addressStore, cacheService, addressIndex, logger)
	adminService := services.NewAdminService(addressStore, cacheService, addressIndex, optimizerService, logger)

	// 8. Initialize controllers
	addressController := controllers.NewAddressController(addressService, logger)
	adminController := controllers.NewAdminController(adminService, logger)

	// 9. Setup Gin router
	if viper.GetString("app.env") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, addressController, adminController)

	// 10. Start server
	port := viper.GetString("app.port")
	go func() {
		logger.Info("HTTP server listening", zap.String("port", port))
		if err := router.Run(":" + port); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
}

// loadConfig loads app configuration from file and env vars.
func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("mongo.url", "mongodb://localhost:27017/address_registry")
	viper.SetDefault("meilisearch.url", "")
	viper.SetDefault("meilisearch.master_key", "")
	viper.SetDefault("redis.url", "")
	viper.SetDefault("registry.config_path", "config/registry.yaml")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: cannot read config file: %v", err)
	}
}

// initLogger builds the structured logger for the configured environment.
func initLogger() *zap.Logger {
	var cfg zap.Config
	if viper.GetString("app.env") == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Fatal("Cannot initialize logger:", err)
	}
	return logger
}

// initMongoDB connects to MongoDB and verifies the connection.
func initMongoDB(logger *zap.Logger) *mongo.Database {
	mongoURL := viper.GetString("mongo.url")
	if env := os.Getenv("MONGO_URL"); env != "" {
		mongoURL = env
	}

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURL))
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}

	db := client.Database("address_registry")
	logger.Info("Connected to MongoDB", zap.String("database", db.Name()))
	return db
}

// initResolveCache prefers the shared Redis cache and falls back to the
// in-process LRU when no Redis is configured or reachable.
func initResolveCache(logger *zap.Logger) services.ResolveCache {
	redisURL := viper.GetString("redis.url")
	if env := os.Getenv("REDIS_URL"); env != "" {
		redisURL = env
	}

	if redisURL != "" {
		ttl := time.Duration(config.C.Cache.TTLHours) * time.Hour
		redisCache, err := services.NewRedisCacheService(redisURL, ttl, logger)
		if err == nil {
			logger.Info("Redis resolve cache enabled")
			return redisCache
		}
		logger.Warn("Redis unavailable, falling back to LRU cache", zap.Error(err))
	}

	lruCache, err := services.NewLRUCacheService(config.C.Cache.L1Size, logger)
	if err != nil {
		logger.Fatal("Failed to initialize LRU cache", zap.Error(err))
	}
	return lruCache
}
