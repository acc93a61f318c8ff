package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/address-registry/app/config"
	"github.com/address-registry/app/services"
	"github.com/address-registry/internal/search"
	"github.com/address-registry/internal/store"
)

// The worker runs the duplicate optimizer on an interval. One instance is
// enough; an overlapping run is wasteful but harmless because passes are
// idempotent.
func main() {
	loadConfig()
	if err := config.Load(viper.GetString("registry.config_path")); err != nil {
		log.Printf("Warning: cannot read registry config, using defaults: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Cannot initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting Address Registry Worker")

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURL()))
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error("Error disconnecting MongoDB", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = client.Ping(ctx, nil)
	cancel()
	if err != nil {
		logger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}

	addressStore := store.NewMongoStore(client.Database("address_registry"), logger)

	var addressIndex *search.AddressIndex
	if host := viper.GetString("meilisearch.url"); host != "" {
		addressIndex = search.NewAddressIndex(host, viper.GetString("meilisearch.master_key"), logger)
	}

	// The worker talks straight to Mongo; without a shared Redis there is
	// no API-side cache it could invalidate from here.
	var cache services.ResolveCache
	if redisURL := viper.GetString("redis.url"); redisURL != "" {
		ttl := time.Duration(config.C.Cache.TTLHours) * time.Hour
		if redisCache, err := services.NewRedisCacheService(redisURL, ttl, logger); err == nil {
			cache = redisCache
			defer redisCache.Close()
		} else {
			logger.Warn("Redis unavailable, merges will not invalidate the API cache", zap.Error(err))
		}
	}

	optimizer := services.NewOptimizerService(addressStore, cache, addressIndex, logger)

	interval := viper.GetDuration("optimizer.interval")
	logger.Info("Optimizer schedule", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	runPass(optimizer, logger)
	for {
		select {
		case <-ticker.C:
			runPass(optimizer, logger)
		case <-quit:
			logger.Info("Shutting down worker")
			return
		}
	}
}

func runPass(optimizer *services.OptimizerService, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, err := optimizer.RunOptimizationPass(ctx); err != nil {
		logger.Error("optimization pass failed", zap.Error(err))
	}
}

func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("mongo.url", "mongodb://localhost:27017/address_registry")
	viper.SetDefault("meilisearch.url", "")
	viper.SetDefault("meilisearch.master_key", "")
	viper.SetDefault("redis.url", "")
	viper.SetDefault("optimizer.interval", 6*time.Hour)
	viper.SetDefault("registry.config_path", "config/registry.yaml")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: cannot read config file: %v", err)
	}
}

func mongoURL() string {
	if env := os.Getenv("MONGO_URL"); env != "" {
		return env
	}
	return viper.GetString("mongo.url")
}
