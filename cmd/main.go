package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-orders-api/config"
	"github.com/oksasatya/go-user-orders-api/internal/container"
	mongoinfra "github.com/oksasatya/go-user-orders-api/internal/infrastructure/mongodb"
	handlers "github.com/oksasatya/go-user-orders-api/internal/interface/http"
	"github.com/oksasatya/go-user-orders-api/internal/interface/middleware"
	"github.com/oksasatya/go-user-orders-api/internal/router"
	"github.com/oksasatya/go-user-orders-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	// MongoDB
	if cfg.StoreDriver != "memory" {
		client, err := mongoinfra.NewClient(ctx, cfg.MongoURL, cfg.MongoConnectTimeout)
		if err != nil {
			log.Fatalf("failed to connect to mongodb: %v", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		db := client.Database(cfg.MongoDatabase)
		if err := mongoinfra.NewUserRepository(db.Collection(cfg.MongoUsersCollection)).EnsureIndexes(ctx); err != nil {
			log.Fatalf("failed to ensure indexes: %v", err)
		}
		container.SetMongoDB(db)
	} else {
		logger.Warn("STORE_DRIVER=memory; users are kept in process memory only")
	}

	// Redis (rate limiting)
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			helpers.LogError(logger, "redis unreachable; rate limiting fails open", err, nil)
		}
	}

	// Elasticsearch (optional)
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			helpers.LogError(logger, "elasticsearch disabled", err, nil)
		} else {
			if err := helpers.EnsureUsersIndex(ctx, es, cfg.ESUsersIndex); err != nil {
				helpers.LogError(logger, "failed to ensure search index", err, logrus.Fields{"index": cfg.ESUsersIndex})
			}
			container.SetES(es)
		}
	}

	// RabbitMQ (optional)
	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			helpers.LogError(logger, "rabbitmq disabled", err, logrus.Fields{"queue": cfg.RabbitMQEmailQueue})
		} else {
			defer pub.Close()
			pub.AppID = cfg.AppName
			container.SetRabbitPub(pub)
		}
	}

	// Provide infra singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetRedis(rdb)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.Recovery(logger))
	if err := middleware.TrustProxies(r, cfg.TrustedProxyList(), cfg.TrustCloudflare); err != nil {
		log.Fatalf("invalid TRUSTED_PROXIES: %v", err)
	}
	// CORS
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if cfg.AllowAllOrigins() {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins()
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	r.GET("/", handlers.Root)

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	if err := router.InitModules(reg); err != nil {
		log.Fatalf("failed to init modules: %v", err)
	}
	logger.WithField("modules", reg.RegisterAll()).Info("routes mounted")

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}
