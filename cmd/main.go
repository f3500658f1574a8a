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

	"github.com/oksasatya/course-admin/config"
	"github.com/oksasatya/course-admin/internal/application"
	"github.com/oksasatya/course-admin/internal/container"
	"github.com/oksasatya/course-admin/internal/infrastructure/broker"
	"github.com/oksasatya/course-admin/internal/infrastructure/realtime"
	"github.com/oksasatya/course-admin/internal/infrastructure/remote"
	"github.com/oksasatya/course-admin/internal/infrastructure/search"
	"github.com/oksasatya/course-admin/internal/infrastructure/tokenstore"
	"github.com/oksasatya/course-admin/internal/interface/middleware"
	"github.com/oksasatya/course-admin/internal/router"
	"github.com/oksasatya/course-admin/pkg/helpers"
	"github.com/oksasatya/course-admin/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Redis
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	// JWT
	jwtManager := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.AccessTTL)

	// Remote API and the staff session that authenticates it
	api := remote.NewClient(cfg.APIBaseURL, cfg.APITimeout, nil, logger)
	sessions := application.NewSessionService(api, tokenstore.NewFileStore(cfg.TokenStorePath), jwtManager, rdb, logger, cfg.SessionTTL)
	api.SetTokenSource(sessions)
	if err := sessions.Restore(); err != nil {
		logger.WithError(err).Warn("failed to restore persisted session")
	}

	catalog := application.NewCatalog(router.RemoteResources(api), logger)
	sessions.OnSignOut = catalog.Reset

	// Elasticsearch (optional)
	var index application.SearchIndex
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := search.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch disabled")
		} else {
			container.SetES(es)
			index = search.NewIndex(es, cfg.ESIndexPrefix, logger)
		}
	}
	searchSvc := application.NewSearchService(catalog, index, logger)
	detachIndex := searchSvc.Attach()
	defer detachIndex()

	// RabbitMQ (optional)
	hub := realtime.NewHub(32, logger)
	var queue application.QueuePublisher
	if cfg.RabbitMQURL != "" {
		pub, err := broker.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQNotificationsQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq disabled")
		} else {
			defer pub.Close()
			container.SetRabbitPub(pub)
			queue = pub
		}
	}
	catalog.Notifications.Use(hub, queue)

	// Real-time notifications
	if cfg.SocketURL != "" {
		listener := realtime.NewListener(cfg.SocketURL, sessions.Token, cfg.SocketRetry, catalog.Notifications.Receive, logger)
		go listener.Run(ctx)
	}

	// Provide singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetRedis(rdb)
	container.SetJWT(jwtManager)
	container.SetAPIClient(api)
	container.SetSessions(sessions)
	container.SetCatalog(catalog)
	container.SetBuilder(application.NewCourseBuilder(catalog, logger))
	container.SetAnalytics(application.NewAnalyticsService(catalog, api, rdb, cfg.AnalyticsCacheTTL, logger))
	container.SetSearch(searchSvc)
	container.SetHub(hub)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RealIP())
	// CORS
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))
	if cfg.Env == "development" || cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	router.InitModules(reg, router.DepsFromContainer())
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
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
	stop()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}
