package appServer

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/campushub/event-registration/config"
	repository "github.com/campushub/event-registration/internal/database/postgres"
	rediscache "github.com/campushub/event-registration/internal/database/redis"
	"github.com/campushub/event-registration/internal/service"
	"github.com/campushub/event-registration/internal/transport"
	"github.com/campushub/event-registration/internal/worker"
	"github.com/campushub/event-registration/pkg/postgres"
	"github.com/campushub/event-registration/pkg/rabbitmq"
	"github.com/campushub/event-registration/pkg/redis"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	// Database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Event cache (optional)
	var eventCache *rediscache.EventCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewRedisClient(&cfg.Redis)
		defer redisClient.Close()
		eventCache = rediscache.NewEventCache(redisClient, cfg.Cache.EventTTL)
		logrus.Info("Event cache enabled")
	} else {
		logrus.Warn("Redis disabled, event reads go straight to the database")
	}

	// Audit stream (optional)
	var auditPublisher service.AuditPublisher
	if cfg.RabbitMQ.Enabled && cfg.RabbitMQ.URL != "" {
		queue, err := rabbitmq.New(rabbitmq.Config{
			URL:       cfg.RabbitMQ.URL,
			QueueName: cfg.RabbitMQ.QueueName,
		})
		if err != nil {
			logrus.Errorf("Failed to initialize RabbitMQ: %v. Continuing without audit stream...", err)
		} else {
			defer queue.Close()
			auditPublisher = service.NewQueueAuditPublisher(queue)

			auditWorker := worker.NewAuditWorker(queue, auditRepo)
			if err := auditWorker.Start(ctx); err != nil {
				logrus.Errorf("Audit worker failed to start: %v", err)
			}
		}
	} else {
		logrus.Warn("RabbitMQ disabled, audit stream not recorded")
	}

	// Services
	authService := service.NewAuthService(userRepo, &cfg.Auth)
	eventService := service.NewEventService(eventRepo, eventCache)
	var invalidator service.CacheInvalidator
	if eventCache != nil {
		invalidator = eventCache
	}
	registrationService := service.NewRegistrationService(registrationRepo, auditPublisher, invalidator)
	registrationQueries := service.NewRegistrationQueries(registrationService, auditRepo)

	// Handlers
	authHandler := transport.NewAuthHandler(authService)
	eventHandler := transport.NewEventHandler(eventService)
	registrationHandler := transport.NewRegistrationHandler(registrationService, registrationQueries)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		handler := transport.InitRoutes(authService, authHandler, eventHandler, registrationHandler)
		if err := srv.Run(cfg, handler); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
