package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/notewall/notewall/handlers"
	"github.com/notewall/notewall/internal/config"
	"github.com/notewall/notewall/internal/database"
	"github.com/notewall/notewall/internal/enhance"
	"github.com/notewall/notewall/internal/mailer"
	"github.com/notewall/notewall/internal/notes/handler"
	notesrepo "github.com/notewall/notewall/internal/notes/repository"
	notesvc "github.com/notewall/notewall/internal/notes/service"
	"github.com/notewall/notewall/internal/realtime"
	"github.com/notewall/notewall/internal/sessions"
	"github.com/notewall/notewall/internal/tokens"
	"github.com/notewall/notewall/internal/users"
	"github.com/notewall/notewall/pkg/logger"
	"github.com/notewall/notewall/pkg/metrics"
	"github.com/notewall/notewall/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging is controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v smtp=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.SMTP.Host != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	// Connect to Redis early: it backs the rate limiter, the refresh-session
	// store, the access-token blacklist and the cross-instance bridge.
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			sessions.SetBlacklistClient(redisClient)
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Per-client rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.Board.RateLimitRPS > 0 {
		if redisClient != nil {
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.Board.RateLimitRPS, cfg.Board.RateLimitBurst, time.Second))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.Board.RateLimitRPS, cfg.Board.RateLimitBurst))
		}
	}

	// shared runtime vars used by handlers/readiness
	var userSvc *users.Service
	var sessionsSvc *sessions.Service

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness — 200 only when the service can actually authenticate users
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["users"] = userSvc != nil
		deps["sessions"] = sessionsSvc != nil
		if userSvc == nil || sessionsSvc == nil {
			ready = false
		}
		if cfg.Redis.Host != "" {
			deps["redis"] = redisClient != nil
		} else {
			deps["redis"] = true
		}

		status := gin.H{"deps": deps, "uptime": time.Since(startTime).String()}
		if !ready {
			status["status"] = "not_ready"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		status["status"] = "ready"
		c.JSON(http.StatusOK, status)
	})

	ctx := context.Background()

	// Prefer Redis-based refresh sessions when available
	if redisClient != nil {
		sessionsSvc = sessions.NewService(sessions.NewRedisRepository(redisClient, "session:"))
		logger.Infof("Using Redis for session storage")
	}

	// Note storage: Mongo when configured, otherwise the in-memory store
	// (single-instance dev mode).
	var noteRepo notesrepo.Repository

	if cfg.MongoDB.URI != "" {
		// Retry/backoff when connecting to MongoDB to tolerate startup races
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			db := client.Database(cfg.MongoDB.Database)

			userSvc = users.NewService(users.NewMongoUserRepository(db.Collection("users")), mailer.New(cfg))

			if sessionsSvc == nil {
				sessionsSvc = sessions.NewService(sessions.NewMongoRepository(db.Collection("sessions")))
			}

			noteRepo = notesrepo.NewMongoRepo(db.Collection("notes"))
			logger.Infof("Using MongoDB for note storage")
		}
	}
	if noteRepo == nil {
		noteRepo = notesrepo.NewMemoryRepo()
		logger.Warn("MongoDB unavailable, using in-memory note storage")
	}

	noteService := notesvc.New(noteRepo)
	hub := realtime.NewHub()

	// Cross-instance fan-out over Redis pub/sub
	if redisClient != nil && cfg.Board.Channel != "" {
		bridge := realtime.NewBridge(redisClient, cfg.Board.Channel, hub)
		go bridge.Run(ctx)
		logger.Infof("Board bridge active on channel %q", cfg.Board.Channel)
	}

	// Auth routes when user + session services are available
	if userSvc != nil && sessionsSvc != nil {
		handlers.NewAuthHandler(cfg, userSvc, sessionsSvc).Register(r.Group("/api"))
	} else {
		logger.Warnf("auth handlers not registered because user/sessions services are unavailable")
	}

	api := r.Group("/api")
	if cfg.JWT.Secret != "" {
		api.Use(middleware.AuthMiddleware(tokens.NewVerifier(cfg.JWT.Secret)))
	} else {
		logger.Warn("JWT_SECRET not set, board API is unauthenticated")
	}
	handler.RegisterNoteRoutes(api, noteService, hub, enhance.NewClient(cfg.Enhance))
	realtime.RegisterBoardRoutes(api, hub)

	handlers.RegisterSwagger(r)

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting notewall service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
