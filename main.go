package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/filmatlas/filmatlas/handlers"
	"github.com/filmatlas/filmatlas/internal/config"
	"github.com/filmatlas/filmatlas/internal/database"
	"github.com/filmatlas/filmatlas/internal/movies"
	"github.com/filmatlas/filmatlas/internal/people"
	"github.com/filmatlas/filmatlas/internal/posters"
	"github.com/filmatlas/filmatlas/internal/sessions"
	"github.com/filmatlas/filmatlas/internal/tokens"
	"github.com/filmatlas/filmatlas/internal/users"
	"github.com/filmatlas/filmatlas/pkg/logger"
	"github.com/filmatlas/filmatlas/pkg/metrics"
	"github.com/filmatlas/filmatlas/pkg/middleware"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	issuer, err := tokens.NewIssuer(cfg.JWT.BearerSecret, cfg.JWT.RefreshSecret)
	if err != nil {
		logger.Fatalf("token issuer: %v", err)
	}

	ctx := context.Background()

	// Prefer Postgres when a DSN is provided; fall back to in-memory
	// repositories so the API can run without external services.
	var (
		userRepo    users.Repository
		sessionRepo sessions.Repository
		movieRepo   movies.Repository
		personRepo  people.Repository
	)
	if cfg.Database.DSN != "" {
		db, err := database.Connect(ctx, cfg.Database.DSN)
		if err != nil {
			logger.Fatalf("connect postgres: %v", err)
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			logger.Fatalf("migrate: %v", err)
		}
		userRepo = users.NewPostgresRepository(db)
		sessionRepo = sessions.NewPostgresRepository(db)
		movieRepo = movies.NewPostgresRepository(db)
		personRepo = people.NewPostgresRepository(db)
		logger.Infof("using postgres repositories")
	} else {
		logger.Warnf("DATABASE_DSN not set, using in-memory repositories")
		userRepo = users.NewMemoryRepository()
		sessionRepo = sessions.NewMemoryRepository()
		movieRepo = movies.NewMemoryRepository()
		personRepo = people.NewMemoryRepository()
	}

	var posterStore posters.Store
	if cfg.MinIO.Endpoint != "" {
		posterStore, err = posters.NewMinIOStore(posters.MinIOConfig{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			UseSSL:    cfg.MinIO.UseSSL,
			Bucket:    cfg.MinIO.Bucket,
		})
		if err != nil {
			logger.Fatalf("minio: %v", err)
		}
	} else {
		logger.Warnf("MINIO_ENDPOINT not set, storing posters in memory")
		posterStore = posters.NewMemoryStore()
	}

	userSvc := users.NewService(userRepo)
	sessionSvc := sessions.NewService(sessionRepo, issuer,
		cfg.JWT.BearerTTL, cfg.JWT.RefreshTTL, cfg.JWT.LongTTL)
	movieSvc := movies.NewService(movieRepo)
	personSvc := people.NewService(personRepo)

	reg := prometheus.NewRegistry()
	metrics.RegisterCollectors(reg)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis {
			client := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			r.Use(middleware.RedisRateLimit(client, cfg.RateLimit.RPS, cfg.RateLimit.Burst,
				time.Duration(cfg.RateLimit.WindowSeconds)*time.Second))
		} else {
			r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/ready", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ready"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	handlers.RegisterSwagger(r)

	authHandler := handlers.NewAuthHandler(userSvc, sessionSvc)
	moviesHandler := handlers.NewMoviesHandler(movieSvc)
	peopleHandler := handlers.NewPeopleHandler(personSvc)
	postersHandler := handlers.NewPostersHandler(posterStore)

	user := r.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)
	user.POST("/refresh", authHandler.Refresh)
	user.POST("/logout", authHandler.Logout)
	user.GET("/:email/profile", middleware.OptionalAuth(issuer), authHandler.GetProfile)
	user.PUT("/:email/profile", middleware.Auth(issuer), authHandler.UpdateProfile)

	r.GET("/movies/search", moviesHandler.Search)
	r.GET("/movies/data/:imdbID", moviesHandler.Details)
	r.GET("/people/:id", middleware.Auth(issuer), peopleHandler.Get)
	r.GET("/posters/:imdbID", postersHandler.Get)
	r.PUT("/posters/:imdbID", middleware.Auth(issuer), postersHandler.Put)

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
