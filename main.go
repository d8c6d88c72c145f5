package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/cart-api/backup"
	"github.com/junaidrashid-git/cart-api/config"
	"github.com/junaidrashid-git/cart-api/events"
	"github.com/junaidrashid-git/cart-api/middleware"
	"github.com/junaidrashid-git/cart-api/routes"
	"github.com/junaidrashid-git/cart-api/services"
	"github.com/junaidrashid-git/cart-api/store"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogger(cfg.LogLevel)
	log.Info().Str("driver", cfg.DBDriver).Msg("starting application")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := initStore(ctx, cfg)

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, product cache will fall through")
		}
		db = store.WithProducts(db, store.NewCachedProducts(db.Products(), rdb, cfg.RedisTTL))
		log.Info().Str("addr", cfg.RedisAddr).Msg("product cache enabled")
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("cart events enabled")
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("failed to create upload directory")
	}
	if cfg.BackupDir != "" {
		scheduler := &backup.Scheduler{
			SrcDir:    cfg.UploadDir,
			BackupDir: cfg.BackupDir,
			Retention: cfg.BackupRetention,
			Hour:      2,
		}
		go scheduler.Run(ctx)
	}

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.ErrorHandler())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}))
	// Upload requests are checked against UploadMaxBytes again in the handler.
	r.Use(middleware.BodyLimit(cfg.BodyLimitBytes + cfg.UploadMaxBytes))

	routes.SetupRoutes(r, routes.Dependencies{
		Carts:          services.NewCartService(db, publisher),
		Products:       services.NewProductService(db.Products()),
		UploadDir:      cfg.UploadDir,
		UploadMaxBytes: cfg.UploadMaxBytes,
		UploadLimiter:  middleware.NewIPRateLimiter(cfg.UploadRate, cfg.UploadBurst),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if err := publisher.Close(); err != nil {
		log.Error().Err(err).Msg("closing event publisher")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := db.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("closing store")
	}
}

func setupLogger(level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// initStore opens the configured backend, failing the process when it is unreachable.
func initStore(ctx context.Context, cfg *config.Config) store.Store {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	db, err := store.Open(connectCtx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("database connection failed")
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("database connected")
	return db
}
