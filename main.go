package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/CODE-DK/nutritionist/internal/config"
	"github.com/CODE-DK/nutritionist/internal/kv"
	"github.com/CODE-DK/nutritionist/internal/tips"
	"github.com/CODE-DK/nutritionist/internal/usage"
)

// setupLogger configures the global zerolog logger: human-readable output for
// local runs, JSON everywhere else.
func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Env == "local" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"})
		return
	}
	log.Logger = zerolog.New(os.Stdout).With().Str("service", "nutritionist-api").Timestamp().Logger()
}

// newKVStore builds the store selected by KV_BACKEND. The returned func
// releases backend resources.
func newKVStore(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (kv.Store, func(), error) {
	switch cfg.KV.Backend {
	case "redis":
		client := kv.NewRedisClient(kv.RedisOptions{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := kv.Ping(ctx, client); err != nil {
			client.Close()
			return nil, nil, err
		}
		store := kv.NewRedisStore(client, cfg.Redis.KeyPrefix, cfg.Redis.TTL)
		return store, func() { store.Close() }, nil
	case "memory":
		log.Warn().Msg("KV_BACKEND=memory: tip history and quotas are lost on restart")
		return kv.NewMemoryStore(), func() {}, nil
	default:
		return kv.NewPostgresStore(pool), func() {}, nil
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := newDBPool(ctx, cfg.DBURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info().Msg("DB pool ready")

	store, closeStore, err := newKVStore(ctx, cfg, pool)
	if err != nil {
		return fmt.Errorf("kv backend %s: %w", cfg.KV.Backend, err)
	}
	defer closeStore()

	catalog := tips.Default()
	if v := catalog.Validate(); !v.Valid {
		log.Warn().Strs("duplicates", v.Duplicates).Msg("tip catalog has duplicate ids")
	}

	limits := usage.Limits{
		Free:    map[usage.Kind]int{usage.AIChat: cfg.Limits.FreeChat, usage.Photo: cfg.Limits.FreePhoto},
		Premium: map[usage.Kind]int{usage.AIChat: cfg.Limits.PremiumChat, usage.Photo: cfg.Limits.PremiumPhoto},
	}

	h := &Handler{
		db:       pool,
		accounts: newPGAccounts(pool),
		tips: tips.NewSelector(store, catalog,
			tips.WithLogger(log.Logger.With().Str("component", "tips").Logger()),
			tips.WithHistory(cfg.Tips.HistoryWindow, cfg.Tips.HistoryCap)),
		catalog: catalog,
		usage:   usage.NewLimiter(store, limits, nil, log.Logger.With().Str("component", "usage").Logger()),
		ai:      newAIClient(cfg.OpenAI),
	}
	if cfg.OpenAI.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set: chat and photo analysis will fail")
	}

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("kv_backend", cfg.KV.Backend).Msg("Starting gin app")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
