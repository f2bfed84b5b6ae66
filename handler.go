package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/CODE-DK/nutritionist/internal/tips"
	"github.com/CODE-DK/nutritionist/internal/usage"
)

// Handler holds shared dependencies for all route handlers.
type Handler struct {
	db       *pgxpool.Pool
	accounts accountRepo // profile, tier and chat history reads; swappable in tests
	tips     *tips.Selector
	catalog  *tips.Catalog
	usage    *usage.Limiter
	ai       *aiClient
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
func queryOne[T any](pool *pgxpool.Pool, c *gin.Context, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := pool.Query(c, sql, args)
	if err != nil {
		log.Error().Err(err).Msg("[queryOne] query error")
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Debug().Err(err).Msg("[queryOne] scan error")
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](pool *pgxpool.Pool, c *gin.Context, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := pool.Query(c, sql, args)
	if err != nil {
		log.Error().Err(err).Msg("[queryMany] query error")
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Error().Err(err).Msg("[queryMany] scan error")
	}
	return results, err
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// newDBPool creates a connection pool. Simple protocol avoids "cached plan must
// not change result type" errors after migrations on pooled servers.
func newDBPool(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse DB URL: %w", err)
	}
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	router.Use(metricsMiddleware())

	// Public routes
	router.GET("/healthz", h.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/api/login", h.login)
	router.POST("/api/metabolism/calculate", h.calculateCalories)

	// Authenticated routes
	h.registerAPIRoutes(router.Group("/api", h.authMiddleware()))
}

// registerAPIRoutes registers the routes that need an authenticated user_id.
func (h *Handler) registerAPIRoutes(api *gin.RouterGroup) {
	api.GET("/profile", h.getProfile)
	api.PATCH("/profile", h.patchProfile)
	api.GET("/diary/daily", h.getDailyStats)
	api.POST("/diary/entries", h.createFoodEntry)
	api.PUT("/diary/entries/:id", h.updateFoodEntry)
	api.DELETE("/diary/entries/:id", h.deleteFoodEntry)
	api.POST("/chat", h.sendChatMessage)
	api.GET("/chat/history", h.getChatHistory)
	api.DELETE("/chat/history", h.clearChatHistory)
	api.POST("/photo/analyze", h.analyzePhoto)
	api.GET("/usage", h.getUsage)
	api.GET("/tips/daily", h.getDailyTip)
	api.POST("/tips/:id/dismiss", h.dismissTip)
	api.GET("/tips/catalog", h.getTipCatalog)
}

// health reports liveness and, when a pool is configured, database reachability.
func (h *Handler) health(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			apiError(c, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
