package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CODE-DK/nutritionist/internal/usage"
)

var errNotFound = errors.New("not found")

// accountRepo is the slice of user data the auth, AI and tips handlers use.
// The diary and profile handlers query the pool directly.
type accountRepo interface {
	UserByEmail(ctx context.Context, email string) (user, error)
	Profile(ctx context.Context, userID string) (userProfile, error)
	Tier(ctx context.Context, userID string) (usage.Tier, error)
	ChatHistory(ctx context.Context, userID string, limit int) ([]chatMessage, error)
	SaveChat(ctx context.Context, msg chatMessage) (chatMessage, error)
	ClearChat(ctx context.Context, userID string) error
	LogPhotoAnalysis(ctx context.Context, userID string, a photoAnalysis) error
}

type pgAccounts struct {
	pool *pgxpool.Pool
}

func newPGAccounts(pool *pgxpool.Pool) *pgAccounts {
	return &pgAccounts{pool: pool}
}

func (r *pgAccounts) UserByEmail(ctx context.Context, email string) (user, error) {
	rows, err := r.pool.Query(ctx, "SELECT * FROM users WHERE email = @email",
		pgx.NamedArgs{"email": email})
	if err != nil {
		return user{}, err
	}
	u, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[user])
	if errors.Is(err, pgx.ErrNoRows) {
		return user{}, errNotFound
	}
	return u, err
}

func (r *pgAccounts) Profile(ctx context.Context, userID string) (userProfile, error) {
	rows, err := r.pool.Query(ctx, "SELECT * FROM user_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return userProfile{}, err
	}
	p, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[userProfile])
	if errors.Is(err, pgx.ErrNoRows) {
		return userProfile{}, errNotFound
	}
	return p, err
}

func (r *pgAccounts) Tier(ctx context.Context, userID string) (usage.Tier, error) {
	var tier string
	err := r.pool.QueryRow(ctx, "SELECT subscription_tier FROM users WHERE id = $1", userID).Scan(&tier)
	if errors.Is(err, pgx.ErrNoRows) {
		return usage.Free, errNotFound
	}
	if err != nil {
		return usage.Free, err
	}
	if usage.Tier(tier) == usage.Premium {
		return usage.Premium, nil
	}
	return usage.Free, nil
}

// ChatHistory returns the newest limit exchanges in chronological order.
func (r *pgAccounts) ChatHistory(ctx context.Context, userID string, limit int) ([]chatMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT * FROM (
			SELECT * FROM chat_history WHERE user_id = @userID
			ORDER BY created_at DESC LIMIT @limit
		 ) recent ORDER BY created_at`,
		pgx.NamedArgs{"userID": userID, "limit": limit})
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[chatMessage])
}

func (r *pgAccounts) SaveChat(ctx context.Context, msg chatMessage) (chatMessage, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	rows, err := r.pool.Query(ctx,
		`INSERT INTO chat_history (id, user_id, message, response, tokens_used)
		 VALUES (@id, @userID, @message, @response, @tokensUsed)
		 RETURNING *`,
		pgx.NamedArgs{
			"id":         msg.ID,
			"userID":     msg.UserID,
			"message":    msg.Message,
			"response":   msg.Response,
			"tokensUsed": msg.TokensUsed,
		})
	if err != nil {
		return chatMessage{}, fmt.Errorf("insert chat message: %w", err)
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[chatMessage])
}

func (r *pgAccounts) ClearChat(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM chat_history WHERE user_id = $1", userID)
	return err
}

// LogPhotoAnalysis records a recognized dish for analytics.
func (r *pgAccounts) LogPhotoAnalysis(ctx context.Context, userID string, a photoAnalysis) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO photo_analysis_log (user_id, dish_name, confidence, calories)
		 VALUES (@userID, @dishName, @confidence, @calories)`,
		pgx.NamedArgs{
			"userID":     userID,
			"dishName":   a.DishName,
			"confidence": a.Confidence,
			"calories":   a.Calories,
		})
	if err != nil {
		return fmt.Errorf("insert photo analysis: %w", err)
	}
	return nil
}
