// Package usage enforces per-user daily quotas for the AI chat and photo
// recognition features.
package usage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/CODE-DK/nutritionist/internal/kv"
)

// ErrLimitExceeded is returned by Acquire when today's quota is used up.
var ErrLimitExceeded = errors.New("daily limit exceeded")

// Kind names a metered feature.
type Kind string

const (
	AIChat Kind = "ai_chat"
	Photo  Kind = "photo"
)

// Tier is the user's subscription level.
type Tier string

const (
	Free    Tier = "free"
	Premium Tier = "premium"
)

// Limits holds the daily quota per kind for each tier.
type Limits struct {
	Free    map[Kind]int
	Premium map[Kind]int
}

// DefaultLimits mirrors the mobile app's plan: 10 AI messages and 5 photos
// a day on free, 100 and 999 on premium.
func DefaultLimits() Limits {
	return Limits{
		Free:    map[Kind]int{AIChat: 10, Photo: 5},
		Premium: map[Kind]int{AIChat: 100, Photo: 999},
	}
}

func (l Limits) limit(tier Tier, kind Kind) int {
	if tier == Premium {
		return l.Premium[kind]
	}
	return l.Free[kind]
}

// Usage is today's consumption of one kind.
type Usage struct {
	Kind      Kind `json:"kind"`
	Current   int  `json:"current"`
	Limit     int  `json:"limit"`
	Remaining int  `json:"remaining"`
}

type counter struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Limiter counts usage per user, kind and UTC day on a kv.Store.
type Limiter struct {
	store  kv.Store
	limits Limits
	now    func() time.Time
	log    zerolog.Logger
	locks  kv.KeyedMutex
}

// NewLimiter builds a Limiter. A nil now defaults to time.Now.
func NewLimiter(store kv.Store, limits Limits, now func() time.Time, log zerolog.Logger) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{store: store, limits: limits, now: now, log: log}
}

func key(kind Kind, userID string) string {
	return "usage:" + string(kind) + ":" + userID
}

func (l *Limiter) today() string {
	return l.now().UTC().Format("2006-01-02")
}

// Stats reports today's usage. Counters from earlier days read as zero, and
// store failures read as zero too.
func (l *Limiter) Stats(ctx context.Context, userID string, tier Tier, kind Kind) Usage {
	c, _ := l.read(ctx, userID, kind)
	return l.usage(tier, kind, c.Count)
}

// Acquire consumes one unit of kind for userID. It returns ErrLimitExceeded
// without consuming when the quota is exhausted. If the store cannot be read
// or written the request is allowed.
func (l *Limiter) Acquire(ctx context.Context, userID string, tier Tier, kind Kind) (Usage, error) {
	unlock := l.locks.Lock(userID)
	defer unlock()

	c, err := l.read(ctx, userID, kind)
	if err != nil {
		return l.usage(tier, kind, 0), nil
	}

	limit := l.limits.limit(tier, kind)
	if c.Count >= limit {
		return l.usage(tier, kind, c.Count), ErrLimitExceeded
	}

	c.Count++
	l.write(ctx, userID, kind, c)
	return l.usage(tier, kind, c.Count), nil
}

// Check returns ErrLimitExceeded when today's quota is used up. It consumes
// nothing: callers that only pay for successful work follow up with Commit.
// Concurrent Check calls may all pass, so the quota can be overshot by the
// number of in-flight requests.
func (l *Limiter) Check(ctx context.Context, userID string, tier Tier, kind Kind) (Usage, error) {
	c, _ := l.read(ctx, userID, kind)
	u := l.usage(tier, kind, c.Count)
	if c.Count >= u.Limit {
		return u, ErrLimitExceeded
	}
	return u, nil
}

// Commit records one unit of kind without checking the quota.
func (l *Limiter) Commit(ctx context.Context, userID string, tier Tier, kind Kind) Usage {
	unlock := l.locks.Lock(userID)
	defer unlock()

	c, err := l.read(ctx, userID, kind)
	if err != nil {
		return l.usage(tier, kind, 0)
	}
	c.Count++
	l.write(ctx, userID, kind, c)
	return l.usage(tier, kind, c.Count)
}

func (l *Limiter) write(ctx context.Context, userID string, kind Kind, c counter) {
	b, _ := json.Marshal(c)
	if err := l.store.Set(ctx, key(kind, userID), string(b)); err != nil {
		l.log.Error().Err(err).Str("user_id", userID).Str("kind", string(kind)).Msg("[usage] write counter")
	}
}

func (l *Limiter) usage(tier Tier, kind Kind, current int) Usage {
	limit := l.limits.limit(tier, kind)
	return Usage{Kind: kind, Current: current, Limit: limit, Remaining: max(0, limit-current)}
}

// read returns today's counter. A counter from another day is reset.
func (l *Limiter) read(ctx context.Context, userID string, kind Kind) (counter, error) {
	today := l.today()
	raw, found, err := l.store.Get(ctx, key(kind, userID))
	if err != nil {
		l.log.Error().Err(err).Str("user_id", userID).Str("kind", string(kind)).Msg("[usage] read counter")
		return counter{Date: today}, err
	}
	if !found {
		return counter{Date: today}, nil
	}
	var c counter
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		l.log.Error().Err(err).Str("user_id", userID).Str("kind", string(kind)).Msg("[usage] decode counter")
		return counter{Date: today}, nil
	}
	if c.Date != today {
		return counter{Date: today}, nil
	}
	return c, nil
}
