package tips

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/CODE-DK/nutritionist/internal/kv"
	"github.com/CODE-DK/nutritionist/internal/metabolism"
)

const (
	// DefaultHistoryWindow is how many recent history entries are excluded
	// from the candidate set.
	DefaultHistoryWindow = 30
	// DefaultHistoryCap is how many history entries are retained per user.
	DefaultHistoryCap = 100

	shownKeyPrefix   = "tips:shown:"
	historyKeyPrefix = "tips:history:"

	dateLayout = "2006-01-02"
)

// User carries the profile fields the selector needs.
type User struct {
	ID            string
	DietType      DietType
	GoalType      metabolism.GoalType
	ShowDailyTips bool
}

// ShownRecord is today's tip for one user. A record whose Date is not today
// is treated as absent.
type ShownRecord struct {
	Date      string `json:"date"`
	TipID     string `json:"tipId"`
	Dismissed bool   `json:"dismissed"`
}

// HistoryEntry is one past selection.
type HistoryEntry struct {
	TipID string `json:"tipId"`
	Date  string `json:"date"`
}

// Selector chooses and remembers the daily tip per user.
type Selector struct {
	store   kv.Store
	catalog *Catalog
	now     func() time.Time
	intn    func(n int) int
	log     zerolog.Logger
	window  int
	keep    int
	locks   kv.KeyedMutex
}

// Option customizes a Selector.
type Option func(*Selector)

// WithClock sets the source of "today". The date is taken in UTC.
func WithClock(now func() time.Time) Option {
	return func(s *Selector) { s.now = now }
}

// WithRand sets the function used to pick an index in [0, n).
func WithRand(intn func(n int) int) Option {
	return func(s *Selector) { s.intn = intn }
}

// WithLogger sets the logger used for swallowed store errors.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Selector) { s.log = l }
}

// WithHistory overrides the repetition window and the retained history size.
// Non-positive values keep the defaults.
func WithHistory(window, keep int) Option {
	return func(s *Selector) {
		if window > 0 {
			s.window = window
		}
		if keep > 0 {
			s.keep = keep
		}
	}
}

// NewSelector builds a Selector over store and catalog.
func NewSelector(store kv.Store, catalog *Catalog, opts ...Option) *Selector {
	s := &Selector{
		store:   store,
		catalog: catalog,
		now:     time.Now,
		intn:    rand.IntN,
		log:     zerolog.Nop(),
		window:  DefaultHistoryWindow,
		keep:    DefaultHistoryCap,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Selector) today() string {
	return s.now().UTC().Format(dateLayout)
}

// DailyTip returns the user's tip for today, selecting and persisting one if
// none was chosen yet. ok is false when tips are disabled, the user has no
// diet type, today's tip was dismissed, or nothing in the catalog applies.
// Store failures are logged and never returned.
func (s *Selector) DailyTip(ctx context.Context, u User) (tip Tip, ok bool) {
	if !u.ShowDailyTips || u.DietType == "" {
		return Tip{}, false
	}

	unlock := s.locks.Lock(u.ID)
	defer unlock()

	today := s.today()
	if rec, found := s.todayRecord(ctx, u.ID, today); found {
		if rec.Dismissed {
			return Tip{}, false
		}
		return s.catalog.Lookup(rec.TipID)
	}

	applicable := s.catalog.Applicable(u.DietType, u.GoalType)
	if len(applicable) == 0 {
		return Tip{}, false
	}

	history := s.history(ctx, u.ID)
	recent := make(map[string]bool, s.window)
	for _, h := range history[max(0, len(history)-s.window):] {
		recent[h.TipID] = true
	}
	candidates := slices.DeleteFunc(slices.Clone(applicable), func(t Tip) bool {
		return recent[t.ID]
	})
	if len(candidates) == 0 {
		candidates = applicable
	}

	tip = candidates[s.intn(len(candidates))]

	s.writeRecord(ctx, u.ID, ShownRecord{Date: today, TipID: tip.ID})
	history = append(history, HistoryEntry{TipID: tip.ID, Date: today})
	if len(history) > s.keep {
		history = history[len(history)-s.keep:]
	}
	s.writeHistory(ctx, u.ID, history)

	return tip, true
}

// DismissTip hides tipID for the rest of today. History is not touched.
func (s *Selector) DismissTip(ctx context.Context, userID, tipID string) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	s.writeRecord(ctx, userID, ShownRecord{Date: s.today(), TipID: tipID, Dismissed: true})
}

// History returns the retained history for userID, oldest first.
func (s *Selector) History(ctx context.Context, userID string) []HistoryEntry {
	return s.history(ctx, userID)
}

/* ─── Store access ───────────────────────────────────────────────────── */

func (s *Selector) todayRecord(ctx context.Context, userID, today string) (ShownRecord, bool) {
	raw, found, err := s.store.Get(ctx, shownKeyPrefix+userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("[tips] read today's tip")
		return ShownRecord{}, false
	}
	if !found {
		return ShownRecord{}, false
	}
	var rec ShownRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("[tips] decode today's tip")
		return ShownRecord{}, false
	}
	if rec.Date != today {
		return ShownRecord{}, false
	}
	return rec, true
}

func (s *Selector) history(ctx context.Context, userID string) []HistoryEntry {
	raw, found, err := s.store.Get(ctx, historyKeyPrefix+userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("[tips] read history")
		return nil
	}
	if !found {
		return nil
	}
	var h []HistoryEntry
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("[tips] decode history")
		return nil
	}
	return h
}

func (s *Selector) writeRecord(ctx context.Context, userID string, rec ShownRecord) {
	b, _ := json.Marshal(rec)
	if err := s.store.Set(ctx, shownKeyPrefix+userID, string(b)); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Str("tip_id", rec.TipID).Msg("[tips] write today's tip")
	}
}

func (s *Selector) writeHistory(ctx context.Context, userID string, h []HistoryEntry) {
	b, _ := json.Marshal(h)
	if err := s.store.Set(ctx, historyKeyPrefix+userID, string(b)); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("[tips] write history")
	}
}
