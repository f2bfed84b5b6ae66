package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/CODE-DK/nutritionist/internal/metabolism"
	"github.com/CODE-DK/nutritionist/internal/tips"
	"github.com/CODE-DK/nutritionist/internal/usage"
)

// tipUser maps a stored profile onto the selector's view of a user. Unknown
// diet or goal values are treated as unset.
func tipUser(p userProfile) tips.User {
	u := tips.User{ID: p.UserID, ShowDailyTips: p.ShowDailyTips}
	if p.DietType != nil {
		if d, err := tips.ParseDietType(*p.DietType); err == nil {
			u.DietType = d
		}
	}
	if p.GoalType != nil {
		if g, err := metabolism.ParseGoalType(*p.GoalType); err == nil {
			u.GoalType = g
		}
	}
	return u
}

// getDailyTip returns today's tip for the caller, or 204 when there is none
// (tips disabled, no diet set, dismissed today, or nothing applicable).
// GET /api/tips/daily.
func (h *Handler) getDailyTip(c *gin.Context) {
	userID := c.GetString("user_id")

	p, err := h.accounts.Profile(c, userID)
	if err != nil {
		log.Debug().Err(err).Str("user_id", userID).Msg("[getDailyTip] no profile")
		c.Status(http.StatusNoContent)
		return
	}

	tip, ok := h.tips.DailyTip(c, tipUser(p))
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	tipsServed.WithLabelValues(string(tip.Category)).Inc()
	c.JSON(http.StatusOK, tip)
}

// dismissTip hides today's tip until tomorrow. Always 204; a stale or unknown
// id is ignored. POST /api/tips/:id/dismiss.
func (h *Handler) dismissTip(c *gin.Context) {
	h.tips.DismissTip(c, c.GetString("user_id"), c.Param("id"))
	tipsDismissed.Inc()
	c.Status(http.StatusNoContent)
}

// getTipCatalog reports catalog size per category and duplicate ids.
// GET /api/tips/catalog.
func (h *Handler) getTipCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"stats":      h.catalog.Stats(),
		"validation": h.catalog.Validate(),
	})
}

// getUsage returns today's consumption of every metered feature.
// GET /api/usage.
func (h *Handler) getUsage(c *gin.Context) {
	userID := c.GetString("user_id")
	tier := h.tierFor(c, userID)

	c.JSON(http.StatusOK, gin.H{
		"tier":    tier,
		"ai_chat": h.usage.Stats(c, userID, tier, usage.AIChat),
		"photo":   h.usage.Stats(c, userID, tier, usage.Photo),
	})
}
