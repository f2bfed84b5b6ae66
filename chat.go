package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/CODE-DK/nutritionist/internal/usage"
)

const (
	// chatContextExchanges is how many stored exchanges (two messages each)
	// are replayed to the model ahead of a new message: ten messages.
	chatContextExchanges = 5
	defaultHistoryLimit  = 50
	maxHistoryLimit      = 200
	maxChatMessageLen    = 2000
)

const dietitianSystemPrompt = `You are an experienced personal dietitian and nutritionist with deep knowledge of healthy eating, food calorie content and a healthy lifestyle.

Your tasks:
- Answer questions about calories, food composition and nutritional value
- Help build meal plans that fit the user's goals
- Give recommendations on healthy eating
- Be friendly, motivating and supportive

Rules:
- Give concrete and accurate calorie figures, always in kcal
- Use plain language without jargon
- Add emoji for friendliness (🥗🍎🥑🐟🥩🍳 etc.)
- Keep answers short (2-4 sentences) but informative
- If you are not sure about exact figures, say so

Not medical advice: remind the user that your recommendations do not replace a doctor's consultation.`

// buildDietitianPrompt appends whatever the profile knows about the user to
// the base prompt.
func buildDietitianPrompt(p userProfile) string {
	var facts []string
	if p.Gender != nil {
		facts = append(facts, "sex: "+*p.Gender)
	}
	if p.Age != nil {
		facts = append(facts, fmt.Sprintf("age: %d", *p.Age))
	}
	if p.HeightCM != nil {
		facts = append(facts, fmt.Sprintf("height: %d cm", *p.HeightCM))
	}
	if p.WeightKG != nil {
		facts = append(facts, fmt.Sprintf("weight: %.1f kg", *p.WeightKG))
	}
	if p.TargetWeightKG != nil {
		facts = append(facts, fmt.Sprintf("target weight: %.1f kg", *p.TargetWeightKG))
	}
	if p.ActivityLevel != nil {
		facts = append(facts, "activity level: "+*p.ActivityLevel)
	}
	if p.GoalType != nil {
		facts = append(facts, "goal: "+*p.GoalType)
	}
	if p.DietType != nil {
		facts = append(facts, "diet: "+*p.DietType)
	}
	if p.DailyCalorieGoal > 0 {
		facts = append(facts, fmt.Sprintf("daily calorie goal: %d kcal", p.DailyCalorieGoal))
	}
	if len(facts) == 0 {
		return dietitianSystemPrompt
	}
	return dietitianSystemPrompt + "\n\nAbout the user:\n- " + strings.Join(facts, "\n- ")
}

// tierFor looks up the caller's subscription tier. Lookup failures fall back
// to free.
func (h *Handler) tierFor(c *gin.Context, userID string) usage.Tier {
	tier, err := h.accounts.Tier(c, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("[tierFor] defaulting to free")
		return usage.Free
	}
	return tier
}

// sendChatMessage forwards the message to the AI dietitian with recent
// history and the user's profile as context, then stores the exchange.
// POST /api/chat. Returns 429 once the daily ai_chat quota is spent.
func (h *Handler) sendChatMessage(c *gin.Context) {
	userID := c.GetString("user_id")

	var body struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	body.Message = strings.TrimSpace(body.Message)
	if body.Message == "" {
		apiError(c, http.StatusBadRequest, "message is required")
		return
	}
	if len(body.Message) > maxChatMessageLen {
		apiError(c, http.StatusBadRequest, fmt.Sprintf("message must be at most %d characters", maxChatMessageLen))
		return
	}

	quota, err := h.usage.Acquire(c, userID, h.tierFor(c, userID), usage.AIChat)
	if errors.Is(err, usage.ErrLimitExceeded) {
		limitExceeded.WithLabelValues(string(usage.AIChat)).Inc()
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "daily AI chat limit reached", "usage": quota})
		return
	}

	prompt := dietitianSystemPrompt
	if p, err := h.accounts.Profile(c, userID); err == nil {
		prompt = buildDietitianPrompt(p)
	}

	history, err := h.accounts.ChatHistory(c, userID, chatContextExchanges)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("[sendChatMessage] history unavailable")
		history = nil
	}

	messages := make([]openAIMessage, 0, 2+2*len(history))
	messages = append(messages, openAIMessage{Role: "system", Content: prompt})
	for _, m := range history {
		messages = append(messages,
			openAIMessage{Role: "user", Content: m.Message},
			openAIMessage{Role: "assistant", Content: m.Response})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: body.Message})

	reply, err := h.ai.complete(c.Request.Context(), messages, h.ai.temperature, false)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("[sendChatMessage] OpenAI error")
		aiRequests.WithLabelValues("chat", "error").Inc()
		apiError(c, http.StatusBadGateway, "AI service unavailable")
		return
	}
	aiRequests.WithLabelValues("chat", "ok").Inc()

	saved, err := h.accounts.SaveChat(c, chatMessage{
		UserID:     userID,
		Message:    body.Message,
		Response:   reply.Content,
		TokensUsed: reply.TotalTokens,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("[sendChatMessage] failed to store exchange")
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          saved.ID,
		"message":     reply.Content,
		"tokens_used": reply.TotalTokens,
		"usage":       quota,
	})
}

// getChatHistory returns stored exchanges oldest first.
// GET /api/chat/history?limit=N (default 50, max 200).
func (h *Handler) getChatHistory(c *gin.Context) {
	userID := c.GetString("user_id")

	limit := defaultHistoryLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			apiError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	history, err := h.accounts.ChatHistory(c, userID, limit)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch chat history")
		return
	}
	if history == nil {
		history = []chatMessage{}
	}
	c.JSON(http.StatusOK, history)
}

// clearChatHistory deletes every stored exchange for the caller.
// DELETE /api/chat/history.
func (h *Handler) clearChatHistory(c *gin.Context) {
	userID := c.GetString("user_id")
	if err := h.accounts.ClearChat(c, userID); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to clear chat history")
		return
	}
	c.Status(http.StatusNoContent)
}
