package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CODE-DK/nutritionist/internal/usage"
)

func TestChat_Success(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.profiles[testUserID] = completeProfile()
	env.openai.respond(http.StatusOK, "Try grilled salmon with greens 🐟🥗 (about 450 kcal).")

	w := env.do("POST", "/api/chat", `{"message":"  What should I eat for dinner?  "}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		ID         string      `json:"id"`
		Message    string      `json:"message"`
		TokensUsed int         `json:"tokens_used"`
		Usage      usage.Usage `json:"usage"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "Try grilled salmon with greens 🐟🥗 (about 450 kcal).", resp.Message)
	require.Equal(t, 42, resp.TokensUsed)
	require.Equal(t, 1, resp.Usage.Current)
	require.Equal(t, 9, resp.Usage.Remaining)
	require.NotEmpty(t, resp.ID)

	req, _ := env.openai.request()
	require.Equal(t, "gpt-4o-mini", req.Model)
	require.Len(t, req.Messages, 2)
	require.Equal(t, "system", req.Messages[0].Role)
	require.Contains(t, req.Messages[0].Content, "goal: lose_weight")
	require.Contains(t, req.Messages[0].Content, "daily calorie goal: 2045 kcal")
	require.Equal(t, "What should I eat for dinner?", req.Messages[1].Content)

	saved := env.accounts.chats[testUserID]
	require.Len(t, saved, 1)
	require.Equal(t, 42, saved[0].TokensUsed)
}

// TestChat_ReplaysRecentHistory verifies only the newest exchanges are sent,
// oldest first, each as a user/assistant pair.
func TestChat_ReplaysRecentHistory(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 12; i++ {
		env.accounts.chats[testUserID] = append(env.accounts.chats[testUserID], chatMessage{
			UserID: testUserID, Message: fmt.Sprintf("q%d", i), Response: fmt.Sprintf("a%d", i),
		})
	}
	env.openai.respond(http.StatusOK, "ok")

	w := env.do("POST", "/api/chat", `{"message":"next"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	req, _ := env.openai.request()
	require.Len(t, req.Messages, 1+2*chatContextExchanges+1)
	require.Equal(t, dietitianSystemPrompt, req.Messages[0].Content)
	require.Len(t, req.Messages, 12)
	require.Equal(t, "q7", req.Messages[1].Content)
	require.Equal(t, "assistant", req.Messages[2].Role)
	require.Equal(t, "a7", req.Messages[2].Content)
	require.Equal(t, "a11", req.Messages[len(req.Messages)-2].Content)
	require.Equal(t, "next", req.Messages[len(req.Messages)-1].Content)
}

func TestChat_DailyLimit(t *testing.T) {
	env := newTestEnv(t)
	env.openai.respond(http.StatusOK, "ok")

	for i := 0; i < 10; i++ {
		w := env.do("POST", "/api/chat", `{"message":"hi"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := env.do("POST", "/api/chat", `{"message":"hi"}`)
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	_, calls := env.openai.request()
	require.Equal(t, 10, calls)
}

func TestChat_PremiumNotLimitedAtFreeQuota(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.tiers[testUserID] = usage.Premium
	env.openai.respond(http.StatusOK, "ok")

	for i := 0; i < 11; i++ {
		w := env.do("POST", "/api/chat", `{"message":"hi"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestChat_InvalidMessage(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{`{"message":"   "}`, `{}`, `not json`} {
		w := env.do("POST", "/api/chat", body)
		require.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	_, calls := env.openai.request()
	require.Zero(t, calls)
	require.Equal(t, 0, env.handler.usage.Stats(t.Context(), testUserID, usage.Free, usage.AIChat).Current)
}

func TestChat_UpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	env.openai.respond(http.StatusInternalServerError, "")

	w := env.do("POST", "/api/chat", `{"message":"hi"}`)
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Empty(t, env.accounts.chats[testUserID])
}

func TestChatHistory_ListAndClear(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		env.accounts.chats[testUserID] = append(env.accounts.chats[testUserID], chatMessage{
			ID: fmt.Sprintf("m%d", i), UserID: testUserID, Message: fmt.Sprintf("q%d", i),
		})
	}

	w := env.do("GET", "/api/chat/history?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got []chatMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	require.Equal(t, "q1", got[0].Message)
	require.Equal(t, "q2", got[1].Message)

	w = env.do("GET", "/api/chat/history?limit=zero", "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do("DELETE", "/api/chat/history", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do("GET", "/api/chat/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())
}
