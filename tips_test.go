package main

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CODE-DK/nutritionist/internal/metabolism"
	"github.com/CODE-DK/nutritionist/internal/tips"
)

func TestDailyTip_StableThenDismissed(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.profiles[testUserID] = completeProfile()

	w := env.do("GET", "/api/tips/daily", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var first tips.Tip
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	require.True(t, first.AppliesTo(tips.Keto, metabolism.LoseWeight))

	w = env.do("GET", "/api/tips/daily", "")
	require.Equal(t, http.StatusOK, w.Code)
	var again tips.Tip
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &again))
	require.Equal(t, first.ID, again.ID)

	w = env.do("POST", "/api/tips/"+first.ID+"/dismiss", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do("GET", "/api/tips/daily", "")
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestDailyTip_NoContent(t *testing.T) {
	t.Run("no profile", func(t *testing.T) {
		env := newTestEnv(t)
		w := env.do("GET", "/api/tips/daily", "")
		require.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("tips disabled", func(t *testing.T) {
		env := newTestEnv(t)
		p := completeProfile()
		p.ShowDailyTips = false
		env.accounts.profiles[testUserID] = p
		w := env.do("GET", "/api/tips/daily", "")
		require.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("no diet", func(t *testing.T) {
		env := newTestEnv(t)
		p := completeProfile()
		p.DietType = nil
		env.accounts.profiles[testUserID] = p
		w := env.do("GET", "/api/tips/daily", "")
		require.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestTipUser_IgnoresUnknownValues(t *testing.T) {
	p := completeProfile()
	p.DietType = ptr("carnivore")
	p.GoalType = ptr("bulk")

	u := tipUser(p)
	require.Equal(t, testUserID, u.ID)
	require.Empty(t, u.DietType)
	require.Empty(t, u.GoalType)
	require.True(t, u.ShowDailyTips)
}

func TestTipCatalog(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("GET", "/api/tips/catalog", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Stats      tips.Stats      `json:"stats"`
		Validation tips.Validation `json:"validation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Validation.Valid)
	require.Equal(t, len(tips.Default().All()), resp.Stats.Total)
}

func TestUsage_ReportsBothKinds(t *testing.T) {
	env := newTestEnv(t)
	env.openai.respond(http.StatusOK, "ok")
	require.Equal(t, http.StatusOK, env.do("POST", "/api/chat", `{"message":"hi"}`).Code)

	w := env.do("GET", "/api/usage", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{
		"tier": "free",
		"ai_chat": {"kind": "ai_chat", "current": 1, "limit": 10, "remaining": 9},
		"photo":   {"kind": "photo",   "current": 0, "limit": 5,  "remaining": 5}
	}`, w.Body.String())
}
