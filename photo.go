package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/CODE-DK/nutritionist/internal/usage"
)

// lowConfidence is the cut-off below which the client should ask the user to
// confirm the dish.
const lowConfidence = 0.3

// maxImageBytes bounds the decoded upload. maxPhotoBodyBytes bounds the JSON
// request carrying it as base64.
const (
	maxImageBytes     = 8 << 20
	maxPhotoBodyBytes = maxImageBytes/3*4 + 64<<10
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

const foodRecognitionPrompt = `Analyze this photo of food and return JSON describing the dish.

RULES:
1. If there are several dishes on one plate, sum their calories
2. Assume typical home portion sizes
3. Be conservative: overestimate calories slightly rather than underestimate
4. If unsure, lower confidence but still give an estimate
5. The dish name must be specific and readable ("Oatmeal with banana and nuts", not "Food")

RESPONSE FORMAT (strict JSON, no markdown):
{
  "dish_name": "Dish name",
  "calories": 450,
  "protein": 25,
  "carbs": 55,
  "fat": 12,
  "confidence": 0.85,
  "reasoning": "Short explanation: ~200 g chicken breast (220 kcal), ~150 g buckwheat (180 kcal), vegetables ~50 kcal"
}

CONFIDENCE SCALE:
- 0.9-1.0: dish clearly visible, standard portion
- 0.7-0.9: clearly visible, some doubt about the portion size
- 0.5-0.7: dish recognizable, portion size unclear
- 0.3-0.5: hard to tell the dish or the portion
- <0.3: unclear what is in the photo

Even when confidence is low, give your best estimate. The user can edit it.`

// photoAnalysis is the recognized dish returned to the client.
type photoAnalysis struct {
	DishName      string  `json:"dish_name"`
	Calories      int     `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbs         float64 `json:"carbs"`
	Fat           float64 `json:"fat"`
	Confidence    float64 `json:"confidence"`
	Reasoning     string  `json:"reasoning"`
	LowConfidence bool    `json:"low_confidence"`
}

// photoReply is the model's raw answer. Calories is a pointer so a missing
// field is told apart from zero.
type photoReply struct {
	DishName   string   `json:"dish_name"`
	Calories   *float64 `json:"calories"`
	Protein    float64  `json:"protein"`
	Carbs      float64  `json:"carbs"`
	Fat        float64  `json:"fat"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}

var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

// parsePhotoAnalysis extracts the JSON object from the model's reply, which
// may be wrapped in markdown, and clamps every figure to a sane range.
// Fractional calories are rounded half up.
func parsePhotoAnalysis(content string) (photoAnalysis, error) {
	raw := jsonObject.FindString(content)
	if raw == "" {
		return photoAnalysis{}, errors.New("no JSON object in response")
	}

	var r photoReply
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return photoAnalysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	if strings.TrimSpace(r.DishName) == "" {
		return photoAnalysis{}, errors.New("analysis has no dish_name")
	}
	if r.Calories == nil {
		return photoAnalysis{}, errors.New("analysis has no calories")
	}

	a := photoAnalysis{
		DishName:   r.DishName,
		Calories:   int(math.Floor(min(max(*r.Calories, 0), 5000) + 0.5)),
		Protein:    min(max(r.Protein, 0), 500),
		Carbs:      min(max(r.Carbs, 0), 500),
		Fat:        min(max(r.Fat, 0), 500),
		Confidence: min(max(r.Confidence, 0), 1),
		Reasoning:  r.Reasoning,
	}
	a.LowConfidence = a.Confidence < lowConfidence
	return a, nil
}

// analyzePhoto sends a base64 food photo to the vision model and returns the
// estimated dish. POST /api/photo/analyze. Returns 429 once the daily photo
// quota is spent. A photo only counts against the quota once it has been
// recognized.
func (h *Handler) analyzePhoto(c *gin.Context) {
	userID := c.GetString("user_id")

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoBodyBytes)
	var body struct {
		Image     string `json:"image"`
		MediaType string `json:"media_type"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apiError(c, http.StatusRequestEntityTooLarge, "image too large")
			return
		}
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Image == "" {
		apiError(c, http.StatusBadRequest, "image is required")
		return
	}
	if body.MediaType == "" {
		body.MediaType = "image/jpeg"
	}
	if !allowedImageTypes[body.MediaType] {
		apiError(c, http.StatusBadRequest, "media_type must be one of: image/jpeg, image/png, image/webp")
		return
	}
	decoded, err := base64.StdEncoding.DecodeString(body.Image)
	if err != nil {
		apiError(c, http.StatusBadRequest, "image must be base64 encoded")
		return
	}
	if len(decoded) > maxImageBytes {
		apiError(c, http.StatusRequestEntityTooLarge, "image too large")
		return
	}

	tier := h.tierFor(c, userID)
	if quota, err := h.usage.Check(c, userID, tier, usage.Photo); errors.Is(err, usage.ErrLimitExceeded) {
		limitExceeded.WithLabelValues(string(usage.Photo)).Inc()
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "daily photo limit reached",
			"code":  "PHOTO_LIMIT_EXCEEDED",
			"usage": quota,
		})
		return
	}

	messages := []openAIMessage{{
		Role: "user",
		Content: []openAIContentPart{
			{Type: "image_url", ImageURL: &openAIImageURL{URL: "data:" + body.MediaType + ";base64," + body.Image}},
			{Type: "text", Text: foodRecognitionPrompt},
		},
	}}

	reply, err := h.ai.complete(c.Request.Context(), messages, 0, true)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("[analyzePhoto] OpenAI error")
		aiRequests.WithLabelValues("photo", "error").Inc()
		apiError(c, http.StatusBadGateway, "AI service unavailable")
		return
	}

	analysis, err := parsePhotoAnalysis(reply.Content)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("[analyzePhoto] unusable AI response")
		aiRequests.WithLabelValues("photo", "error").Inc()
		apiError(c, http.StatusBadGateway, "could not analyze photo")
		return
	}
	aiRequests.WithLabelValues("photo", "ok").Inc()

	h.usage.Commit(c, userID, tier, usage.Photo)
	if err := h.accounts.LogPhotoAnalysis(c, userID, analysis); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("[analyzePhoto] analysis log write failed")
	}

	log.Info().Str("user_id", userID).Str("dish", analysis.DishName).
		Float64("confidence", analysis.Confidence).Msg("[analyzePhoto] recognized")
	c.JSON(http.StatusOK, analysis)
}
