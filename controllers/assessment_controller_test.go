package controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/adhirath/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleQuestions = []map[string]string{
	{"question": "Verbal IQ - Spoken Language", "answer": "Fluent"},
	{"question": "Learning Ability - Style", "answer": "Visual"},
}

func TestSubmitAssessmentWithRecommendations(t *testing.T) {
	app, db := setupApp(t)
	user, token := createTestUser(t, db)

	resp := doRequest(t, app, "POST", "/api/assessment/submit", token, map[string]interface{}{
		"questions":              sampleQuestions,
		"pathwayRecommendations": []string{"Speech Therapy"},
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	result := decodeBody(t, resp)
	payload := result["assessment"].(map[string]interface{})
	assert.Equal(t, float64(len(sampleQuestions)), payload["totalScore"])

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, []string{"Speech Therapy"}, []string(fresh.PathwayRecommendations))
}

func TestSubmitAssessmentFallsBackToAIService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"recommended_pathways": []string{"Guided Learning Support", "Speech Therapy"},
		})
	}))
	defer server.Close()

	app, db := setupAppWithAI(t, server.URL)
	user, token := createTestUser(t, db)

	resp := doRequest(t, app, "POST", "/api/assessment/submit", token, map[string]interface{}{
		"questions": sampleQuestions,
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Len(t, []string(fresh.PathwayRecommendations), 2)
}

func TestSubmitAssessmentRequiresQuestions(t *testing.T) {
	app, db := setupApp(t)
	_, token := createTestUser(t, db)

	resp := doRequest(t, app, "POST", "/api/assessment/submit", token, map[string]interface{}{
		"pathwayRecommendations": []string{"Speech Therapy"},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAssessmentHistory(t *testing.T) {
	app, db := setupApp(t)
	_, token := createTestUser(t, db)

	for i := 0; i < 2; i++ {
		resp := doRequest(t, app, "POST", "/api/assessment/submit", token, map[string]interface{}{
			"questions":              sampleQuestions,
			"pathwayRecommendations": []string{"Speech Therapy"},
		})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	resp := doRequest(t, app, "GET", "/api/assessment/history", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := decodeBody(t, resp)
	assessments := result["assessments"].([]interface{})
	assert.Len(t, assessments, 2)
}

func TestGetAssessmentScopedToUser(t *testing.T) {
	app, db := setupApp(t)
	_, token := createTestUser(t, db)
	_, otherToken := createTestUser(t, db)

	resp := doRequest(t, app, "POST", "/api/assessment/submit", token, map[string]interface{}{
		"questions":              sampleQuestions,
		"pathwayRecommendations": []string{"Speech Therapy"},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)["assessment"].(map[string]interface{})
	id := int(created["id"].(float64))

	resp = doRequest(t, app, "GET", "/api/assessment/"+strconv.Itoa(id), otherToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, "another user's assessment is invisible")

	resp = doRequest(t, app, "GET", "/api/assessment/"+strconv.Itoa(id), token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
