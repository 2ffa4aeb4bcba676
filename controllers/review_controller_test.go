package controllers_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitReview(t *testing.T) {
	app, db := setupApp(t)
	_, token := createTestUser(t, db)

	resp := doRequest(t, app, "POST", "/api/reviews/submit", token, map[string]interface{}{
		"name":     "Happy Parent",
		"rating":   5,
		"feedback": "My kid loves the pathways.",
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestSubmitReviewValidation(t *testing.T) {
	app, db := setupApp(t)
	_, token := createTestUser(t, db)

	resp := doRequest(t, app, "POST", "/api/reviews/submit", token, map[string]interface{}{
		"name": "No Feedback", "rating": 4,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, app, "POST", "/api/reviews/submit", token, map[string]interface{}{
		"name": "Bad Rating", "rating": 9, "feedback": "meh",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListReviewsIsPublicAndLimited(t *testing.T) {
	app, db := setupApp(t)
	_, token := createTestUser(t, db)

	for i := 0; i < 12; i++ {
		resp := doRequest(t, app, "POST", "/api/reviews/submit", token, map[string]interface{}{
			"name": "Reviewer", "rating": 4, "feedback": "Nice.",
		})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	resp := doRequest(t, app, "GET", "/api/reviews", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := decodeBody(t, resp)
	reviews := result["reviews"].([]interface{})
	assert.Len(t, reviews, 10)
}
