// Package ai calls the external pathway-recommendation service. The
// service is an opaque collaborator: it receives the questionnaire
// answers and returns a list of recommended pathway names.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/adhirath/backend/models"
)

type Client struct {
	url    string
	client *http.Client // reused across calls
}

func NewClient(url string) *Client {
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type predictResponse struct {
	Recommended []string `json:"recommended_pathways"`
}

// Recommend posts the assessment answers to the service's /predict
// endpoint. Answers are keyed by question text, which is the shape the
// model expects.
func (c *Client) Recommend(ctx context.Context, answers []models.AssessmentAnswer) ([]string, error) {
	input := make(map[string]string, len(answers))
	for _, a := range answers {
		input[a.Question] = a.Answer
	}

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encoding prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling recommendation service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recommendation service returned status %d", resp.StatusCode)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding prediction response: %w", err)
	}
	return out.Recommended, nil
}
