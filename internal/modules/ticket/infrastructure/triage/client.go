package triage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/eduticket/eduticket-api/internal/modules/ticket/domain"
)

// Client calls the AI-triage endpoint. The timeout is deliberately short:
// triage is optional enrichment and must never hold up ticket creation,
// so callers treat timeout and error identically to "no suggestion".
type Client struct {
	endpoint string
	http     *http.Client
	logger   zerolog.Logger
}

func NewClient(endpoint string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "triage_client").Logger(),
	}
}

type triageRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// The endpoint answers in snake_case; normalization into the typed
// suggestion happens here and nowhere else.
type triageResponse struct {
	SuggestedType     string `json:"suggested_type"`
	SuggestedPriority string `json:"suggested_priority"`
	Analysis          string `json:"analysis"`
}

func (c *Client) Suggest(ctx context.Context, title, description string, ticketType domain.Type) (*domain.TriageSuggestion, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("triage endpoint not configured")
	}

	payload, err := json.Marshal(triageRequest{
		Title:       title,
		Description: description,
		Type:        string(ticketType),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("triage endpoint returned %d", resp.StatusCode)
	}

	var body triageResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	suggestion := &domain.TriageSuggestion{Analysis: body.Analysis}
	if t := domain.Type(body.SuggestedType); validType(t) {
		suggestion.SuggestedType = t
	}
	if p := domain.Priority(body.SuggestedPriority); validPriority(p) {
		suggestion.SuggestedPriority = p
	}
	return suggestion, nil
}

func validType(t domain.Type) bool {
	switch t {
	case domain.TypeQuestion, domain.TypeBug, domain.TypeFeature, domain.TypeGeneral:
		return true
	}
	return false
}

func validPriority(p domain.Priority) bool {
	switch p {
	case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh, domain.PriorityUrgent:
		return true
	}
	return false
}
