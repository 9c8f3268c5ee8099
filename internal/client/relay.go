package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chivis/survey-relay/internal/types"
)

const SubmitPath = "/api/submit-form"

// RelayError is a non-200 answer from the relay.
type RelayError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *RelayError) Error() string {
	msg := fmt.Sprintf("relay returned status %d", e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

// RelayClient posts finished questionnaires to the submission relay.
type RelayClient struct {
	baseURL string
	origin  string
	client  *http.Client
}

// NewRelayClient creates a client for the relay at baseURL. The base URL is
// also sent as Origin, as a browser served from the relay would.
func NewRelayClient(baseURL string, timeout time.Duration) (*RelayClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("relay base URL is required")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("relay base URL must start with http:// or https://")
	}
	return &RelayClient{
		baseURL: baseURL,
		origin:  baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (rc *RelayClient) Submit(ctx context.Context, record types.AnswerRecord) (*types.SubmitResponse, error) {
	jsonBody, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rc.baseURL+SubmitPath, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Origin", rc.origin)

	resp, err := rc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		relayErr := &RelayError{StatusCode: resp.StatusCode}
		var envelope types.ErrorResponse
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != "" {
			relayErr.Message = envelope.Error
			relayErr.Details = envelope.Details
		} else {
			relayErr.Message = strings.TrimSpace(string(body))
		}
		return nil, relayErr
	}

	var submitResp types.SubmitResponse
	if err := json.Unmarshal(body, &submitResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !submitResp.Success {
		return nil, fmt.Errorf("relay did not report success")
	}
	return &submitResp, nil
}
