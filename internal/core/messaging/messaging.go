package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Channels supported by the external dispatch service.
const (
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"
)

// Message is the invocation contract of the outbound dispatch collaborator.
type Message struct {
	Channel string `json:"channel"`
	To      string `json:"to"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

// Service calls the external email/WhatsApp dispatch endpoint. The concrete
// transports live behind that endpoint; this client only owns the invocation
// contract.
type Service struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewService creates a new messaging client
func NewService(baseURL, apiKey string) *Service {
	return &Service{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Dispatch posts one message to the dispatch service. A non-2xx response is
// an error, the caller decides whether that fails the enclosing action.
func (s *Service) Dispatch(ctx context.Context, msg Message) error {
	if s.baseURL == "" {
		return fmt.Errorf("message dispatch URL is not configured")
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create dispatch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("dispatch request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("dispatch service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
