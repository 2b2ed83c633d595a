package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// BaseURL is the Resend API base URL.
	BaseURL = "https://api.resend.com"
)

// Client is a minimal HTTP client for the Resend transactional email API.
type Client struct {
	httpClient *http.Client
	apiKey     string
	from       string
	debug      bool
}

// NewClient constructs a new Resend client with sane defaults.
func NewClient(apiKey, from string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiKey:     apiKey,
		from:       from,
		debug:      os.Getenv("ENV") == "development",
	}
}

// Send delivers a single email and returns the provider message id.
// A non-2xx response is returned as an error; delivery itself is not
// guaranteed by a successful send.
func (c *Client) Send(ctx context.Context, email *Email) (string, error) {
	if email.From == "" {
		email.From = c.from
	}

	body, err := json.Marshal(email)
	if err != nil {
		return "", fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, BaseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("resend request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if c.debug {
		log.Debug().
			Int("status", resp.StatusCode).
			Str("to", firstRecipient(email.To)).
			Msg("resend response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr ErrorResponse
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Message != "" {
			return "", fmt.Errorf("resend error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("resend error: status %d", resp.StatusCode)
	}

	var sent SendResponse
	if err := json.Unmarshal(respBody, &sent); err != nil {
		return "", fmt.Errorf("decode resend response: %w", err)
	}
	return sent.ID, nil
}

func firstRecipient(to []string) string {
	if len(to) == 0 {
		return ""
	}
	return to[0]
}
