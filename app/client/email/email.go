package email

import (
	"agencychat/app/config"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/samber/oops"
)

const maxErrorBody = 512

type Client struct {
	endpoint   string
	apiKey     string
	from       string
	to         []string
	httpClient *http.Client
}

type message struct {
	From    string            `json:"from"`
	To      []string          `json:"to"`
	Subject string            `json:"subject"`
	Text    string            `json:"text"`
	Headers map[string]string `json:"headers,omitempty"`
}

func New(cfg config.Email) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		from:     cfg.From,
		to:       cfg.To,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendUrgent emails the alert to every configured recipient.
func (c *Client) SendUrgent(ctx context.Context, subject, body, source string) error {
	errs := oops.In("email").With("endpoint", c.endpoint, "source", source)

	payload, err := json.Marshal(message{
		From:    c.from,
		To:      c.to,
		Subject: subject,
		Text:    body,
		Headers: map[string]string{"X-Chat-Source": source},
	})
	if err != nil {
		return errs.Wrapf(err, "failed to marshal message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return errs.Wrapf(err, "failed to create request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.Wrapf(err, "failed to send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errs.With("status", resp.StatusCode).Errorf("email API error (status %d): %s", resp.StatusCode, respBody)
	}

	return nil
}
