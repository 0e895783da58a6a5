package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client sends transactional email through the Resend HTTP API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewClient creates a new email client instance
func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Logger:     logger,
	}
}

// Message is a single outbound email.
type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Send delivers a single message. One attempt, no retry; callers that need
// at-least-once semantics queue the send.
func (c *Client) Send(msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/emails", c.BaseURL), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.Error("Email send request failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.Logger.Error("Failed to read email send response", zap.Error(err))
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if jsonErr := json.Unmarshal(respBody, &errResp); jsonErr == nil && errResp.Message != "" {
			c.Logger.Error("Email send rejected",
				zap.String("name", errResp.Name),
				zap.String("message", errResp.Message))
			return fmt.Errorf("email send failed: %s - %s", errResp.Name, errResp.Message)
		}
		c.Logger.Error("Email send failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)))
		return fmt.Errorf("email send failed: %d %s", resp.StatusCode, string(respBody))
	}

	var sent sendResponse
	if err := json.Unmarshal(respBody, &sent); err != nil {
		return err
	}

	c.Logger.Info("Email sent",
		zap.String("email_id", sent.ID),
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}
