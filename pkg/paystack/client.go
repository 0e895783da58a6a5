package paystack

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client talks to the payment provider's REST API. Credentials are per-store,
// so the secret key is a call argument rather than client state.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewClient creates a new payment provider client
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Logger:     logger,
	}
}

// Transaction is the hosted-payment-page handle returned by initialization.
type Transaction struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type initializeRequest struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	CallbackURL string `json:"callback_url"`
}

type initializeResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    Transaction `json:"data"`
}

// ToMinorUnit converts a major-unit amount to the provider's minor currency
// unit (kobo), rounding up.
func ToMinorUnit(amount float64) int64 {
	return int64(math.Ceil(amount * 100))
}

// InitializeTransaction requests a hosted-payment-page transaction using the
// store's own secret key. amount is in major units and converted before the
// call.
func (c *Client) InitializeTransaction(secretKey, email string, amount float64, callbackURL string) (*Transaction, error) {
	payload := initializeRequest{
		Email:       email,
		Amount:      ToMinorUnit(amount),
		CallbackURL: callbackURL,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/transaction/initialize", c.BaseURL), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.Error("Transaction initialization request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.Logger.Error("Failed to read transaction initialization response", zap.Error(err))
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		c.Logger.Error("Transaction initialization failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)))
		return nil, fmt.Errorf("failed to initialize transaction: %d %s", resp.StatusCode, string(respBody))
	}

	var formatted initializeResponse
	if err := json.Unmarshal(respBody, &formatted); err != nil {
		c.Logger.Error("Failed to parse transaction initialization response", zap.Error(err))
		return nil, err
	}
	if !formatted.Status {
		c.Logger.Error("Transaction initialization rejected",
			zap.String("message", formatted.Message))
		return nil, fmt.Errorf("failed to initialize transaction: %s", formatted.Message)
	}

	c.Logger.Info("Transaction initialized",
		zap.String("reference", formatted.Data.Reference),
		zap.Int64("amount_minor", payload.Amount))

	return &formatted.Data, nil
}

// VerifySignature checks an inbound webhook body against its
// x-paystack-signature header: hex HMAC-SHA512 of the raw body keyed with the
// store's secret key.
func VerifySignature(secretKey string, body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
