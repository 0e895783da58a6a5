package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestToMinorUnit(t *testing.T) {
	assert.Equal(t, int64(100000), ToMinorUnit(1000))
	assert.Equal(t, int64(250050), ToMinorUnit(2500.50))
	// Fractional kobo rounds up, never down
	assert.Equal(t, int64(100001), ToMinorUnit(1000.001))
	assert.Equal(t, int64(0), ToMinorUnit(0))
}

func TestInitializeTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_abc", r.Header.Get("Authorization"))

		var req initializeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "buyer@example.com", req.Email)
		assert.Equal(t, int64(260000), req.Amount)
		assert.Equal(t, "https://shop.example.com/callback", req.CallbackURL)

		json.NewEncoder(w).Encode(initializeResponse{
			Status: true,
			Data: Transaction{
				AuthorizationURL: "https://checkout.example.com/abc123",
				AccessCode:       "abc123",
				Reference:        "ref_xyz",
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	tx, err := client.InitializeTransaction("sk_test_abc", "buyer@example.com", 2600, "https://shop.example.com/callback")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example.com/abc123", tx.AuthorizationURL)
	assert.Equal(t, "abc123", tx.AccessCode)
	assert.Equal(t, "ref_xyz", tx.Reference)
}

func TestInitializeTransactionRejectedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(initializeResponse{Status: false, Message: "Invalid key"})
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	tx, err := client.InitializeTransaction("sk_bad", "buyer@example.com", 100, "https://example.com")
	assert.Error(t, err)
	assert.Nil(t, tx)
	assert.Contains(t, err.Error(), "Invalid key")
}

func TestInitializeTransactionHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	tx, err := client.InitializeTransaction("sk_bad", "buyer@example.com", 100, "https://example.com")
	assert.Error(t, err)
	assert.Nil(t, tx)
}

func TestVerifySignature(t *testing.T) {
	secret := "sk_test_secret"
	body := []byte(`{"data":{"reference":"ref_xyz","status":"success"}}`)

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, VerifySignature(secret, body, signature))
	assert.False(t, VerifySignature("sk_other_secret", body, signature))
	assert.False(t, VerifySignature(secret, []byte(`tampered`), signature))
	assert.False(t, VerifySignature(secret, body, "deadbeef"))
}
