package mailer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test_key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var msg Message
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		assert.Equal(t, "Acme <orders@acme.example>", msg.From)
		assert.Equal(t, []string{"buyer@example.com"}, msg.To)
		assert.Equal(t, "Order Confirmation", msg.Subject)
		assert.Contains(t, msg.HTML, "ORD-00001")

		json.NewEncoder(w).Encode(sendResponse{ID: "email_123"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "re_test_key", zap.NewNop())
	err := client.Send(Message{
		From:    "Acme <orders@acme.example>",
		To:      []string{"buyer@example.com"},
		Subject: "Order Confirmation",
		HTML:    "<p>Thanks for order ORD-00001</p>",
	})
	assert.NoError(t, err)
}

func TestSendRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(errorResponse{Name: "validation_error", Message: "Invalid from address"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "re_test_key", zap.NewNop())
	err := client.Send(Message{From: "bad", To: []string{"buyer@example.com"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation_error")
	assert.Contains(t, err.Error(), "Invalid from address")
}

func TestSendUnexpectedFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "re_test_key", zap.NewNop())
	err := client.Send(Message{To: []string{"buyer@example.com"}})
	assert.Error(t, err)
}
