package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wastewise/binreminder/internal/config"
	appErr "github.com/wastewise/binreminder/internal/pkg/errors"
)

func testPayload() Payload {
	return Payload{
		DeviceToken:    "token-1",
		Title:          "Bin collection reminder",
		Body:           "Your recycle bin will be collected tomorrow.",
		Category:       "recycle",
		BodyColor:      "#00FF00",
		HeadColor:      "#006600",
		CollectionDate: "2024-06-18",
	}
}

func newTestNotifier(handler http.HandlerFunc) (Notifier, *httptest.Server) {
	server := httptest.NewServer(handler)
	notifier := NewFCMNotifier(config.PushConfig{Endpoint: server.URL, ServerKey: "server-key"})
	return notifier, server
}

func TestFCMSend(t *testing.T) {
	var got fcmMessage
	notifier, server := newTestNotifier(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "key=server-key", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":1,"failure":0}`))
	})
	defer server.Close()

	require.NoError(t, notifier.Send(context.Background(), testPayload()))
	require.Equal(t, "token-1", got.To)
	require.Equal(t, "high", got.Priority)
	require.Equal(t, "recycle", got.Data["category"])
	require.Equal(t, "collection_reminder", got.Data["type"])
}

func TestFCMInvalidRecipient(t *testing.T) {
	for _, code := range []string{"InvalidRegistration", "NotRegistered", "MissingRegistration"} {
		notifier, server := newTestNotifier(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":0,"failure":1,"results":[{"error":"` + code + `"}]}`))
		})
		err := notifier.Send(context.Background(), testPayload())
		server.Close()
		require.ErrorIs(t, err, ErrInvalidRecipient, code)
	}
}

func TestFCMTransientFailures(t *testing.T) {
	notifier, server := newTestNotifier(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer server.Close()
	require.ErrorIs(t, notifier.Send(context.Background(), testPayload()), appErr.ErrDelivery)

	notifier, server = newTestNotifier(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":0,"failure":1,"results":[{"error":"Unavailable"}]}`))
	})
	defer server.Close()
	require.ErrorIs(t, notifier.Send(context.Background(), testPayload()), appErr.ErrDelivery)
}
