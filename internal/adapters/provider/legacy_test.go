package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushgate/pushgate/internal/core"
	"github.com/pushgate/pushgate/internal/domain/model"
)

func TestLegacyClient_Send(t *testing.T) {
	var gotAuth, gotContentType string
	var gotBody legacyRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":1,"failure":0,"results":[{"message_id":"m-1"}]}`))
	}))
	defer srv.Close()

	client, err := NewLegacyClient(LegacyClientOptions{
		ServerKey: "server-key-1",
		SendURL:   srv.URL,
	})
	require.NoError(t, err)

	resp, err := client.Send(context.Background(), core.SendParams{
		Subscription: &model.Subscription{Endpoint: model.FCMEndpointPrefix + "/reg-abc"},
		Payload:      []byte(`{"title":"ignored on this track"}`),
		TTL:          86399,
	})
	require.NoError(t, err)

	assert.Equal(t, "key=server-key-1", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, []string{"reg-abc"}, gotBody.RegistrationIDs)
	assert.Equal(t, 86399, gotBody.TimeToLive)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "message_id")
}

func TestLegacyClient_Send_NoServerKey(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := NewLegacyClient(LegacyClientOptions{SendURL: srv.URL})
	require.NoError(t, err)

	resp, err := client.Send(context.Background(), core.SendParams{
		Subscription: &model.Subscription{Endpoint: model.GCMEndpointPrefix + "/reg-abc"},
	})
	require.NoError(t, err)

	assert.False(t, sawAuth, "no Authorization header without a server key")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLegacyClient_Send_NoRegistrationID(t *testing.T) {
	client, err := NewLegacyClient(LegacyClientOptions{ServerKey: "k"})
	require.NoError(t, err)

	_, err = client.Send(context.Background(), core.SendParams{
		Subscription: &model.Subscription{Endpoint: "https://updates.push.services.mozilla.com/wpush/v2/abc"},
	})
	assert.True(t, errors.Is(err, core.ErrBadEndpoint))
}
