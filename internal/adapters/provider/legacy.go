// Package provider implements the HTTP clients for both push delivery
// tracks: the legacy GCM/FCM multicast API and the standard Web Push
// protocol with VAPID.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pushgate/pushgate/internal/core"
)

// legacy multicast responses are small JSON documents; anything bigger is
// either garbage or abuse.
const maxResponseBody = 4 << 10

// LegacyClientOptions groups dependencies for LegacyClient.
type LegacyClientOptions struct {
	// ServerKey authenticates multicast requests. Without it the service
	// rejects every request and the affected subscriptions age out through
	// the error scoring, so an empty key is tolerated but useless.
	ServerKey  string
	SendURL    string       // Optional: override for tests, defaults to the FCM send endpoint
	HTTPClient *http.Client // Optional: defaults to http.DefaultClient
}

// LegacyClient delivers through the pre-VAPID GCM/FCM multicast API. The
// notification content never travels with the request; the service worker
// fetches it after the push event wakes it.
type LegacyClient struct {
	serverKey string
	sendURL   string
	http      *http.Client
}

const defaultLegacySendURL = "https://fcm.googleapis.com/fcm/send"

// NewLegacyClient constructs a new LegacyClient.
func NewLegacyClient(opts LegacyClientOptions) (*LegacyClient, error) {
	sendURL := opts.SendURL
	if sendURL == "" {
		sendURL = defaultLegacySendURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &LegacyClient{serverKey: opts.ServerKey, sendURL: sendURL, http: httpClient}, nil
}

var _ core.PushClient = (*LegacyClient)(nil)

type legacyRequest struct {
	RegistrationIDs []string `json:"registration_ids"`
	TimeToLive      int      `json:"time_to_live"`
}

// Send posts a single-recipient multicast request. The payload is ignored on
// this track; legacy endpoints cannot carry encrypted content.
func (c *LegacyClient) Send(ctx context.Context, params core.SendParams) (*core.ProviderResponse, error) {
	regID := params.Subscription.RegistrationID()
	if regID == "" {
		return nil, fmt.Errorf("%w: no registration id in %q",
			core.ErrBadEndpoint, params.Subscription.Endpoint)
	}

	body, err := json.Marshal(legacyRequest{
		RegistrationIDs: []string{regID},
		TimeToLive:      params.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal multicast request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build multicast request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.serverKey != "" {
		req.Header.Set("Authorization", "key="+c.serverKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("multicast request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read multicast response: %w", err)
	}
	return &core.ProviderResponse{StatusCode: resp.StatusCode, Body: respBody}, nil
}
