package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/pushgate/pushgate/internal/core"
)

// WebPushClientOptions groups dependencies for WebPushClient.
type WebPushClientOptions struct {
	VAPIDPublicKey  string       // Required: application server public key
	VAPIDPrivateKey string       // Required: application server private key
	Subscriber      string       // Required: contact mailto/URL for the VAPID claim
	HTTPClient      *http.Client // Optional: defaults to http.DefaultClient
}

// WebPushClient delivers over the standard Web Push protocol. Subscriptions
// carrying key material get an encrypted payload; older keyless ones get a
// bare ping and the service worker fetches the content itself.
type WebPushClient struct {
	vapidPublicKey  string
	vapidPrivateKey string
	subscriber      string
	http            *http.Client
}

// NewWebPushClient constructs a new WebPushClient.
func NewWebPushClient(opts WebPushClientOptions) (*WebPushClient, error) {
	if opts.VAPIDPublicKey == "" || opts.VAPIDPrivateKey == "" {
		return nil, errors.New("VAPID key pair is required")
	}
	if opts.Subscriber == "" {
		return nil, errors.New("Subscriber is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &WebPushClient{
		vapidPublicKey:  opts.VAPIDPublicKey,
		vapidPrivateKey: opts.VAPIDPrivateKey,
		subscriber:      opts.Subscriber,
		http:            httpClient,
	}, nil
}

var _ core.PushClient = (*WebPushClient)(nil)

// Send delivers one notification to the subscription's push service.
func (c *WebPushClient) Send(ctx context.Context, params core.SendParams) (*core.ProviderResponse, error) {
	sub := params.Subscription
	if u, err := url.Parse(sub.Endpoint); err != nil || u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", core.ErrBadEndpoint, sub.Endpoint)
	}

	if params.Payload == nil || !sub.SupportsPayload() {
		return c.ping(ctx, sub.Endpoint, params.TTL)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, params.Payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Key,
			Auth:   sub.AuthSecret,
		},
	}, &webpush.Options{
		HTTPClient:      c.http,
		TTL:             params.TTL,
		Subscriber:      c.subscriber,
		VAPIDPublicKey:  c.vapidPublicKey,
		VAPIDPrivateKey: c.vapidPrivateKey,
	})
	if err != nil {
		// Key material that cannot be decoded will never encrypt anything.
		// Treat it like a broken endpoint rather than a transient failure.
		if isKeyDecodeError(err) {
			return nil, fmt.Errorf("%w: %v", core.ErrBadEndpoint, err)
		}
		return nil, fmt.Errorf("web push request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read push service response: %w", err)
	}
	return &core.ProviderResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

// ping sends a payload-less push. VAPID headers are skipped: keyless
// subscriptions predate applicationServerKey and their push services accept
// unauthenticated posts.
func (c *WebPushClient) ping(ctx context.Context, endpoint string, ttl int) (*core.ProviderResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrBadEndpoint, err)
	}
	req.Header.Set("TTL", strconv.Itoa(ttl))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web push ping: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read push service response: %w", err)
	}
	return &core.ProviderResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

// webpush-go surfaces undecodable p256dh/auth material as base64 or curve
// errors before any request is made.
func isKeyDecodeError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "illegal base64") ||
		strings.Contains(msg, "invalid public key") ||
		strings.Contains(msg, "point is not on curve")
}
