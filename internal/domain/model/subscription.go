//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
)

// GCMEndpointPrefix is the legacy Google Cloud Messaging endpoint. Subscriptions
// created by old Chrome builds point here and must be delivered through the
// legacy multicast API instead of the standard Web Push protocol.
const GCMEndpointPrefix = "https://android.googleapis.com/gcm/send"

// FCMEndpointPrefix is the Firebase flavor of the legacy endpoint. Bare
// registration ids submitted by old Chrome builds are rewritten onto it.
const FCMEndpointPrefix = "https://fcm.googleapis.com/fcm/send"

const maxEndpointLen = 2048

// ProviderKind selects the delivery protocol for a subscription. It is
// resolved once per subscription before dispatch, never per call.
type ProviderKind string

const (
	// ProviderLegacy is the old multicast-style GCM/FCM API.
	ProviderLegacy ProviderKind = "legacy"
	// ProviderStandard is the modern per-subscription Web Push protocol.
	ProviderStandard ProviderKind = "standard"
)

// Subscription is one browser push subscription bound to a timezone.
type Subscription struct {
	ID            int64      `json:"id"                       db:"id"`
	Endpoint      string     `json:"endpoint"                 db:"endpoint"`
	Key           string     `json:"key,omitempty"            db:"key"`
	AuthSecret    string     `json:"auth_secret,omitempty"    db:"auth_secret"`
	IsActive      bool       `json:"is_active"                db:"is_active"`
	Errors        int        `json:"errors"                   db:"errors"`
	UserAgent     string     `json:"user_agent"               db:"user_agent"`
	Timezone      string     `json:"timezone"                 db:"timezone"`
	CreatedAt     time.Time  `json:"created_at"               db:"created_at"`
	ActivatedAt   *time.Time `json:"activated_at,omitempty"   db:"activated_at"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty" db:"deactivated_at"`
}

// Provider reports which delivery track the subscription belongs to,
// distinguished purely by endpoint shape.
func (s *Subscription) Provider() ProviderKind {
	if strings.HasPrefix(s.Endpoint, GCMEndpointPrefix) || strings.HasPrefix(s.Endpoint, FCMEndpointPrefix) {
		return ProviderLegacy
	}
	return ProviderStandard
}

// SupportsPayload reports whether the subscription carries the key material
// needed for encrypted payload delivery. Both halves are required together;
// without them delivery degrades to a payload-less ping.
func (s *Subscription) SupportsPayload() bool {
	return s.Key != "" && s.AuthSecret != ""
}

// RegistrationID returns the provider-assigned id portion of a legacy
// endpoint (the path segment after the multicast URL).
func (s *Subscription) RegistrationID() string {
	for _, prefix := range []string{GCMEndpointPrefix, FCMEndpointPrefix} {
		if strings.HasPrefix(s.Endpoint, prefix) {
			return strings.TrimPrefix(strings.TrimPrefix(s.Endpoint, prefix), "/")
		}
	}
	return ""
}

// Deactivate flips the subscription inactive and stamps DeactivatedAt.
// Idempotent: already-inactive subscriptions are left untouched, so
// DeactivatedAt records the most recent active-to-inactive transition.
func (s *Subscription) Deactivate(now time.Time) {
	if !s.IsActive {
		return
	}
	s.IsActive = false
	t := now
	s.DeactivatedAt = &t
}

// Reactivate resets the error counter and, if the subscription was inactive,
// turns it back on. ActivatedAt is written only on the first-ever activation
// and never overwritten afterwards: activate(activate(s)) == activate(s).
func (s *Subscription) Reactivate(now time.Time) {
	s.Errors = 0
	s.IsActive = true
	if s.ActivatedAt == nil {
		t := now
		s.ActivatedAt = &t
	}
}

// AccountErrors applies an error-point delta and reports whether the
// subscription crossed the deactivation threshold. Positive deltas
// accumulate; negative deltas only ever drain an existing balance and the
// counter is floored at zero.
func (s *Subscription) AccountErrors(delta, threshold int, now time.Time) (deactivated bool) {
	switch {
	case delta > 0:
		s.Errors += delta
		if s.Errors >= threshold {
			wasActive := s.IsActive
			s.Deactivate(now)
			return wasActive
		}
	case delta < 0:
		if s.Errors > 0 {
			s.Errors += delta
			if s.Errors < 0 {
				s.Errors = 0
			}
		}
	}
	return false
}

// Validate checks invariants before persistence.
func (s *Subscription) Validate() error {
	endpoint := strings.TrimSpace(s.Endpoint)
	if endpoint == "" {
		return errors.New("endpoint is required")
	}
	if len(endpoint) > maxEndpointLen {
		return errors.New("endpoint is too long")
	}
	if s.Timezone == "" {
		return errors.New("timezone is required")
	}
	if s.Errors < 0 {
		return errors.New("error counter cannot be negative")
	}
	return nil
}
