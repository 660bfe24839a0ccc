// Package push holds the provider-facing scoring rules of the delivery
// engine: how a push service's answer for a single subscription translates
// into error points and, for the legacy track, canonical endpoint rewrites.
package push

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/pushgate/pushgate/internal/domain/model"
)

// Error-point weights. A subscription accumulating points past the
// configured threshold is deactivated.
const (
	PointsGone            = 15 // permanent rejection: 404/410, NotRegistered, InvalidRegistration
	PointsMoved           = 3  // 301 from a standard push service
	PointsMisc            = 1  // unclassified legacy error codes
	PointsRecovered       = -1 // successful delivery drains one point
	DefaultErrorThreshold = 30
)

// Verdict is the scoring outcome for one delivery response.
type Verdict struct {
	// Delta is the error-point change to apply (floored at zero downstream).
	Delta int
	// CanonicalEndpoint, when non-empty, is a provider-issued replacement
	// endpoint that must be saved in place of the current one.
	CanonicalEndpoint string
}

// legacyResult is the per-recipient slot of a legacy multicast response.
type legacyResult struct {
	MessageID      string `json:"message_id"`
	RegistrationID string `json:"registration_id"`
	Error          string `json:"error"`
}

type legacyResponse struct {
	Results []legacyResult `json:"results"`
}

// ScoreStandard maps a standard Web Push status code to a verdict.
// Unmapped failure codes (401, 413, 429, 5xx...) are transient: no penalty,
// the subscriber is naturally retried by the next task.
func ScoreStandard(statusCode int) Verdict {
	switch {
	case statusCode < 300:
		return Verdict{Delta: PointsRecovered}
	case statusCode == 301:
		return Verdict{Delta: PointsMoved}
	case statusCode == 404 || statusCode == 410:
		return Verdict{Delta: PointsGone}
	default:
		return Verdict{}
	}
}

// ScoreLegacy parses a legacy multicast response body and maps its first
// result slot to a verdict. The engine sends one recipient per call, so
// only results[0] is meaningful.
func ScoreLegacy(body []byte) (Verdict, error) {
	var resp legacyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Verdict{}, fmt.Errorf("parse legacy response: %w", err)
	}
	if len(resp.Results) == 0 {
		return Verdict{}, fmt.Errorf("legacy response has no results")
	}
	result := resp.Results[0]

	if result.MessageID != "" {
		v := Verdict{Delta: PointsRecovered}
		if result.RegistrationID != "" {
			v.CanonicalEndpoint = canonicalEndpoint(result.RegistrationID)
		}
		return v, nil
	}

	switch result.Error {
	case "NotRegistered", "InvalidRegistration":
		// The provider says to drop these immediately, but observed responses
		// flap, so they get a heavy penalty instead of instant deactivation.
		return Verdict{Delta: PointsGone}, nil
	case "Unavailable", "InternalServerError":
		// Transient on the provider side, retry next task.
		return Verdict{}, nil
	default:
		return Verdict{Delta: PointsMisc}, nil
	}
}

// canonicalEndpoint resolves a replacement id to an absolute endpoint URL.
// The provider does not document whether it returns the full URL or only the
// id part, so bare ids are grafted onto the legacy endpoint.
func canonicalEndpoint(registrationID string) string {
	if u, err := url.Parse(registrationID); err == nil && u.Scheme == "https" && u.Host != "" {
		return registrationID
	}
	return model.FCMEndpointPrefix + "/" + registrationID
}
