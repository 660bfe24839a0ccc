package httpx

import (
	"log/slog"
	"net/http"

	"github.com/pushgate/pushgate/internal/service"
)

// PushHandlers serves the subscription lifecycle endpoints the service
// worker client calls.
type PushHandlers struct {
	Svc    *service.SubscriptionService
	Logger *slog.Logger
}

type saveRequest struct {
	Endpoint   string `json:"endpoint"`
	Key        string `json:"key"`
	AuthSecret string `json:"auth_secret"`
	Timezone   string `json:"timezone"`
}

// Save registers or refreshes a subscription.
// POST /push/save
func (h *PushHandlers) Save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	sub, err := h.Svc.Save(r.Context(), service.SaveParams{
		Endpoint:   req.Endpoint,
		Key:        req.Key,
		AuthSecret: req.AuthSecret,
		Timezone:   req.Timezone,
		UserAgent:  r.UserAgent(),
	})
	if err != nil {
		if h.Logger != nil {
			h.Logger.WarnContext(r.Context(), "subscription save failed", "error", err)
		}
		WriteAppError(w, err)
		return
	}

	WriteOK(w, map[string]any{"id": sub.ID})
}

type deactivateRequest struct {
	Endpoint string `json:"endpoint"`
}

// Deactivate retires a subscription, typically after the browser revoked
// notification permission.
// POST /push/deactivate
func (h *PushHandlers) Deactivate(w http.ResponseWriter, r *http.Request) {
	var req deactivateRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	sub, err := h.Svc.Deactivate(r.Context(), req.Endpoint)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteOK(w, map[string]any{"id": sub.ID})
}

// Stats reports the active audience size.
// GET /push/stats
func (h *PushHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	count, err := h.Svc.CountActive(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteOK(w, map[string]any{"active_subscriptions": count})
}
