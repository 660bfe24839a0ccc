package httpx

import (
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/pushgate/pushgate/internal/errors"

	"github.com/pushgate/pushgate/internal/service"
)

// NotificationHandlersOptions groups dependencies for NotificationHandlers.
type NotificationHandlersOptions struct {
	Tasks           *service.TaskService // Required: task queries and counters
	DefaultTimezone string               // Required: zone fallback for payload-less clients
	DefaultIconURL  string               // Required: icon fallback for image-less tasks
	Logger          *slog.Logger         // Optional: structured logger
}

// NotificationHandlers serves the endpoints service workers hit after a push
// event: content lookup, click-through redirects and delivery counters.
type NotificationHandlers struct {
	opts NotificationHandlersOptions
}

// NewNotificationHandlers constructs new NotificationHandlers.
func NewNotificationHandlers(opts NotificationHandlersOptions) *NotificationHandlers {
	return &NotificationHandlers{opts: opts}
}

// Last returns the most recent notification sent to the caller's zone.
// Payload-less delivery tracks use this to fetch what to display.
// GET /push/last_notification
func (h *NotificationHandlers) Last(w http.ResponseWriter, r *http.Request) {
	timezone := r.URL.Query().Get("timezone")
	if timezone == "" {
		timezone = h.opts.DefaultTimezone
	}

	payload, err := h.opts.Tasks.LastNotification(r.Context(), timezone, h.opts.DefaultIconURL)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, payload)
}

// Show counts a click and redirects the browser to the campaign target.
// Query parameters ride along to the target so UTM tags survive, and the
// service layer marks the visit with from=push.
// GET /push/show_notification/{id}/
func (h *NotificationHandlers) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	target, err := h.opts.Tasks.ShowNotification(r.Context(), id, r.URL.Query())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// PlusOne bumps one of the task's delivery counters from the service worker.
// GET /push/notification_plus_one/{what}/{id}/
func (h *NotificationHandlers) PlusOne(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.opts.Tasks.PlusOne(r.Context(), r.PathValue("what"), id); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteOK(w, nil)
}

// pathID parses the {id} path segment, writing a not-found response for
// anything that is not a positive integer. Parse failures get the same
// response as missing rows so ids cannot be probed by shape.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		WriteAppError(w, apperrors.NotFound("task"))
		return 0, false
	}
	return id, true
}
