package httpx

import (
	"log/slog"
	"net/http"

	"github.com/pushgate/pushgate/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Subscriptions   *service.SubscriptionService
	Tasks           *service.TaskService
	DefaultTimezone string
	DefaultIconURL  string
	Logger          *slog.Logger // Optional: request logging and panic recovery
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	pushHandlers := &PushHandlers{Svc: services.Subscriptions, Logger: services.Logger}
	notificationHandlers := NewNotificationHandlers(NotificationHandlersOptions{
		Tasks:           services.Tasks,
		DefaultTimezone: services.DefaultTimezone,
		DefaultIconURL:  services.DefaultIconURL,
		Logger:          services.Logger,
	})

	mux.Handle("POST /push/save", http.HandlerFunc(pushHandlers.Save))
	mux.Handle("POST /push/deactivate", http.HandlerFunc(pushHandlers.Deactivate))
	mux.Handle("GET /push/stats", http.HandlerFunc(pushHandlers.Stats))
	mux.Handle("GET /push/last_notification", http.HandlerFunc(notificationHandlers.Last))
	mux.Handle("GET /push/show_notification/{id}/{$}", http.HandlerFunc(notificationHandlers.Show))
	mux.Handle("GET /push/notification_plus_one/{what}/{id}/{$}", http.HandlerFunc(notificationHandlers.PlusOne))
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	var handler http.Handler = mux
	if services.Logger != nil {
		handler = Logging(services.Logger)(handler)
		handler = Recover(services.Logger)(handler)
	}
	return handler
}
