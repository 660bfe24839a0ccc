package config

import "time"

// PushConfig contains push delivery configuration shared by the HTTP surface
// and the delivery cycle.
type PushConfig struct {
	// DefaultTimezone is the operator's zone. Task send hours are expressed
	// in it and subscriptions without a usable zone fall back to it.
	DefaultTimezone string `env:"PUSH_DEFAULT_TIMEZONE" envDefault:"UTC"`

	// DefaultIconURL is the notification icon used when a task has no image.
	DefaultIconURL string `env:"PUSH_DEFAULT_ICON_URL" envDefault:"/static/push/img/icon.png"`

	// ErrorThreshold is the error-point balance at which a subscription is
	// deactivated.
	ErrorThreshold int `env:"PUSH_ERROR_THRESHOLD" envDefault:"30"`

	// Workers is the size of the sending worker pool. 1 sends inline.
	Workers int `env:"PUSH_WORKERS" envDefault:"3"`

	// PageSize bounds how many subscriptions are loaded from the store at a
	// time during a delivery cycle.
	PageSize int `env:"PUSH_PAGE_SIZE" envDefault:"7000"`

	// TTLSeconds is the notification time-to-live handed to the provider.
	// VAPID caps it at 24 hours, hence the default of 86400-1.
	TTLSeconds int `env:"PUSH_TTL_SECONDS" envDefault:"86399"`

	// RequestTimeout bounds a single provider call from a sending worker.
	RequestTimeout time.Duration `env:"PUSH_REQUEST_TIMEOUT" envDefault:"3s"`

	// SweepChance runs the retention sweeper roughly once per this many
	// cycles. 1 sweeps on every cycle; 0 disables sweeping.
	SweepChance int `env:"PUSH_SWEEP_CHANCE" envDefault:"300"`

	// LayoutRetention is how long finished tasks keep their timezone
	// sub-tasks before the sweeper deletes them.
	LayoutRetention time.Duration `env:"PUSH_LAYOUT_RETENTION" envDefault:"2160h"` // 90 days

	// SubscriptionRetention is how long dead subscriptions are kept for
	// statistics before the sweeper deletes them.
	SubscriptionRetention time.Duration `env:"PUSH_SUBSCRIPTION_RETENTION" envDefault:"8760h"` // 365 days

	// FCMServerKey authenticates legacy multicast deliveries.
	FCMServerKey string `env:"PUSH_FCM_SERVER_KEY"`

	// VAPID key pair and contact for the standard Web Push track.
	VAPIDPublicKey  string `env:"PUSH_VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"PUSH_VAPID_PRIVATE_KEY"`
	VAPIDAdminEmail string `env:"PUSH_VAPID_ADMIN_EMAIL"`
}

// Sanitize applies guardrails to push configuration values.
func (p *PushConfig) Sanitize() {
	if p.DefaultTimezone == "" {
		p.DefaultTimezone = "UTC"
	}
	if p.ErrorThreshold < 1 {
		p.ErrorThreshold = 30
	}
	if p.Workers < 1 {
		p.Workers = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 7000
	}
	if p.TTLSeconds < 0 {
		p.TTLSeconds = 86399
	}
	if p.RequestTimeout <= 0 {
		p.RequestTimeout = 3 * time.Second
	}
	if p.SweepChance < 0 {
		p.SweepChance = 0
	}
	if p.LayoutRetention <= 0 {
		p.LayoutRetention = 90 * 24 * time.Hour
	}
	if p.SubscriptionRetention <= 0 {
		p.SubscriptionRetention = 365 * 24 * time.Hour
	}
}
