package browser

import (
	"time"
)

// InstanceState tracks the locally-cached lifecycle state of a session.
type InstanceState string

const (
	StateStarting   InstanceState = "starting"
	StateReady      InstanceState = "ready"
	StateNavigating InstanceState = "navigating"
	StateError      InstanceState = "error"
	StateClosed     InstanceState = "closed"
)

// Sentinel instance identifiers. InstancePending names a session whose
// creation has not completed; InstancePaymentRequired is a terminal
// placeholder that keeps payment metadata queryable. Neither carries a
// usable session token, so neither is addressable for commands.
const (
	InstancePending         = "pending"
	InstancePaymentRequired = "payment_required"
)

// Viewport is the requested viewport size for a session. Cloud sessions
// are always headless; the viewport is advisory.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Instance is the locally-cached view of a cloud browser session. The
// cache is best-effort: CurrentURL and Title are refreshed on navigate
// only and may be stale after click/type/script-driven navigation.
type Instance struct {
	ID           string        `json:"instance_id"`
	State        InstanceState `json:"state"`
	CurrentURL   string        `json:"current_url,omitempty"`
	Title        string        `json:"title,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	LastActivity time.Time     `json:"last_activity"`
	UserAgent    string        `json:"user_agent,omitempty"`
	Viewport     Viewport      `json:"viewport"`
}

// SessionData is a snapshot of the remote metadata held for an instance.
// Proxy and fingerprint descriptors are opaque and never interpreted
// locally.
type SessionData struct {
	SessionID       string         `json:"session_id"`
	SessionToken    string         `json:"session_token"`
	ExpiresAt       string         `json:"expires_at,omitempty"`
	Proxy           map[string]any `json:"proxy,omitempty"`
	Fingerprint     map[string]any `json:"fingerprint,omitempty"`
	LoadedProfileID string         `json:"loaded_profile_id,omitempty"`
	PaymentInfo     map[string]any `json:"payment_info,omitempty"`
}

// PageState is a point-in-time snapshot of a page for callers.
type PageState struct {
	InstanceID string           `json:"instance_id"`
	URL        string           `json:"url"`
	Title      string           `json:"title"`
	ReadyState string           `json:"ready_state"`
	Cookies    []map[string]any `json:"cookies"`
	Viewport   Viewport         `json:"viewport"`
	Timestamp  time.Time        `json:"timestamp"`
}

// Options configures a new cloud browser session.
type Options struct {
	// Country is a proxy region hint (US, GB, DE, FR, ES, PL). The remote
	// service picks a random region when empty.
	Country string

	// DurationMinutes is the requested session TTL. Defaults to 60.
	DurationMinutes int

	// ProfileID names an identity bundle to preload into the session.
	ProfileID string

	// PaymentSignature is an x402 payment transaction hash. Falls back to
	// the store config when empty.
	PaymentSignature string

	// UserAgent optionally overrides the fingerprint user agent.
	UserAgent string

	ViewportWidth  int
	ViewportHeight int
}

// DefaultOptions returns the recommended session defaults.
func DefaultOptions() Options {
	return Options{
		DurationMinutes: 60,
		ViewportWidth:   1920,
		ViewportHeight:  1080,
	}
}

func (o Options) viewport() Viewport {
	vp := Viewport{Width: o.ViewportWidth, Height: o.ViewportHeight}
	if vp.Width <= 0 {
		vp.Width = 1920
	}
	if vp.Height <= 0 {
		vp.Height = 1080
	}
	return vp
}
