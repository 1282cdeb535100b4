package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/veilhq/veil/pkg/logging"
)

// Store tracks active cloud browser sessions for a process. It owns the
// instance-id -> session record mapping, the lock that serializes every
// mutation of it, and the shared HTTP client used for all remote calls.
// There is no per-instance lock: concurrent commands against the same
// instance may race at the remote service.
type Store struct {
	cfg    Config
	logger *logging.Logger

	mu      sync.Mutex
	records map[string]*record
	http    *http.Client
}

// record is the session record held per live instance id. All fields are
// written under the store lock.
type record struct {
	instance        *Instance
	sessionID       string
	sessionToken    string
	expiresAt       string
	proxy           map[string]any
	fingerprint     map[string]any
	loadedProfileID string
	paymentInfo     map[string]any
}

// NewStore creates a session store from the provided config.
func NewStore(cfg Config) (*Store, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Store{
		cfg:     cfg,
		records: make(map[string]*record),
	}, nil
}

// SetLogger attaches a structured logger. A nil logger disables logging.
func (s *Store) SetLogger(logger *logging.Logger) {
	s.mu.Lock()
	s.logger = logger
	s.mu.Unlock()
}

// BaseURL reports the configured API root.
func (s *Store) BaseURL() string {
	return s.cfg.BaseURL
}

// httpClient returns the shared client, creating it on first use and
// recreating it after Shutdown released it.
func (s *Store) httpClient() *http.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.http == nil {
		s.http = &http.Client{Timeout: s.cfg.RequestTimeout}
	}
	return s.http
}

// Create spawns a new cloud browser session. Requires an x402 payment
// signature or an internal key; a 402 response is the payment
// precondition, not a transport failure, and is surfaced as
// *PaymentRequiredError with the sentinel record kept queryable.
func (s *Store) Create(ctx context.Context, opts Options) (*Instance, error) {
	now := time.Now()
	instance := &Instance{
		ID:           InstancePending,
		State:        StateStarting,
		CreatedAt:    now,
		LastActivity: now,
		UserAgent:    opts.UserAgent,
		Viewport:     opts.viewport(),
	}

	body := map[string]any{"durationMinutes": 60}
	if opts.Country != "" {
		body["country"] = opts.Country
	}
	if opts.DurationMinutes > 0 {
		body["durationMinutes"] = opts.DurationMinutes
	}
	if opts.ProfileID != "" {
		body["profile_id"] = opts.ProfileID
	}

	headers := map[string]string{}
	paymentSig := opts.PaymentSignature
	if paymentSig == "" {
		paymentSig = s.cfg.PaymentSignature
	}
	if paymentSig != "" {
		headers["Payment-Signature"] = paymentSig
	}
	if s.cfg.InternalKey != "" {
		headers["X-Internal-Key"] = s.cfg.InternalKey
	}

	data, status, err := s.doRequest(ctx, http.MethodPost, "/v1/sessions", body, headers)
	if err != nil {
		instance.State = StateError
		return nil, fmt.Errorf("create browser session: %w", err)
	}

	if status == http.StatusPaymentRequired {
		instance.State = StateError
		instance.ID = InstancePaymentRequired
		s.mu.Lock()
		s.records[InstancePaymentRequired] = &record{
			instance:    instance,
			paymentInfo: data,
		}
		s.mu.Unlock()
		metricPaymentRequired.Inc()
		s.logEvent(logging.LevelWarn, logging.CategoryPayment, "payment_required",
			"session creation requires x402 payment", nil)
		return nil, &PaymentRequiredError{Info: data}
	}

	if status < 200 || status > 299 {
		instance.State = StateError
		return nil, fmt.Errorf("create browser session: %w",
			&RemoteError{Status: status, Message: remoteMessage(data)})
	}

	sessionID, _ := data["session_id"].(string)
	if sessionID == "" {
		instance.State = StateError
		return nil, fmt.Errorf("create browser session: response missing session_id")
	}
	sessionToken, _ := data["session_token"].(string)
	if sessionToken == "" {
		sessionToken = sessionID
	}

	instance.ID = sessionID
	instance.State = StateReady

	rec := &record{
		instance:     instance,
		sessionID:    sessionID,
		sessionToken: sessionToken,
		expiresAt:    stringField(data, "expires_at", "expiresAt"),
	}
	if proxy, ok := data["proxy"].(map[string]any); ok {
		rec.proxy = proxy
	}
	if fingerprint, ok := data["fingerprint"].(map[string]any); ok {
		rec.fingerprint = fingerprint
	}
	rec.loadedProfileID, _ = data["loaded_profile_id"].(string)

	s.mu.Lock()
	s.records[sessionID] = rec
	s.mu.Unlock()

	metricSessionsCreated.Inc()
	s.logEvent(logging.LevelInfo, logging.CategorySession, "session_created",
		"cloud browser session created", map[string]any{
			"instance_id": sessionID,
			"country":     opts.Country,
		})
	return instance, nil
}

// Get returns a snapshot of the cached instance view for an id. The
// canonical instance is mutated under the store lock, so callers get a
// detached copy rather than a live pointer.
func (s *Store) Get(instanceID string) (*Instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[instanceID]
	if !ok || rec.instance == nil {
		return nil, false
	}
	snapshot := *rec.instance
	return &snapshot, true
}

// SessionData returns the remote metadata snapshot for an id.
func (s *Store) SessionData(instanceID string) (*SessionData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[instanceID]
	if !ok {
		return nil, false
	}
	return &SessionData{
		SessionID:       rec.sessionID,
		SessionToken:    rec.sessionToken,
		ExpiresAt:       rec.expiresAt,
		Proxy:           rec.proxy,
		Fingerprint:     rec.fingerprint,
		LoadedProfileID: rec.loadedProfileID,
		PaymentInfo:     rec.paymentInfo,
	}, true
}

// List returns snapshots of the cached views of every tracked instance.
func (s *Store) List() []*Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Instance, 0, len(s.records))
	for _, rec := range s.records {
		if rec.instance != nil {
			snapshot := *rec.instance
			out = append(out, &snapshot)
		}
	}
	return out
}

// update applies a cached-state mutation under the lock. No-op when the
// id is absent.
func (s *Store) update(instanceID string, fn func(*Instance)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[instanceID]
	if !ok || rec.instance == nil {
		return
	}
	fn(rec.instance)
}

// Remove closes a session. The remote delete is best-effort: its failure
// never blocks removal of the local record, which is unconditional. The
// local view is the source of truth for "no longer tracked". Returns
// false only when the id was never present.
func (s *Store) Remove(ctx context.Context, instanceID string) bool {
	s.mu.Lock()
	rec, ok := s.records[instanceID]
	s.mu.Unlock()
	if !ok {
		return false
	}

	if rec.sessionID != "" {
		headers := map[string]string{"Authorization": "Bearer " + rec.sessionToken}
		if _, _, err := s.doRequest(ctx, http.MethodDelete, "/v1/sessions/"+rec.sessionID, nil, headers); err != nil {
			s.logEvent(logging.LevelWarn, logging.CategorySession, "session_delete_failed",
				"remote session delete failed; removing local record anyway",
				map[string]any{"instance_id": instanceID, "error": err.Error()})
		}
	}

	s.mu.Lock()
	delete(s.records, instanceID)
	s.mu.Unlock()

	metricSessionsClosed.Inc()
	s.logEvent(logging.LevelInfo, logging.CategorySession, "session_closed",
		"cloud browser session closed", map[string]any{"instance_id": instanceID})
	return true
}

// RemoveAll closes every tracked session, tolerating per-id failures so
// one failing close does not block the rest.
func (s *Store) RemoveAll(ctx context.Context) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.Remove(ctx, id)
	}
}

// Shutdown closes all sessions and releases the shared HTTP client. It is
// idempotent and never returns an error.
func (s *Store) Shutdown(ctx context.Context) {
	s.RemoveAll(ctx)
	s.mu.Lock()
	if s.http != nil {
		s.http.CloseIdleConnections()
		s.http = nil
	}
	s.mu.Unlock()
}

// doRequest issues one JSON call against the browser API and decodes the
// response body. Transport and decode failures come back as errors; HTTP
// status interpretation is left to the caller.
func (s *Store) doRequest(ctx context.Context, method, path string, body any, headers map[string]string) (map[string]any, int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	data := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
				return nil, resp.StatusCode, fmt.Errorf("decode response: %w", err)
			}
			// Non-JSON error bodies are reduced to their status code.
			data = map[string]any{}
		}
	}
	return data, resp.StatusCode, nil
}

func (s *Store) logEvent(level logging.Level, category logging.Category, eventType, message string, details map[string]any) {
	s.mu.Lock()
	logger := s.logger
	s.mu.Unlock()
	if logger == nil {
		return
	}
	logger.Log(logging.Event{
		Level:     level,
		Category:  category,
		EventType: eventType,
		Message:   message,
		Details:   details,
	})
}

func remoteMessage(data map[string]any) string {
	if data == nil {
		return ""
	}
	if msg, ok := data["error"].(string); ok {
		return msg
	}
	return ""
}

func stringField(data map[string]any, keys ...string) string {
	for _, key := range keys {
		if val, ok := data[key].(string); ok && val != "" {
			return val
		}
	}
	return ""
}
