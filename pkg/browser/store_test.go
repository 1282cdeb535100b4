package browser

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

func testStore(t *testing.T, handler http.Handler) (*Store, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := NewStore(Config{
		BaseURL:     srv.URL,
		InternalKey: "test-internal-key",
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body map[string]any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestCreateSession(t *testing.T) {
	var gotBody map[string]any
	var gotInternalKey, gotPaymentSig string

	store, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/sessions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotInternalKey = r.Header.Get("X-Internal-Key")
		gotPaymentSig = r.Header.Get("Payment-Signature")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"session_id":    "s1",
			"session_token": "tok-1",
			"expires_at":    "2026-08-23T12:00:00Z",
			"proxy":         map[string]any{"country": "US", "ip": "10.0.0.1"},
			"fingerprint":   map[string]any{"os": "android", "browser": "chrome"},
		})
	}))

	opts := DefaultOptions()
	opts.Country = "US"
	opts.DurationMinutes = 30
	opts.PaymentSignature = "0xabc"

	inst, err := store.Create(context.Background(), opts)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if inst.ID != "s1" {
		t.Fatalf("instance id = %q, want s1", inst.ID)
	}
	if inst.State != StateReady {
		t.Fatalf("state = %q, want ready", inst.State)
	}
	if gotInternalKey != "test-internal-key" {
		t.Errorf("X-Internal-Key = %q", gotInternalKey)
	}
	if gotPaymentSig != "0xabc" {
		t.Errorf("Payment-Signature = %q", gotPaymentSig)
	}
	if gotBody["country"] != "US" {
		t.Errorf("country = %v", gotBody["country"])
	}
	if gotBody["durationMinutes"] != float64(30) {
		t.Errorf("durationMinutes = %v", gotBody["durationMinutes"])
	}

	session, ok := store.SessionData("s1")
	if !ok {
		t.Fatal("session data missing")
	}
	if session.SessionToken != "tok-1" {
		t.Errorf("token = %q", session.SessionToken)
	}
	if session.ExpiresAt != "2026-08-23T12:00:00Z" {
		t.Errorf("expires_at = %q", session.ExpiresAt)
	}
	if session.Proxy["country"] != "US" {
		t.Errorf("proxy = %v", session.Proxy)
	}
}

func TestCreateTokenDefaultsToSessionID(t *testing.T) {
	store, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"session_id": "s2"})
	}))

	if _, err := store.Create(context.Background(), DefaultOptions()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	session, ok := store.SessionData("s2")
	if !ok {
		t.Fatal("session data missing")
	}
	if session.SessionToken != "s2" {
		t.Fatalf("token = %q, want session id fallback", session.SessionToken)
	}
}

func TestCreateRemoteFailureLeavesNoRecord(t *testing.T) {
	store, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusInternalServerError, map[string]any{"error": "no proxies available"})
	}))

	_, err := store.Create(context.Background(), DefaultOptions())
	if err == nil {
		t.Fatal("expected error")
	}
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("error = %v, want RemoteError", err)
	}
	if remote.Status != http.StatusInternalServerError {
		t.Errorf("status = %d", remote.Status)
	}
	if remote.Message != "no proxies available" {
		t.Errorf("message = %q", remote.Message)
	}
	if got := len(store.List()); got != 0 {
		t.Fatalf("tracked instances = %d, want 0", got)
	}
}

func TestCreateMissingSessionID(t *testing.T) {
	store, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"status": "ok"})
	}))

	if _, err := store.Create(context.Background(), DefaultOptions()); err == nil {
		t.Fatal("expected error for response without session_id")
	}
	if got := len(store.List()); got != 0 {
		t.Fatalf("tracked instances = %d, want 0", got)
	}
}

func TestCreatePaymentRequired(t *testing.T) {
	store, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusPaymentRequired, map[string]any{
			"price": float64(1500000),
			"networks": []any{
				map[string]any{"network": "base", "address": "0xbase"},
				map[string]any{"network": "solana", "address": "solAddr", "token": "USDC"},
			},
		})
	}))

	_, err := store.Create(context.Background(), DefaultOptions())
	var perr *PaymentRequiredError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want PaymentRequiredError", err)
	}
	if got := perr.PriceUSD(); got != 1.5 {
		t.Errorf("price = %v, want 1.5", got)
	}
	networks := perr.Networks()
	if len(networks) != 2 {
		t.Fatalf("networks = %d, want 2", len(networks))
	}
	if networks[0].Token != "USDC" {
		t.Errorf("default token = %q, want USDC", networks[0].Token)
	}

	// The sentinel record stays queryable for payment metadata.
	session, ok := store.SessionData(InstancePaymentRequired)
	if !ok {
		t.Fatal("payment sentinel record missing")
	}
	if session.PaymentInfo == nil {
		t.Fatal("payment info missing from sentinel")
	}

	// But it is not addressable by the command dispatcher.
	if _, err := store.Command(context.Background(), InstancePaymentRequired, "navigate", nil); !errors.Is(err, ErrUnknownInstance) {
		t.Fatalf("command on sentinel = %v, want ErrUnknownInstance", err)
	}
}

func TestCommandUnknownInstanceNoNetworkCall(t *testing.T) {
	var calls atomic.Int64
	store, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(t, w, http.StatusOK, map[string]any{})
	}))

	_, err := store.Command(context.Background(), "ghost", "navigate", map[string]any{"url": "https://example.com"})
	if !errors.Is(err, ErrUnknownInstance) {
		t.Fatalf("error = %v, want ErrUnknownInstance", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("remote calls = %d, want 0", calls.Load())
	}
}

func TestCommandSendsBearerTokenAndAction(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]any

	store, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/sessions":
			writeJSON(t, w, http.StatusOK, map[string]any{
				"session_id":    "s1",
				"session_token": "tok-1",
			})
		default:
			gotAuth = r.Header.Get("Authorization")
			gotPath = r.URL.Path
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Errorf("decode body: %v", err)
			}
			writeJSON(t, w, http.StatusOK, map[string]any{"clicked": true})
		}
	}))

	if _, err := store.Create(context.Background(), DefaultOptions()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	result, err := store.Click(context.Background(), "s1", "#submit")
	if err != nil {
		t.Fatalf("Click: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPath != "/v1/sessions/s1/command" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody["action"] != "click" {
		t.Errorf("action = %v", gotBody["action"])
	}
	if gotBody["selector"] != "#submit" {
		t.Errorf("selector = %v", gotBody["selector"])
	}
	if result["clicked"] != true {
		t.Errorf("result = %v", result)
	}
}

func TestCommandRemoteRejection(t *testing.T) {
	store, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/sessions" {
			writeJSON(t, w, http.StatusOK, map[string]any{"session_id": "s1"})
			return
		}
		writeJSON(t, w, http.StatusBadRequest, map[string]any{"error": "element not found"})
	}))

	if _, err := store.Create(context.Background(), DefaultOptions()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := store.Click(context.Background(), "s1", "#missing")
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("error = %v, want RemoteError", err)
	}
	if remote.Status != http.StatusBadRequest || remote.Message != "element not found" {
		t.Errorf("remote = [%d] %q", remote.Status, remote.Message)
	}

	// A rejected command leaves the instance tracked.
	if _, ok := store.Get("s1"); !ok {
		t.Fatal("instance dropped after rejected command")
	}
}

func TestNavigateRefreshesCachedPageView(t *testing.T) {
	store, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/sessions" {
			writeJSON(t, w, http.StatusOK, map[string]any{"session_id": "s1"})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"url":   "https://example.com/home",
			"title": "Example Home",
		})
	}))

	if _, err := store.Create(context.Background(), DefaultOptions()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Navigate(context.Background(), "s1", "https://example.com", ""); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	inst, ok := store.Get("s1")
	if !ok {
		t.Fatal("instance missing")
	}
	if inst.CurrentURL != "https://example.com/home" {
		t.Errorf("current url = %q", inst.CurrentURL)
	}
	if inst.Title != "Example Home" {
		t.Errorf("title = %q", inst.Title)
	}
	if inst.State != StateReady {
		t.Errorf("state = %q", inst.State)
	}
}

func TestNavigateFallsBackToRequestedURL(t *testing.T) {
	store, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/sessions" {
			writeJSON(t, w, http.StatusOK, map[string]any{"session_id": "s1"})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{})
	}))

	if _, err := store.Create(context.Background(), DefaultOptions()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Navigate(context.Background(), "s1", "https://example.com/form", ""); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	inst, ok := store.Get("s1")
	if !ok {
		t.Fatal("instance missing")
	}
	if inst.CurrentURL != "https://example.com/form" {
		t.Errorf("current url = %q, want the requested URL", inst.CurrentURL)
	}
	if inst.Title != "" {
		t.Errorf("title = %q, want empty", inst.Title)
	}
}

func TestGetReturnsDetachedSnapshot(t *testing.T) {
	store, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"session_id": "s1"})
	}))

	if _, err := store.Create(context.Background(), DefaultOptions()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	inst, ok := store.Get("s1")
	if !ok {
		t.Fatal("instance missing")
	}
	inst.Title = "scribbled"
	inst.CurrentURL = "https://attacker.example"

	again, _ := store.Get("s1")
	if again.Title != "" || again.CurrentURL != "" {
		t.Fatalf("caller mutation leaked into the store: %q %q", again.Title, again.CurrentURL)
	}

	for _, listed := range store.List() {
		listed.Title = "scribbled"
	}
	again, _ = store.Get("s1")
	if again.Title != "" {
		t.Fatalf("List exposed the live instance: %q", again.Title)
	}
}

func TestConcurrentNavigateAndRead(t *testing.T) {
	store, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/sessions" {
			writeJSON(t, w, http.StatusOK, map[string]any{"session_id": "s1"})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"url":   "https://example.com/next",
			"title": "Next",
		})
	}))

	ctx := context.Background()
	if _, err := store.Create(ctx, DefaultOptions()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if _, err := store.Navigate(ctx, "s1", "https://example.com", ""); err != nil {
				t.Errorf("Navigate: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			if inst, ok := store.Get("s1"); ok {
				_ = inst.CurrentURL
				_ = inst.Title
				_ = inst.LastActivity
			}
			for _, inst := range store.List() {
				_ = inst.CurrentURL
			}
		}
	}()
	wg.Wait()
}

func TestRemoveIsUnconditional(t *testing.T) {
	var deleteCalled atomic.Bool
	store, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/sessions" && r.Method == http.MethodPost {
			writeJSON(t, w, http.StatusOK, map[string]any{"session_id": "s1"})
			return
		}
		if r.Method == http.MethodDelete {
			deleteCalled.Store(true)
			writeJSON(t, w, http.StatusInternalServerError, map[string]any{"error": "remote unavailable"})
			return
		}
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	}))

	if _, err := store.Create(context.Background(), DefaultOptions()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !store.Remove(context.Background(), "s1") {
		t.Fatal("Remove returned false for tracked instance")
	}
	if !deleteCalled.Load() {
		t.Fatal("remote delete was not attempted")
	}
	if _, ok := store.Get("s1"); ok {
		t.Fatal("record survived a failed remote delete")
	}
	if store.Remove(context.Background(), "s1") {
		t.Fatal("Remove returned true for an absent id")
	}
}

func TestRemoveAllAndShutdown(t *testing.T) {
	session := 0
	store, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/sessions" && r.Method == http.MethodPost {
			session++
			writeJSON(t, w, http.StatusOK, map[string]any{"session_id": "s" + string(rune('0'+session))})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{})
	}))

	for i := 0; i < 3; i++ {
		if _, err := store.Create(context.Background(), DefaultOptions()); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}
	if got := len(store.List()); got != 3 {
		t.Fatalf("tracked = %d, want 3", got)
	}

	store.RemoveAll(context.Background())
	if got := len(store.List()); got != 0 {
		t.Fatalf("tracked after RemoveAll = %d, want 0", got)
	}

	// Shutdown is idempotent and the store remains usable after it.
	store.Shutdown(context.Background())
	store.Shutdown(context.Background())
	if _, err := store.Create(context.Background(), DefaultOptions()); err != nil {
		t.Fatalf("Create after Shutdown: %v", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	store, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/sessions" && r.Method == http.MethodPost:
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
			}
			if body["country"] != "US" || body["durationMinutes"] != float64(30) {
				t.Errorf("create body = %v", body)
			}
			writeJSON(t, w, http.StatusCreated, map[string]any{
				"session_id":    "s1",
				"session_token": "tok-1",
				"proxy":         map[string]any{"country": "US"},
			})
		case r.URL.Path == "/v1/sessions/s1/command":
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
			}
			switch body["action"] {
			case "navigate":
				writeJSON(t, w, http.StatusOK, map[string]any{
					"url":   "https://example.com/",
					"title": "Example Domain",
				})
			case "cookies":
				writeJSON(t, w, http.StatusOK, map[string]any{
					"cookies": []any{map[string]any{"name": "sid", "value": "abc"}},
				})
			default:
				writeJSON(t, w, http.StatusOK, map[string]any{})
			}
		case r.URL.Path == "/v1/sessions/s1" && r.Method == http.MethodDelete:
			writeJSON(t, w, http.StatusOK, map[string]any{"closed": true})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	ctx := context.Background()
	opts := DefaultOptions()
	opts.Country = "US"
	opts.DurationMinutes = 30

	inst, err := store.Create(ctx, opts)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Navigate(ctx, inst.ID, "https://example.com", "load"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	state, err := store.CurrentPageState(ctx, inst.ID)
	if err != nil {
		t.Fatalf("CurrentPageState: %v", err)
	}
	if state.URL != "https://example.com/" || state.Title != "Example Domain" {
		t.Errorf("state = %q %q", state.URL, state.Title)
	}
	if len(state.Cookies) != 1 || state.Cookies[0]["name"] != "sid" {
		t.Errorf("cookies = %v", state.Cookies)
	}

	if !store.Remove(ctx, inst.ID) {
		t.Fatal("Remove failed")
	}
	if _, err := store.Navigate(ctx, inst.ID, "https://example.com", ""); !errors.Is(err, ErrUnknownInstance) {
		t.Fatalf("navigate after close = %v, want ErrUnknownInstance", err)
	}
}
