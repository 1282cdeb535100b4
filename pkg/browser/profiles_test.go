package browser

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestProfileRoundtrip(t *testing.T) {
	var savedName string
	var loadedProfile string

	store, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/sessions" && r.Method == http.MethodPost:
			writeJSON(t, w, http.StatusOK, map[string]any{"session_id": "s1", "session_token": "tok-1"})
		case r.URL.Path == "/v1/sessions/s1/profile":
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
			}
			savedName, _ = body["name"].(string)
			writeJSON(t, w, http.StatusOK, map[string]any{"profile_id": "p1"})
		case r.URL.Path == "/v1/sessions/s1/profile/load":
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
			}
			loadedProfile, _ = body["profile_id"].(string)
			writeJSON(t, w, http.StatusOK, map[string]any{"loaded": true})
		case r.URL.Path == "/v1/profiles" && r.Method == http.MethodGet:
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
			}
			writeJSON(t, w, http.StatusOK, map[string]any{
				"profiles": []any{map[string]any{"profile_id": "p1", "name": "shop"}},
			})
		case r.URL.Path == "/v1/profiles/p1" && r.Method == http.MethodDelete:
			writeJSON(t, w, http.StatusOK, map[string]any{"deleted": true})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	ctx := context.Background()
	if _, err := store.Create(ctx, DefaultOptions()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	saved, err := store.SaveProfile(ctx, "s1", "shop")
	if err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	if savedName != "shop" || saved["profile_id"] != "p1" {
		t.Errorf("save: name=%q result=%v", savedName, saved)
	}

	if _, err := store.LoadProfile(ctx, "s1", "p1"); err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if loadedProfile != "p1" {
		t.Errorf("loaded profile = %q", loadedProfile)
	}
	session, _ := store.SessionData("s1")
	if session.LoadedProfileID != "p1" {
		t.Errorf("cached loaded profile = %q", session.LoadedProfileID)
	}

	listed, err := store.ListProfiles(ctx, "s1")
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if _, ok := listed["profiles"]; !ok {
		t.Errorf("list = %v", listed)
	}

	if _, err := store.DeleteProfile(ctx, "s1", "p1"); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}
}

func TestProfileOpsRequireKnownInstance(t *testing.T) {
	store, _ := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	}))

	ctx := context.Background()
	if _, err := store.SaveProfile(ctx, "ghost", ""); !errors.Is(err, ErrUnknownInstance) {
		t.Errorf("SaveProfile = %v", err)
	}
	if _, err := store.LoadProfile(ctx, "ghost", "p1"); !errors.Is(err, ErrUnknownInstance) {
		t.Errorf("LoadProfile = %v", err)
	}
	if _, err := store.ListProfiles(ctx, "ghost"); !errors.Is(err, ErrUnknownInstance) {
		t.Errorf("ListProfiles = %v", err)
	}
	if _, err := store.DeleteProfile(ctx, "ghost", "p1"); !errors.Is(err, ErrUnknownInstance) {
		t.Errorf("DeleteProfile = %v", err)
	}
}
