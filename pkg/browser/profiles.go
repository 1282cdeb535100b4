package browser

import (
	"context"
	"net/http"
)

// Identity bundles are persistent server-side profiles: cookies,
// localStorage, fingerprint, and proxy binding. Save and load are
// session-scoped; list and delete are account-scoped and authenticate
// with the session token alone.

// SaveProfile saves the current session state as an identity bundle.
func (s *Store) SaveProfile(ctx context.Context, instanceID, name string) (map[string]any, error) {
	rec, err := s.resolve(instanceID)
	if err != nil {
		return nil, err
	}
	body := map[string]any{}
	if name != "" {
		body["name"] = name
	}
	headers := map[string]string{"Authorization": "Bearer " + rec.sessionToken}
	data, status, err := s.doRequest(ctx, http.MethodPost, "/v1/sessions/"+rec.sessionID+"/profile", body, headers)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &RemoteError{Status: status, Message: remoteMessage(data)}
	}
	return data, nil
}

// LoadProfile loads an identity bundle into the current session.
func (s *Store) LoadProfile(ctx context.Context, instanceID, profileID string) (map[string]any, error) {
	rec, err := s.resolve(instanceID)
	if err != nil {
		return nil, err
	}
	headers := map[string]string{"Authorization": "Bearer " + rec.sessionToken}
	data, status, err := s.doRequest(ctx, http.MethodPost, "/v1/sessions/"+rec.sessionID+"/profile/load",
		map[string]any{"profile_id": profileID}, headers)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &RemoteError{Status: status, Message: remoteMessage(data)}
	}
	s.mu.Lock()
	if current, ok := s.records[instanceID]; ok {
		current.loadedProfileID = profileID
	}
	s.mu.Unlock()
	return data, nil
}

// ListProfiles lists every saved identity bundle for the account.
func (s *Store) ListProfiles(ctx context.Context, instanceID string) (map[string]any, error) {
	rec, err := s.resolve(instanceID)
	if err != nil {
		return nil, err
	}
	headers := map[string]string{"Authorization": "Bearer " + rec.sessionToken}
	data, status, err := s.doRequest(ctx, http.MethodGet, "/v1/profiles", nil, headers)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &RemoteError{Status: status, Message: remoteMessage(data)}
	}
	return data, nil
}

// DeleteProfile deletes a saved identity bundle.
func (s *Store) DeleteProfile(ctx context.Context, instanceID, profileID string) (map[string]any, error) {
	rec, err := s.resolve(instanceID)
	if err != nil {
		return nil, err
	}
	headers := map[string]string{"Authorization": "Bearer " + rec.sessionToken}
	data, status, err := s.doRequest(ctx, http.MethodDelete, "/v1/profiles/"+profileID, nil, headers)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &RemoteError{Status: status, Message: remoteMessage(data)}
	}
	return data, nil
}
