package tool

import (
	"testing"

	"github.com/veilhq/veil/pkg/tool/builtin"
)

func TestResultJSONRoundTrip(t *testing.T) {
	original := &builtin.Result{
		Success: true,
		Data: map[string]any{
			"instance_id": "s1",
			"state":       "ready",
		},
	}

	raw, err := ToJSON(original)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	parsed, err := FromJSON(raw)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if !parsed.Success {
		t.Error("success lost in round trip")
	}
	if parsed.Data["instance_id"] != "s1" || parsed.Data["state"] != "ready" {
		t.Errorf("data = %v", parsed.Data)
	}

	failure, err := FromJSON(`{"success":false,"error":"browser instance not found: ghost"}`)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if failure.Success || failure.Error == "" {
		t.Errorf("failure result = %+v", failure)
	}

	if _, err := FromJSON("{not json"); err == nil {
		t.Error("malformed payload accepted")
	}
}
