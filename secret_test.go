package mistral

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func TestSecretRedaction(t *testing.T) {
	secret := NewSecret("sk-super-sensitive")

	if got := secret.String(); got != "[REDACTED]" {
		t.Errorf("String() = %q", got)
	}
	if got := fmt.Sprintf("%v", secret); strings.Contains(got, "sensitive") {
		t.Errorf("%%v leaked the value: %q", got)
	}
	if got := fmt.Sprintf("%#v", secret); strings.Contains(got, "sensitive") {
		t.Errorf("%%#v leaked the value: %q", got)
	}

	data, err := json.Marshal(secret)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `"[REDACTED]"` {
		t.Errorf("Marshal() = %s", data)
	}

	data, err = json.Marshal(struct {
		Key Secret `json:"key"`
	}{Key: secret})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "sensitive") {
		t.Errorf("struct marshal leaked the value: %s", data)
	}
}

func TestSecretExpose(t *testing.T) {
	secret := NewSecret("sk-abc")
	if got := secret.Expose(); got != "sk-abc" {
		t.Errorf("Expose() = %q", got)
	}

	if !NewSecret("").IsZero() {
		t.Error("IsZero() = false for empty secret")
	}
	if secret.IsZero() {
		t.Error("IsZero() = true for non-empty secret")
	}
}
