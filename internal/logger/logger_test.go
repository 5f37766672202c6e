package logger

import "testing"

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	in := []interface{}{"authorization", "Bearer abc", "lang", "en", "BEARER_TOKEN", "xyz", "dangling"}
	out := sanitizeKVs(in)

	if len(out) != len(in) {
		t.Fatalf("unexpected length: got=%d want=%d", len(out), len(in))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("authorization not redacted: %v", out[1])
	}
	if out[3] != "en" {
		t.Fatalf("lang should pass through: %v", out[3])
	}
	if out[5] != "[REDACTED]" {
		t.Fatalf("token not redacted: %v", out[5])
	}
	if out[6] != "dangling" {
		t.Fatalf("dangling key lost: %v", out[6])
	}
}
