package env

import "testing"

func TestFirstSkipsBlankValues(t *testing.T) {
	t.Setenv("PULSE_TEST_A", "  ")
	t.Setenv("PULSE_TEST_B", "web.2")
	if got := First("PULSE_TEST_MISSING", "PULSE_TEST_A", "PULSE_TEST_B"); got != "web.2" {
		t.Fatalf("expected web.2, got %q", got)
	}
	if got := First("PULSE_TEST_MISSING"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestGetAndBoolFallbacks(t *testing.T) {
	t.Setenv("PULSE_TEST_FORMAT", " console ")
	if got := Get("PULSE_TEST_FORMAT", "json"); got != "console" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := Get("PULSE_TEST_MISSING", "json"); got != "json" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("PULSE_TEST_FLAG", "nope")
	if !Bool("PULSE_TEST_FLAG", true) {
		t.Fatalf("unparsable bool should fall back")
	}
	t.Setenv("PULSE_TEST_FLAG", "1")
	if !Bool("PULSE_TEST_FLAG", false) {
		t.Fatalf("expected true")
	}
}
