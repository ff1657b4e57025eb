package config

import "testing"

func TestIntenv(t *testing.T) {
	// t.Setenv forbids t.Parallel.
	t.Setenv("TEST_TTL_VALID", "45")
	t.Setenv("TEST_TTL_GARBAGE", "soon")
	t.Setenv("TEST_TTL_EMPTY", "")

	if got := intenv("TEST_TTL_VALID", 30); got != 45 {
		t.Fatalf("valid value: got %d want 45", got)
	}
	// A garbage value must fall back to the default, never to zero:
	// a zero TTL would instantly expire every reset token and session.
	if got := intenv("TEST_TTL_GARBAGE", 30); got != 30 {
		t.Fatalf("garbage value: got %d want default 30", got)
	}
	if got := intenv("TEST_TTL_EMPTY", 30); got != 30 {
		t.Fatalf("empty value: got %d want default 30", got)
	}
	if got := intenv("TEST_TTL_UNSET", 30); got != 30 {
		t.Fatalf("unset value: got %d want default 30", got)
	}
}

func TestParseDur(t *testing.T) {
	t.Parallel()

	if got := parseDur("90s"); got.Seconds() != 90 {
		t.Fatalf("valid duration: got %v", got)
	}
	if got := parseDur("soon"); got.Minutes() != 1 {
		t.Fatalf("garbage duration must fall back to 1m, got %v", got)
	}
}
