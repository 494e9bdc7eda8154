package main

import (
	"testing"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("SYNC_TEST_KEY", "custom")
	if got := getEnv("SYNC_TEST_KEY", "fallback"); got != "custom" {
		t.Fatalf("expected custom, got %s", got)
	}
	if got := getEnv("SYNC_TEST_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %s", got)
	}
}
