package telemetry

import (
	"context"
	"testing"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		enabled  string
	}{
		{name: "no endpoint"},
		{name: "disabled", endpoint: "http://localhost:4318", enabled: "false"},
		// A non-routable address so no actual export happens.
		{name: "enabled", endpoint: "http://192.0.2.1:4318"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("SNEAKY_OTEL_ENDPOINT", tc.endpoint)
			if tc.enabled != "" {
				t.Setenv("SNEAKY_OTEL_ENABLED", tc.enabled)
			}

			shutdown, err := Setup(context.Background(), "sneaky-test")
			if err != nil {
				t.Fatalf("Setup() failed: %v", err)
			}
			if err := shutdown(context.Background()); err != nil {
				t.Fatalf("shutdown error: %v", err)
			}
		})
	}
}

func TestSetupBadEnv(t *testing.T) {
	t.Setenv("SNEAKY_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("SNEAKY_OTEL_ENABLED", "maybe")

	if _, err := Setup(context.Background(), "sneaky-test"); err == nil {
		t.Error("Setup() accepted a non-boolean SNEAKY_OTEL_ENABLED")
	}
}
