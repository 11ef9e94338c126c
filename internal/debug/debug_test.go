package debug

import "testing"

func TestDisabledByDefault(t *testing.T) {
	if Enabled() {
		t.Fatal("debug logging should be disabled until Enable is called")
	}
	// Logf must not panic even while disabled.
	Logf("no-op: %d", 1)
}
