package version

import "testing"

func TestString(t *testing.T) {
	Version, Commit, Date = "v1.4.0", "abc123", "2026-10-18"
	t.Cleanup(func() { Version, Commit, Date = "dev", "unknown", "unknown" })

	if got := String(); got != "v1.4.0 (commit abc123, built 2026-10-18)" {
		t.Errorf("String() = %q", got)
	}
}
