package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// defaultSeeds is the first-replication seed map of the standard run.
func defaultSeeds() SeedMap {
	return GenerateStreams(DefaultStreamBlockSize, DefaultStreamCount)
}

// shortConfig is the default line over a shorter horizon, for tests that
// step the engine event by event.
func shortConfig(horizon, warmup float64) Config {
	cfg := DefaultConfig()
	cfg.Horizon = horizon
	cfg.Warmup = warmup
	return cfg
}

// expectViolation runs fn and returns the InvariantViolation it panics with.
func expectViolation(t *testing.T, fn func()) (v *InvariantViolation) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected an invariant violation, got none")
		var ok bool
		v, ok = r.(*InvariantViolation)
		require.True(t, ok, "expected *InvariantViolation, got %T: %v", r, r)
	}()
	fn()
	return nil
}

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
