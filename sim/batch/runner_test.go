package batch

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assembly-sim/assembly-sim/sim"
)

func TestMain(m *testing.M) {
	logrus.SetLevel(logrus.WarnLevel)
	os.Exit(m.Run())
}

func shortConfig() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Horizon = 2000
	cfg.Warmup = 200
	return cfg
}

func defaultSeeds() sim.SeedMap {
	return sim.GenerateStreams(sim.DefaultStreamBlockSize, sim.DefaultStreamCount)
}

func TestRunner_ChainsSeedsAcrossReplications(t *testing.T) {
	// GIVEN a runner and a manual chain of replications from the same seeds
	cfg := shortConfig()
	r := NewRunner(cfg, defaultSeeds())

	var want []*sim.ReplicationRecord
	seeds := defaultSeeds()
	for i := 0; i < 3; i++ {
		rec, next, err := sim.RunReplication(cfg, seeds)
		require.NoError(t, err)
		want = append(want, rec)
		seeds = next
	}

	// WHEN the runner executes three replications
	got, err := r.Run(context.Background(), 3, nil)

	// THEN it produces the same records and ends on the same seeds
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, seeds, r.Seeds)
}

func TestRunner_ResumingContinuesTheSequence(t *testing.T) {
	cfg := shortConfig()
	whole, err := NewRunner(cfg, defaultSeeds()).Run(context.Background(), 4, nil)
	require.NoError(t, err)

	r := NewRunner(cfg, defaultSeeds())
	first, err := r.Run(context.Background(), 2, nil)
	require.NoError(t, err)
	second, err := r.Run(context.Background(), 2, nil)
	require.NoError(t, err)

	assert.Equal(t, whole, append(first, second...))
}

func TestNewRunner_CopiesSeeds(t *testing.T) {
	seeds := defaultSeeds()
	r := NewRunner(shortConfig(), seeds)
	_, err := r.Run(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, defaultSeeds(), seeds, "caller's map must not be advanced")
}

func TestRunner_Run_Errors(t *testing.T) {
	t.Run("zero replications", func(t *testing.T) {
		_, err := NewRunner(shortConfig(), defaultSeeds()).Run(context.Background(), 0, nil)
		assert.ErrorIs(t, err, sim.ErrConfig)
	})
	t.Run("invalid config", func(t *testing.T) {
		cfg := shortConfig()
		cfg.Warmup = cfg.Horizon
		recs, err := NewRunner(cfg, defaultSeeds()).Run(context.Background(), 2, nil)
		assert.ErrorIs(t, err, sim.ErrConfig)
		assert.Empty(t, recs)
	})
	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		recs, err := NewRunner(shortConfig(), defaultSeeds()).Run(ctx, 5, nil)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, recs)
	})
}

func TestRunner_OnRecordCanStopTheRun(t *testing.T) {
	// GIVEN a callback that stops after the second record
	stop := errors.New("enough")
	var seen []int
	onRecord := func(i int, rec *sim.ReplicationRecord) error {
		seen = append(seen, i)
		if i == 1 {
			return stop
		}
		return nil
	}

	// WHEN running five replications
	recs, err := NewRunner(shortConfig(), defaultSeeds()).Run(context.Background(), 5, onRecord)

	// THEN the run ends with the callback's error and the two records made
	assert.ErrorIs(t, err, stop)
	assert.Len(t, recs, 2)
	assert.Equal(t, []int{0, 1}, seen)
}

func TestRunner_CancelBetweenReplications(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	onRecord := func(i int, _ *sim.ReplicationRecord) error {
		if i == 0 {
			cancel()
		}
		return nil
	}

	recs, err := NewRunner(shortConfig(), defaultSeeds()).Run(ctx, 5, onRecord)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, recs, 1, "the replication in progress finishes")
}
