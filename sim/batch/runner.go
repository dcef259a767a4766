// Package batch runs sequences of replications and aggregates their records.
package batch

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/assembly-sim/assembly-sim/sim"
)

// Runner executes replications one after another, each resuming every
// generator where the previous replication left it.
type Runner struct {
	Config sim.Config
	Seeds  sim.SeedMap
}

// NewRunner creates a runner whose first replication starts from seeds.
func NewRunner(cfg sim.Config, seeds sim.SeedMap) *Runner {
	return &Runner{Config: cfg, Seeds: seeds.Clone()}
}

// Run executes n replications. onRecord, if non-nil, sees each record as it
// is produced and may stop the run by returning an error. The context is
// checked between replications; a replication in progress always finishes.
// On return r.Seeds holds the seeds for the replication after the last one
// completed.
func (r *Runner) Run(ctx context.Context, n int, onRecord func(i int, rec *sim.ReplicationRecord) error) ([]*sim.ReplicationRecord, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: replications must be at least 1, got %d", sim.ErrConfig, n)
	}
	records := make([]*sim.ReplicationRecord, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		logrus.Debugf("replication %d seeds: %v", i+1, r.Seeds)
		rec, next, err := sim.RunReplication(r.Config, r.Seeds)
		if err != nil {
			return records, fmt.Errorf("replication %d: %w", i+1, err)
		}
		r.Seeds = next
		records = append(records, rec)
		logrus.Infof("replication %d/%d: throughput %.6f", i+1, n, rec.Throughput())
		if onRecord != nil {
			if err := onRecord(i, rec); err != nil {
				return records, err
			}
		}
	}
	return records, nil
}
