package cmd

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assembly-sim/assembly-sim/sim"
	"github.com/assembly-sim/assembly-sim/sim/batch"
)

func TestEncodeRows_HeaderAndIndex(t *testing.T) {
	// GIVEN two rows
	rows := []batch.Row{
		{Columns: []string{"throughput", "ws1_busy"}, Values: []float64{0.25, 0.5}},
		{Columns: []string{"throughput", "ws1_busy"}, Values: []float64{0.125, 1}},
	}

	// WHEN encoded
	var buf bytes.Buffer
	require.NoError(t, encodeRows(&buf, "replication", rows))

	// THEN the header leads with the index column and rows are numbered from 1
	want := "replication,throughput,ws1_busy\n1,0.25,0.5\n2,0.125,1\n"
	assert.Equal(t, want, buf.String())
}

func runShort(t *testing.T, n int) []*sim.ReplicationRecord {
	t.Helper()
	cfg := sim.DefaultConfig()
	cfg.Horizon, cfg.Warmup = 1500, 100
	seeds := seedStreams(cfg.Topology, sim.GlobalSeed, sim.DefaultStreamBlockSize)
	recs, err := batch.NewRunner(cfg, seeds).Run(context.Background(), n, nil)
	require.NoError(t, err)
	return recs
}

func TestWriteRecordsCSV_OneLinePerReplication(t *testing.T) {
	recs := runShort(t, 3)
	path := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, writeRecordsCSV(path, recs))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	lines, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 4)
	assert.Equal(t, append([]string{"replication"}, recs[0].Columns()...), lines[0])
	assert.Equal(t, "3", lines[3][0])
}

func TestWriteRecordsCSV_NoRecordsWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, writeRecordsCSV(path, nil))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestPrintSummary_ListsEveryColumn(t *testing.T) {
	recs := runShort(t, 3)
	var buf bytes.Buffer

	require.NoError(t, printSummary(&buf, recs, 0.95))

	out := buf.String()
	assert.Contains(t, out, "3 replications, 95% CI")
	for _, col := range recs[0].Columns() {
		assert.Contains(t, out, col)
	}
	assert.Contains(t, out, "±")
}

func TestPrintBatchSummary_SingleBatchHasNoInterval(t *testing.T) {
	recs := runShort(t, 2)
	batches, err := batch.BatchMeans(recs, 2)
	require.NoError(t, err)
	var buf bytes.Buffer

	require.NoError(t, printBatchSummary(&buf, batches, 0.95))

	assert.Contains(t, buf.String(), "1 batches")
	assert.False(t, strings.Contains(buf.String(), "±"), "one batch has no interval")
}
