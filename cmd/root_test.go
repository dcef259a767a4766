package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/assembly-sim/assembly-sim/sim"
)

func TestSeedStreams_DefaultBlockMatchesPartition(t *testing.T) {
	// GIVEN the default topology, x0 and block size
	topo := sim.DefaultTopology()

	// WHEN seeding its streams
	got := seedStreams(topo, sim.GlobalSeed, sim.DefaultStreamBlockSize)

	// THEN they are exactly the standard seven-block partition
	assert.Equal(t, sim.GenerateStreams(sim.DefaultStreamBlockSize, sim.DefaultStreamCount), got)
}

func TestSeedStreams_OtherBlockSizeKeepsOrder(t *testing.T) {
	// GIVEN a block size of 10 draws
	got := seedStreams(sim.DefaultTopology(), sim.GlobalSeed, 10)

	// THEN stream k*100000 takes the seed of block k
	partition := sim.GenerateStreamsFrom(sim.GlobalSeed, 10, sim.DefaultStreamCount)
	assert.Len(t, got, sim.DefaultStreamCount)
	for _, id := range got.Streams() {
		k := int(id) / sim.DefaultStreamBlockSize
		assert.Equal(t, partition[sim.StreamID(k*10)], got[id], "stream %d", id)
	}
}

func TestSeedStreams_DifferentSeedDifferentStreams(t *testing.T) {
	a := seedStreams(sim.DefaultTopology(), sim.GlobalSeed, sim.DefaultStreamBlockSize)
	b := seedStreams(sim.DefaultTopology(), 42, sim.DefaultStreamBlockSize)
	assert.NotEqual(t, a, b)
	assert.Equal(t, int64(42), b[sim.StreamInspector1C1])
}

func TestRunCmd_FlagDefaults(t *testing.T) {
	tests := []struct {
		flag string
		want string
	}{
		{"replications", "10"},
		{"horizon", "15000"},
		{"warmup", "1000"},
		{"policy", "round-robin"},
		{"seed", "1234567"},
		{"stream-block", "100000"},
		{"confidence", "0.95"},
		{"batch-size", "0"},
		{"log", "warn"},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			f := runCmd.Flags().Lookup(tt.flag)
			if assert.NotNil(t, f, "flag --%s not registered", tt.flag) {
				assert.Equal(t, tt.want, f.DefValue)
			}
		})
	}
}
