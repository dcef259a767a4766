package cmd

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/assembly-sim/assembly-sim/sim"
	"github.com/assembly-sim/assembly-sim/sim/batch"
)

var (
	// CLI flags for the run
	configPath      string  // Optional YAML run file
	replications    int     // Number of replications to run back to back
	horizon         float64 // Simulation length per replication (minutes)
	warmup          float64 // Warm-up length per replication (minutes)
	policy          string  // Buffer selection policy
	initialSeed     int64   // x0 the seed streams are partitioned from
	streamBlockSize int     // Draws between the starts of two streams
	confidence      float64 // Two-sided confidence level for the summary
	batchSize       int     // Replications per batch mean (0 = no batching)
	outPath         string  // Per-replication CSV output
	batchesOutPath  string  // Batch-means CSV output
	logLevel        string  // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "assembly-sim",
	Short: "Discrete-event simulator for an inspection and assembly line",
}

// runCmd executes replications using parameters from the run file and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run replications of the assembly line simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := sim.DefaultConfig()
		n, seed, block := replications, initialSeed, streamBlockSize

		if configPath != "" {
			rf, err := sim.LoadRunFile(configPath)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			if cfg, err = rf.Apply(cfg); err != nil {
				logrus.Fatalf("%v", err)
			}
			if rf.Replications != nil && !cmd.Flags().Changed("replications") {
				n = *rf.Replications
			}
			if rf.InitialSeed != nil && !cmd.Flags().Changed("seed") {
				seed = *rf.InitialSeed
			}
			if rf.StreamBlockSize != nil && !cmd.Flags().Changed("stream-block") {
				block = *rf.StreamBlockSize
			}
		}
		// Explicit flags win over the run file
		if cmd.Flags().Changed("horizon") {
			cfg.Horizon = horizon
		}
		if cmd.Flags().Changed("warmup") {
			cfg.Warmup = warmup
		}
		if cmd.Flags().Changed("policy") {
			p, err := sim.ParseSelectionPolicy(policy)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			cfg.Policy = p
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("%v", err)
		}
		if block < 1 {
			logrus.Fatalf("stream block size must be at least 1, got %d", block)
		}

		seeds := seedStreams(cfg.Topology, seed, block)
		logrus.Infof("Starting %d replications, horizon=%.0f, warmup=%.0f, policy=%s", n, cfg.Horizon, cfg.Warmup, cfg.Policy)

		startTime := time.Now()
		runner := batch.NewRunner(cfg, seeds)
		records, err := runner.Run(context.Background(), n, nil)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		if outPath != "" {
			if err := writeRecordsCSV(outPath, records); err != nil {
				logrus.Fatalf("Writing %s: %v", outPath, err)
			}
		}
		if err := printSummary(os.Stdout, records, confidence); err != nil {
			logrus.Fatalf("%v", err)
		}
		if batchSize > 0 {
			batches, err := batch.BatchMeans(records, batchSize)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			if batchesOutPath != "" {
				if err := writeBatchesCSV(batchesOutPath, batches); err != nil {
					logrus.Fatalf("Writing %s: %v", batchesOutPath, err)
				}
			}
			if err := printBatchSummary(os.Stdout, batches, confidence); err != nil {
				logrus.Fatalf("%v", err)
			}
		}

		logrus.Infof("Simulation complete in %s.", time.Since(startTime))
	},
}

// seedStreams partitions the base sequence so that every stream the topology
// uses gets its own block. Stream ids are block offsets at the default block
// size; with another block size they are renumbered in the same order.
func seedStreams(topo sim.Topology, x0 int64, block int) sim.SeedMap {
	streams := topo.Streams()
	maxIdx := 0
	for _, id := range streams {
		if idx := int(id) / sim.DefaultStreamBlockSize; idx > maxIdx {
			maxIdx = idx
		}
	}
	partition := sim.GenerateStreamsFrom(x0, block, maxIdx+1)
	seeds := make(sim.SeedMap, len(streams))
	for _, id := range streams {
		idx := int(id) / sim.DefaultStreamBlockSize
		seeds[id] = partition[sim.StreamID(idx*block)]
	}
	return seeds
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML run file")
	runCmd.Flags().IntVar(&replications, "replications", 10, "Number of replications")
	runCmd.Flags().Float64Var(&horizon, "horizon", sim.DefaultHorizon, "Simulation length per replication (minutes)")
	runCmd.Flags().Float64Var(&warmup, "warmup", sim.DefaultWarmup, "Warm-up length per replication (minutes)")
	runCmd.Flags().StringVar(&policy, "policy", "round-robin", "Buffer selection policy (round-robin, priority, shortest-queue)")
	runCmd.Flags().Int64Var(&initialSeed, "seed", sim.GlobalSeed, "Initial seed the generator streams are partitioned from")
	runCmd.Flags().IntVar(&streamBlockSize, "stream-block", sim.DefaultStreamBlockSize, "Draws between the starts of two generator streams")
	runCmd.Flags().Float64Var(&confidence, "confidence", 0.95, "Two-sided confidence level for interval estimates")
	runCmd.Flags().IntVar(&batchSize, "batch-size", 0, "Replications per batch mean (0 disables batch means)")
	runCmd.Flags().StringVar(&outPath, "out", "", "Write per-replication statistics to this CSV file")
	runCmd.Flags().StringVar(&batchesOutPath, "batches-out", "", "Write batch means to this CSV file (requires --batch-size)")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
