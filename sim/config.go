package sim

// Default run lengths, in minutes.
const (
	DefaultHorizon = 15000.0
	DefaultWarmup  = 1000.0
)

// Config groups everything one replication needs besides its seeds.
type Config struct {
	Horizon  float64         // time of the SimulationDone event (must be > Warmup)
	Warmup   float64         // time of the SteadyStateStart cutover (>= 0)
	Policy   SelectionPolicy // buffer selection used by every inspector
	Topology Topology
}

// DefaultConfig returns the standard line with round-robin placement.
func DefaultConfig() Config {
	return Config{
		Horizon:  DefaultHorizon,
		Warmup:   DefaultWarmup,
		Policy:   RoundRobin,
		Topology: DefaultTopology(),
	}
}

// SteadyStateDuration is the length of the measured window.
func (c Config) SteadyStateDuration() float64 { return c.Horizon - c.Warmup }

// Validate checks run lengths, policy and topology.
func (c Config) Validate() error {
	if !(c.Warmup >= 0) {
		return configErrorf("warmup must be non-negative, got %v", c.Warmup)
	}
	if !(c.Horizon > c.Warmup) {
		return configErrorf("horizon (%v) must exceed warmup (%v)", c.Horizon, c.Warmup)
	}
	switch c.Policy {
	case RoundRobin, Priority, ShortestQueue:
	default:
		return configErrorf("unknown selection policy %d", int(c.Policy))
	}
	return c.Topology.Validate()
}
