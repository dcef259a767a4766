package sim

import (
	"math"
	"sort"
)

// Lehmer congruential generator parameters: x' = (a*x + c) mod m.
const (
	lcgMultiplier int64 = 16807
	lcgIncrement  int64 = 0
	lcgModulus    int64 = 1<<31 - 1

	// GlobalSeed is the x0 every stream partition is carved out of.
	GlobalSeed int64 = 1234567

	// DefaultStreamBlockSize is the distance, in draws, between the starts of
	// two consecutive streams.
	DefaultStreamBlockSize = 100000
)

// === Stream identifiers ===

// StreamID is the index in the base sequence where a stream starts.
// Streams are keyed by their start index so a SeedMap reads like the
// partition it came from: 0, b, 2b, ...
type StreamID int

// Stream assignments for the default topology, at the default block size.
const (
	StreamInspector1C1   StreamID = 0
	StreamInspector2C2   StreamID = 100000
	StreamInspector2C3   StreamID = 200000
	StreamWorkstation1   StreamID = 300000
	StreamWorkstation2   StreamID = 400000
	StreamWorkstation3   StreamID = 500000
	StreamInspector2Type StreamID = 600000

	// DefaultStreamCount is the number of streams the default topology draws from.
	DefaultStreamCount = 7
)

// SeedMap maps each stream to the generator state it should resume from.
type SeedMap map[StreamID]int64

// Clone returns an independent copy of m.
func (m SeedMap) Clone() SeedMap {
	out := make(SeedMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Streams returns the stream ids in ascending order.
func (m SeedMap) Streams() []StreamID {
	ids := make([]StreamID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// GenerateStreams partitions the base sequence starting at GlobalSeed into
// numStreams streams of blockSize draws each.
func GenerateStreams(blockSize, numStreams int) SeedMap {
	return GenerateStreamsFrom(GlobalSeed, blockSize, numStreams)
}

// GenerateStreamsFrom partitions the sequence starting at x0. The seed for
// stream i is the state reached after i*blockSize steps of the recurrence,
// keyed by i*blockSize.
func GenerateStreamsFrom(x0 int64, blockSize, numStreams int) SeedMap {
	seeds := make(SeedMap, numStreams)
	x := normalizeSeed(x0)
	for i := 0; i < numStreams; i++ {
		if i > 0 {
			for j := 0; j < blockSize; j++ {
				x = lcgStep(x)
			}
		}
		seeds[StreamID(i*blockSize)] = x
	}
	return seeds
}

// === Generator ===

// Generator is a deterministic exponential variate source.
//
// Thread-safety: NOT thread-safe. Each entity owns its own Generator and
// only the engine's dispatch loop draws from it.
type Generator struct {
	xi   int64   // current state of the recurrence
	rate float64 // lambda of the exponential distribution
}

// NewGenerator creates a generator resuming from seed with exponential rate
// lambda. lambda must be positive and seed must not be a multiple of the
// modulus (the multiplicative recurrence never leaves zero).
func NewGenerator(seed int64, lambda float64) (*Generator, error) {
	if !(lambda > 0) || math.IsInf(lambda, 0) {
		return nil, configErrorf("rate must be positive and finite, got %v", lambda)
	}
	x := normalizeSeed(seed)
	if x == 0 {
		return nil, configErrorf("seed %d is congruent to 0 mod %d", seed, lcgModulus)
	}
	return &Generator{xi: x, rate: lambda}, nil
}

// Uniform advances the recurrence and returns r = x/(m+1), which lies
// strictly inside (0, 1).
func (g *Generator) Uniform() float64 {
	g.xi = lcgStep(g.xi)
	return float64(g.xi) / float64(lcgModulus+1)
}

// Exponential returns the next exponential variate with mean 1/rate.
func (g *Generator) Exponential() float64 {
	return -math.Log(g.Uniform()) / g.rate
}

// State returns the current recurrence state. Handing it to NewGenerator
// continues the same sequence.
func (g *Generator) State() int64 { return g.xi }

// Rate returns the exponential rate lambda.
func (g *Generator) Rate() float64 { return g.rate }

func lcgStep(x int64) int64 {
	return (lcgMultiplier*x + lcgIncrement) % lcgModulus
}

func normalizeSeed(seed int64) int64 {
	x := seed % lcgModulus
	if x < 0 {
		x += lcgModulus
	}
	return x
}
