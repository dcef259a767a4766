package sim

import (
	"fmt"
	"sort"
)

// SelectionPolicy decides which eligible buffer an inspector deposits into.
type SelectionPolicy int

const (
	// RoundRobin scans from a rotating start and moves the start past the
	// buffer used, so successive tokens spread across the buffers.
	RoundRobin SelectionPolicy = iota
	// Priority always scans in the inspector's assigned order.
	Priority
	// ShortestQueue picks the eligible buffer holding the fewest tokens,
	// ties going to the earlier buffer in assigned order.
	ShortestQueue
)

// ValidSelectionPolicies is the set of recognized policy names.
var ValidSelectionPolicies = map[string]SelectionPolicy{
	"round-robin":    RoundRobin,
	"priority":       Priority,
	"shortest-queue": ShortestQueue,
}

// SelectionPolicyNames returns the recognized names, sorted.
func SelectionPolicyNames() []string {
	names := make([]string, 0, len(ValidSelectionPolicies))
	for name := range ValidSelectionPolicies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseSelectionPolicy maps a policy name to its value. The empty string
// selects RoundRobin.
func ParseSelectionPolicy(name string) (SelectionPolicy, error) {
	if name == "" {
		return RoundRobin, nil
	}
	p, ok := ValidSelectionPolicies[name]
	if !ok {
		return 0, configErrorf("unknown selection policy %q (valid: %v)", name, SelectionPolicyNames())
	}
	return p, nil
}

func (p SelectionPolicy) String() string {
	for name, v := range ValidSelectionPolicies {
		if v == p {
			return name
		}
	}
	return fmt.Sprintf("SelectionPolicy(%d)", int(p))
}

// Candidate is the view of one assigned buffer a policy decides on.
type Candidate struct {
	Eligible bool // accepts the token's type
	Full     bool
	Len      int
}

// SelectBuffer returns the index into candidates the token should go to, or
// ok=false when every eligible candidate is full. rotation is the
// round-robin start index and is ignored by the other policies.
func SelectBuffer(p SelectionPolicy, candidates []Candidate, rotation int) (index int, ok bool) {
	n := len(candidates)
	if n == 0 {
		return 0, false
	}
	switch p {
	case RoundRobin:
		start := ((rotation % n) + n) % n
		for k := 0; k < n; k++ {
			i := (start + k) % n
			if candidates[i].Eligible && !candidates[i].Full {
				return i, true
			}
		}
	case Priority:
		for i, c := range candidates {
			if c.Eligible && !c.Full {
				return i, true
			}
		}
	case ShortestQueue:
		best := -1
		for i, c := range candidates {
			if !c.Eligible || c.Full {
				continue
			}
			if best < 0 || c.Len < candidates[best].Len {
				best = i
			}
		}
		if best >= 0 {
			return best, true
		}
	default:
		panic(fmt.Sprintf("SelectBuffer: unknown policy %d", int(p)))
	}
	return 0, false
}
