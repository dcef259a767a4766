package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudit_Balanced(t *testing.T) {
	tests := []struct {
		name  string
		audit Audit
		want  bool
	}{
		{"empty line", Audit{}, true},
		{"all accounted", Audit{Arrivals: 10, Departures: 4, InBuffers: 3, HeldByBlocked: 1, PendingCleaning: 1, PendingAssembly: 1}, true},
		{"token lost", Audit{Arrivals: 10, Departures: 4, InBuffers: 3}, false},
		{"token duplicated", Audit{Arrivals: 2, InBuffers: 2, PendingCleaning: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.audit.Balanced())
		})
	}
}

func TestAudit_AtBootstrap(t *testing.T) {
	// GIVEN a simulator that has dispatched both InspectorStarted events
	s, err := NewSimulator(DefaultConfig(), defaultSeeds())
	require.NoError(t, err)
	s.Step()
	s.Step()

	// THEN two components are being cleaned and nothing else exists
	a := s.Audit()
	assert.Equal(t, Audit{Arrivals: 2, PendingCleaning: 2}, a)
	assert.True(t, a.Balanced())
	assert.Equal(t, 2, s.InSystem())
}

func TestAudit_CountsAssemblyPerComponent(t *testing.T) {
	// GIVEN workstation 2 (two buffers) assembling
	s, err := NewSimulator(DefaultConfig(), defaultSeeds())
	require.NoError(t, err)
	ws := s.Workstations()[1]
	for _, b := range ws.buffers {
		b.TryEnqueue(NewToken(b.Accepts, 0))
	}
	s.Schedule(NewWorkstationStartedEvent(0, 0, ws.ID))
	for !ws.Busy() {
		require.True(t, s.Step())
	}

	// THEN its pending WorkstationDone stands for both consumed tokens
	a := s.Audit()
	assert.Equal(t, 2, a.PendingAssembly)
	assert.Equal(t, 2, ws.InFlight())
}

func TestSummary_SteadyStateWindow(t *testing.T) {
	s, err := NewSimulator(shortConfig(5000, 1000), defaultSeeds())
	require.NoError(t, err)
	require.NoError(t, s.Run())

	sm := s.Summary()

	// Departures in the window cannot outnumber everything that was ever
	// picked up, and arrivals in the window are a subset of all pickups.
	total := 0
	for _, in := range s.Inspectors() {
		total += in.PickedUp()
	}
	assert.LessOrEqual(t, sm.Departed, total)
	assert.LessOrEqual(t, sm.ArrivalRate*4000, float64(total))
	assert.Greater(t, sm.AvgTimeInSystem, 0.0)
	assert.InDelta(t, sm.ArrivalRate*sm.AvgTimeInSystem, sm.LittlesProduct(), 1e-12)
}

func TestSummary_NoDeparturesLeavesWZero(t *testing.T) {
	// A window shorter than any cleaning plus assembly has nothing departing.
	s, err := NewSimulator(shortConfig(1e-6, 0), defaultSeeds())
	require.NoError(t, err)
	require.NoError(t, s.Run())

	sm := s.Summary()
	assert.Equal(t, 0, sm.Departed)
	assert.Equal(t, 0.0, sm.AvgTimeInSystem)
	assert.InDelta(t, 2e6, sm.ArrivalRate, 1)
}
