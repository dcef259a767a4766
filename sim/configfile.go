package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RunFile holds the overridable parts of a run, loadable from YAML.
// Nil pointer fields mean "not set in YAML" and leave the Config untouched.
// Topology wiring is fixed; only rates can be changed per entity.
type RunFile struct {
	Horizon         *float64                `yaml:"horizon"`
	Warmup          *float64                `yaml:"warmup"`
	Policy          string                  `yaml:"policy"`
	Replications    *int                    `yaml:"replications"`
	InitialSeed     *int64                  `yaml:"initial_seed"`
	StreamBlockSize *int                    `yaml:"stream_block_size"`
	Inspectors      []InspectorRateConfig   `yaml:"inspectors"`
	Workstations    []WorkstationRateConfig `yaml:"workstations"`
}

// InspectorRateConfig overrides cleaning rates, keyed by component type name.
type InspectorRateConfig struct {
	ID    int                `yaml:"id"`
	Rates map[string]float64 `yaml:"rates"`
}

// WorkstationRateConfig overrides a workstation's service rate.
type WorkstationRateConfig struct {
	ID   int     `yaml:"id"`
	Rate float64 `yaml:"rate"`
}

// LoadRunFile reads and strictly parses a YAML run file; unknown keys are
// errors so typos do not silently fall back to defaults.
func LoadRunFile(path string) (*RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading run file: %v", ErrConfig, err)
	}
	var rf RunFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&rf); err != nil {
		return nil, fmt.Errorf("%w: parsing run file %s: %v", ErrConfig, path, err)
	}
	if err := rf.Validate(); err != nil {
		return nil, err
	}
	return &rf, nil
}

// Validate checks value ranges that do not depend on a Config.
func (rf *RunFile) Validate() error {
	if _, err := ParseSelectionPolicy(rf.Policy); err != nil {
		return err
	}
	if rf.Replications != nil && *rf.Replications < 1 {
		return configErrorf("replications must be at least 1, got %d", *rf.Replications)
	}
	if rf.StreamBlockSize != nil && *rf.StreamBlockSize < 1 {
		return configErrorf("stream_block_size must be at least 1, got %d", *rf.StreamBlockSize)
	}
	if rf.InitialSeed != nil && normalizeSeed(*rf.InitialSeed) == 0 {
		return configErrorf("initial_seed %d is congruent to 0 mod %d", *rf.InitialSeed, lcgModulus)
	}
	return nil
}

// Apply overlays the file on cfg and returns the result. cfg is not
// modified. The result is validated.
func (rf *RunFile) Apply(cfg Config) (Config, error) {
	out := cfg
	out.Topology = cfg.Topology.Clone()
	if rf.Horizon != nil {
		out.Horizon = *rf.Horizon
	}
	if rf.Warmup != nil {
		out.Warmup = *rf.Warmup
	}
	if rf.Policy != "" {
		p, err := ParseSelectionPolicy(rf.Policy)
		if err != nil {
			return cfg, err
		}
		out.Policy = p
	}
	for _, ic := range rf.Inspectors {
		idx := -1
		for i, in := range out.Topology.Inspectors {
			if in.ID == ic.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return cfg, configErrorf("run file: unknown inspector %d", ic.ID)
		}
		spec := &out.Topology.Inspectors[idx]
		for name, rate := range ic.Rates {
			c, err := ParseComponentType(name)
			if err != nil {
				return cfg, err
			}
			found := false
			for j := range spec.Components {
				if spec.Components[j].Type == c {
					spec.Components[j].Rate = rate
					found = true
				}
			}
			if !found {
				return cfg, configErrorf("run file: inspector %d does not handle %s", ic.ID, c)
			}
		}
	}
	for _, wc := range rf.Workstations {
		found := false
		for i := range out.Topology.Workstations {
			if out.Topology.Workstations[i].ID == wc.ID {
				out.Topology.Workstations[i].Rate = wc.Rate
				found = true
			}
		}
		if !found {
			return cfg, configErrorf("run file: unknown workstation %d", wc.ID)
		}
	}
	if err := out.Validate(); err != nil {
		return cfg, err
	}
	return out, nil
}
