package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RoundConfig is the immutable tuning of one rhythm round.
type RoundConfig struct {
	Round              int     `yaml:"round" json:"round"`
	FallMs             int64   `yaml:"fall_ms" json:"fallMs"`                           // spawn → hit line
	SpawnIntervalScale float64 `yaml:"spawn_interval_scale" json:"spawnIntervalScale"` // beat interval divisor
	HazardSpeed        float64 `yaml:"hazard_speed" json:"hazardSpeed"`                 // screen percent per second
	DurationMs         int64   `yaml:"duration_ms" json:"durationMs"`
}

// RoundTable is the static per-round lookup. Rounds are numbered from 1.
type RoundTable struct {
	rounds []RoundConfig
}

type roundFile struct {
	Rounds []RoundConfig `yaml:"rounds"`
}

// LoadRoundTable loads rounds.yaml.
func LoadRoundTable(path string) (*RoundTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rounds: read %s: %w", path, err)
	}
	var f roundFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("rounds: parse %s: %w", path, err)
	}
	return NewRoundTable(f.Rounds)
}

// NewRoundTable validates rounds and numbers them in order.
func NewRoundTable(rounds []RoundConfig) (*RoundTable, error) {
	if len(rounds) == 0 {
		return nil, fmt.Errorf("rounds: table is empty")
	}
	t := &RoundTable{rounds: make([]RoundConfig, len(rounds))}
	for i, r := range rounds {
		if r.FallMs <= 0 || r.SpawnIntervalScale <= 0 || r.HazardSpeed <= 0 || r.DurationMs <= 0 {
			return nil, fmt.Errorf("rounds: round %d has non-positive tuning %+v", i+1, r)
		}
		r.Round = i + 1
		t.rounds[i] = r
	}
	return t, nil
}

// DefaultRoundTable is the built-in three round ramp.
func DefaultRoundTable() *RoundTable {
	t, _ := NewRoundTable([]RoundConfig{
		{FallMs: 2500, SpawnIntervalScale: 1.0, HazardSpeed: 35, DurationMs: 30000},
		{FallMs: 2200, SpawnIntervalScale: 1.15, HazardSpeed: 45, DurationMs: 30000},
		{FallMs: 1900, SpawnIntervalScale: 1.3, HazardSpeed: 55, DurationMs: 30000},
	})
	return t
}

// Get returns the config of round n, clamped into the table.
func (t *RoundTable) Get(n int) RoundConfig {
	if n < 1 {
		n = 1
	}
	if n > len(t.rounds) {
		n = len(t.rounds)
	}
	return t.rounds[n-1]
}

// Count returns the number of rounds.
func (t *RoundTable) Count() int {
	return len(t.rounds)
}
