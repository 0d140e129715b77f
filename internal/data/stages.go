package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Stage is one costume piece removed during the strip finale.
type Stage struct {
	Name      string `yaml:"name" json:"name"`
	Role      string `yaml:"role" json:"role"` // overlay sprite role for the pop burst
	Threshold int    `yaml:"threshold" json:"threshold"`
}

// StageTable holds the ordered removal sequence.
type StageTable struct {
	stages []Stage
}

type stageFile struct {
	Stages []Stage `yaml:"stages"`
}

// LoadStageTable loads stages.yaml.
func LoadStageTable(path string) (*StageTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("stages: read %s: %w", path, err)
	}
	var f stageFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("stages: parse %s: %w", path, err)
	}
	return NewStageTable(f.Stages)
}

// NewStageTable requires strictly increasing positive thresholds so one tap
// can cross at most one stage.
func NewStageTable(stages []Stage) (*StageTable, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("stages: table is empty")
	}
	prev := 0
	for i, s := range stages {
		if s.Threshold <= prev {
			return nil, fmt.Errorf("stages: stage %d (%s) threshold %d not above %d", i, s.Name, s.Threshold, prev)
		}
		prev = s.Threshold
	}
	return &StageTable{stages: append([]Stage(nil), stages...)}, nil
}

// DefaultStageTable removes hat, bowtie, then sweater.
func DefaultStageTable() *StageTable {
	t, _ := NewStageTable([]Stage{
		{Name: "hat", Role: "overlay_party_hat", Threshold: 6},
		{Name: "bowtie", Role: "overlay_bowtie", Threshold: 11},
		{Name: "sweater", Role: "overlay_birthday_sweater", Threshold: 16},
	})
	return t
}

// Get returns stage i (0-based).
func (t *StageTable) Get(i int) Stage {
	return t.stages[i]
}

// Final returns the threshold of the last stage.
func (t *StageTable) Final() int {
	return t.stages[len(t.stages)-1].Threshold
}

// Thresholds returns all thresholds in order.
func (t *StageTable) Thresholds() []int {
	out := make([]int, len(t.stages))
	for i, s := range t.stages {
		out[i] = s.Threshold
	}
	return out
}

// Count returns the number of stages.
func (t *StageTable) Count() int {
	return len(t.stages)
}
