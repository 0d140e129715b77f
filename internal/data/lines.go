package data

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"
)

// Pool names one themed set of feedback lines.
type Pool string

const (
	PoolWelcome   Pool = "welcome"
	PoolStart     Pool = "start"
	PoolSuccess   Pool = "success"
	PoolHazardHit Pool = "hazard_hit"
	PoolDodge     Pool = "dodge"
	PoolMiss      Pool = "miss"
	PoolTapMiss   Pool = "tap_miss"
	PoolQuote     Pool = "quote"
	PoolStrip     Pool = "strip"
	PoolStage     Pool = "stage"
	PoolOvertime  Pool = "overtime"
)

// LineTable maps pools to their lines.
type LineTable struct {
	pools map[Pool][]string
}

// LoadLineTable loads lines.yaml: a mapping of pool name → list of lines.
// Pools missing from the file keep their built-in lines.
func LoadLineTable(path string) (*LineTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lines: read %s: %w", path, err)
	}
	var f map[string][]string
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("lines: parse %s: %w", path, err)
	}
	t := DefaultLineTable()
	for name, lines := range f {
		if len(lines) == 0 {
			continue
		}
		t.pools[Pool(name)] = append([]string(nil), lines...)
	}
	return t, nil
}

// DefaultLineTable returns the built-in pools.
func DefaultLineTable() *LineTable {
	return &LineTable{pools: map[Pool][]string{
		PoolWelcome:   {"Welcome to The Full Weasel"},
		PoolStart:     {"Tap left and right on beat!"},
		PoolSuccess:   {"Birthday legend!", "Party animal!", "Hot stuff!"},
		PoolHazardHit: {"We're gonna need a bigger cake.", "Wrong party, buddy.", "Ouch! Watch the fin."},
		PoolDodge:     {"Shark dodged. Cake saved!", "Too slow, fishface!", "Hop, skip and a party!"},
		PoolMiss:      {"Keep the groove going!"},
		PoolTapMiss:   {"Feel the groove!"},
		PoolQuote: {
			"\"Age is merely the number of years the world has been enjoying you.\"",
			"\"You are only young once, but you can be immature forever.\"",
			"\"The more you praise and celebrate your life, the more there is to celebrate.\"",
		},
		PoolStrip:    {"THIS IS THE BEST BIRTHDAY EVER!"},
		PoolStage:    {"Pop!", "Off it goes!", "Woo!"},
		PoolOvertime: {"One more round. Bring it home!"},
	}}
}

// Lines returns the lines of a pool (nil when unknown).
func (t *LineTable) Lines(p Pool) []string {
	return t.pools[p]
}

// Pick selects a line uniformly at random. Empty pools yield "".
func (t *LineTable) Pick(p Pool, rng *rand.Rand) string {
	lines := t.Lines(p)
	switch len(lines) {
	case 0:
		return ""
	case 1:
		return lines[0]
	}
	return lines[rng.Intn(len(lines))]
}

// Count returns the number of pools.
func (t *LineTable) Count() int {
	return len(t.pools)
}
