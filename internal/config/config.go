package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fullweasel/server/internal/physics"
)

// ErrUnknownMode is returned by Validate for an interaction mode other than
// "tap" or "zone".
var ErrUnknownMode = errors.New("unknown interaction mode")

const (
	ModeTap  = "tap"  // active-tap timing judgment
	ModeZone = "zone" // lane co-location auto-collection
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Network  NetworkConfig  `toml:"network"`
	Assets   AssetsConfig   `toml:"assets"`
	Data     DataConfig     `toml:"data"`
	Trace    TraceConfig    `toml:"trace"`
	Logging  LoggingConfig  `toml:"logging"`
	Gameplay GameplayConfig `toml:"gameplay"`
}

type ServerConfig struct {
	Name    string `toml:"name"`
	Honoree string `toml:"honoree"` // shown on the victory banner
	Seed    int64  `toml:"seed"`    // 0 = seed from wall clock
}

type NetworkConfig struct {
	BindAddress        string        `toml:"bind_address"`
	TickRate           time.Duration `toml:"tick_rate"`
	InQueueSize        int           `toml:"in_queue_size"`
	OutQueueSize       int           `toml:"out_queue_size"`
	MaxMessagesPerTick int           `toml:"max_messages_per_tick"`
	SnapshotEvery      int           `toml:"snapshot_every"` // ticks between snapshot broadcasts
	WriteTimeout       time.Duration `toml:"write_timeout"`
	ReadTimeout        time.Duration `toml:"read_timeout"`
	DebugHooks         bool          `toml:"debug_hooks"`
}

type AssetsConfig struct {
	PublicDir         string        `toml:"public_dir"`
	Manifest          string        `toml:"manifest"` // file path or http(s) URL
	ProbeTimeout      time.Duration `toml:"probe_timeout"`
	SlideshowInterval time.Duration `toml:"slideshow_interval"`
}

type DataConfig struct {
	Rounds  string `toml:"rounds"`
	Lines   string `toml:"lines"`
	Stages  string `toml:"stages"`
	Scripts string `toml:"scripts"`
}

type TraceConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// GameplayConfig holds every tuning constant of the simulation core. Times are
// logical clock milliseconds; positions are screen percentages.
type GameplayConfig struct {
	Mode string `toml:"mode"` // "tap" or "zone"

	MaxDeltaMs int64 `toml:"max_delta_ms"` // per-tick clock clamp

	BeatMs             int64 `toml:"beat_ms"`
	HazardIntervalMs   int64 `toml:"hazard_interval_ms"` // 0 disables hazards
	HazardFirstDelayMs int64 `toml:"hazard_first_delay_ms"`

	HitWindowMs     int64   `toml:"hit_window_ms"`
	PerfectWindowMs int64   `toml:"perfect_window_ms"`
	MissTolerance   float64 `toml:"miss_tolerance"` // progress past 1.0 before an unresolved entity is culled
	ResolvedGrace   float64 `toml:"resolved_grace"` // progress past 1.0 a resolved entity stays visible

	PerfectAward  float64 `toml:"perfect_award"`
	GoodAward     float64 `toml:"good_award"`
	CollectAward  float64 `toml:"collect_award"`
	DodgeAward    float64 `toml:"dodge_award"`
	HazardPenalty float64 `toml:"hazard_penalty"`
	MissPenalty   float64 `toml:"miss_penalty"`

	HitReactionMs int64   `toml:"hit_reaction_ms"`
	JumpMs        int64   `toml:"jump_ms"`
	JumpHeight    float64 `toml:"jump_height"`

	DodgeTolerance float64 `toml:"dodge_tolerance"`
	ZoneTop        float64 `toml:"zone_top"`
	ZoneBottom     float64 `toml:"zone_bottom"`

	GraceMeterThreshold float64 `toml:"grace_meter_threshold"`
	StripFinaleDelayMs  int64   `toml:"strip_finale_delay_ms"`

	CensorDelayMs   int64   `toml:"censor_delay_ms"`
	PropDropDelayMs int64   `toml:"prop_drop_delay_ms"`
	PropStartY      float64 `toml:"prop_start_y"`
	PropRestY       float64 `toml:"prop_rest_y"`
	PropGravity     float64 `toml:"prop_gravity"`
	PropDamping     float64 `toml:"prop_damping"`
	PropEpsilon     float64 `toml:"prop_epsilon"`
	PropStepMs      int64   `toml:"prop_step_ms"`
	EndDelayMs      int64   `toml:"end_delay_ms"`
	ConfettiCount   int     `toml:"confetti_count"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Gameplay.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration used when no file is supplied.
func Default() *Config {
	return defaults()
}

// Validate rejects tuning combinations the simulation cannot run with.
func (g GameplayConfig) Validate() error {
	if g.Mode != ModeTap && g.Mode != ModeZone {
		return fmt.Errorf("%w %q", ErrUnknownMode, g.Mode)
	}
	if g.MaxDeltaMs <= 0 {
		return fmt.Errorf("max_delta_ms must be positive, got %d", g.MaxDeltaMs)
	}
	if g.BeatMs <= 0 {
		return fmt.Errorf("beat_ms must be positive, got %d", g.BeatMs)
	}
	if g.HazardIntervalMs < 0 {
		return fmt.Errorf("hazard_interval_ms must not be negative, got %d", g.HazardIntervalMs)
	}
	if g.PerfectWindowMs > g.HitWindowMs {
		return fmt.Errorf("perfect_window_ms %d wider than hit_window_ms %d", g.PerfectWindowMs, g.HitWindowMs)
	}
	if g.ZoneTop >= g.ZoneBottom {
		return fmt.Errorf("zone band inverted: top %.1f >= bottom %.1f", g.ZoneTop, g.ZoneBottom)
	}
	if g.PropDamping <= 0 || g.PropDamping >= 1 {
		return fmt.Errorf("prop_damping must be in (0,1), got %.2f", g.PropDamping)
	}
	if g.PropGravity <= 0 {
		return fmt.Errorf("prop_gravity must be positive, got %.2f", g.PropGravity)
	}
	if g.PropStartY >= g.PropRestY {
		return fmt.Errorf("prop_start_y %.1f must be above prop_rest_y %.1f", g.PropStartY, g.PropRestY)
	}
	// Rebounds shrink toward MaxRebound; a smaller epsilon may never be met.
	bounce := physics.BounceParams{Gravity: g.PropGravity, Damping: g.PropDamping}
	if g.PropEpsilon <= bounce.MaxRebound() {
		return fmt.Errorf("prop_epsilon %.3f must exceed %.3f for the prop to settle", g.PropEpsilon, bounce.MaxRebound())
	}
	if g.PropStepMs <= 0 {
		return fmt.Errorf("prop_step_ms must be positive, got %d", g.PropStepMs)
	}
	if g.JumpMs <= 0 {
		return fmt.Errorf("jump_ms must be positive, got %d", g.JumpMs)
	}
	return nil
}

// DefaultGameplay returns the stock tuning table.
func DefaultGameplay() GameplayConfig {
	return defaults().Gameplay
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name:    "The Full Weasel",
			Honoree: "Nana Cheese",
		},
		Network: NetworkConfig{
			BindAddress:        "0.0.0.0:8080",
			TickRate:           16 * time.Millisecond,
			InQueueSize:        64,
			OutQueueSize:       128,
			MaxMessagesPerTick: 16,
			SnapshotEvery:      2,
			WriteTimeout:       10 * time.Second,
			ReadTimeout:        60 * time.Second,
			DebugHooks:         true,
		},
		Assets: AssetsConfig{
			PublicDir:         "public",
			Manifest:          "public/assets/manifest.json",
			ProbeTimeout:      2600 * time.Millisecond,
			SlideshowInterval: 1400 * time.Millisecond,
		},
		Data: DataConfig{
			Rounds:  "data/yaml/rounds.yaml",
			Lines:   "data/yaml/lines.yaml",
			Stages:  "data/yaml/stages.yaml",
			Scripts: "scripts",
		},
		Trace: TraceConfig{
			Enabled: false,
			Dir:     "traces",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Gameplay: GameplayConfig{
			Mode:       ModeTap,
			MaxDeltaMs: 100,

			BeatMs:             650,
			HazardIntervalMs:   5200,
			HazardFirstDelayMs: 3900,

			HitWindowMs:     430,
			PerfectWindowMs: 140,
			MissTolerance:   0.08,
			ResolvedGrace:   0.28,

			PerfectAward:  12,
			GoodAward:     9,
			CollectAward:  8,
			DodgeAward:    5,
			HazardPenalty: 7,
			MissPenalty:   0,

			HitReactionMs: 260,
			JumpMs:        620,
			JumpHeight:    18,

			DodgeTolerance: 7,
			ZoneTop:        78,
			ZoneBottom:     94,

			GraceMeterThreshold: 60,
			StripFinaleDelayMs:  900,

			CensorDelayMs:   1200,
			PropDropDelayMs: 1800,
			PropStartY:      -20,
			PropRestY:       62,
			PropGravity:     0.35,
			PropDamping:     0.55,
			PropEpsilon:     0.6,
			PropStepMs:      16,
			EndDelayMs:      1500,
			ConfettiCount:   72,
		},
	}
}
