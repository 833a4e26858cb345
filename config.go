package neatbird

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidObstacleConfig is returned when the pipe parameters can not produce
// a playable gap inside the screen.
var ErrInvalidObstacleConfig = errors.New("invalid obstacle config")

// Config holds every tunable of the game and the evaluation harness.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Bird      BirdConfig      `yaml:"bird"`
	Pipes     PipeConfig      `yaml:"pipes"`
	Ground    GroundConfig    `yaml:"ground"`
	Fitness   FitnessConfig   `yaml:"fitness"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	TPS    int `yaml:"tps"`
}

// PhysicsConfig holds the bird's vertical motion parameters.
type PhysicsConfig struct {
	JumpVelocity     float64 `yaml:"jump_velocity"`
	Gravity          float64 `yaml:"gravity"`
	TerminalVelocity float64 `yaml:"terminal_velocity"` // max downward displacement per tick
	AscentBoost      float64 `yaml:"ascent_boost"`      // extra lift applied while rising
	MaxRotation      float64 `yaml:"max_rotation"`
	MinRotation      float64 `yaml:"min_rotation"`
	RotationVelocity float64 `yaml:"rotation_velocity"`
	TiltMargin       float64 `yaml:"tilt_margin"`
}

// BirdConfig defines where birds spawn and their sprite size.
type BirdConfig struct {
	X             float64 `yaml:"x"`
	Y             float64 `yaml:"y"`
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	AnimationTime int     `yaml:"animation_time"`
}

// PipeConfig defines obstacle generation.
type PipeConfig struct {
	SpawnX   float64 `yaml:"spawn_x"`
	Velocity float64 `yaml:"velocity"`
	Gap      float64 `yaml:"gap"`
	GapMin   int     `yaml:"gap_min"`
	GapMax   int     `yaml:"gap_max"`
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
}

// GroundConfig defines the scrolling floor.
type GroundConfig struct {
	Y        float64 `yaml:"y"`
	Width    float64 `yaml:"width"`
	Velocity float64 `yaml:"velocity"`
}

// FitnessConfig holds the rewards granted to genomes during an episode.
type FitnessConfig struct {
	Survival  float64 `yaml:"survival"`  // per tick alive
	Collision float64 `yaml:"collision"` // when hitting a pipe
	Pass      float64 `yaml:"pass"`      // to every survivor when a pipe is passed
}

// OptimizerConfig holds the numeric fields the evolution drivers need.
type OptimizerConfig struct {
	PopulationSize   int     `yaml:"population_size"`
	Generations      int     `yaml:"generations"`
	FitnessThreshold float64 `yaml:"fitness_threshold"`
}

// DefaultConfig returns the embedded defaults.
func DefaultConfig() *Config {
	cfg, err := LoadConfig("")
	if err != nil {
		panic(fmt.Sprintf("neatbird: broken embedded defaults: %v", err))
	}
	return cfg
}

// LoadConfig loads configuration from a YAML file, merging it over the embedded
// defaults. If path is empty, only the defaults are used.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the obstacle parameters leave a reachable gap.
func (c *Config) Validate() error {
	p := c.Pipes
	switch {
	case p.Gap <= 0:
		return fmt.Errorf("%w: gap must be positive, got %v", ErrInvalidObstacleConfig, p.Gap)
	case p.GapMin < 0 || p.GapMin > p.GapMax:
		return fmt.Errorf("%w: gap range [%d,%d]", ErrInvalidObstacleConfig, p.GapMin, p.GapMax)
	case float64(p.GapMax)+p.Gap > c.Ground.Y:
		return fmt.Errorf("%w: gap range [%d,%d] + %v goes below the ground at %v",
			ErrInvalidObstacleConfig, p.GapMin, p.GapMax, p.Gap, c.Ground.Y)
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("%w: pipe size %dx%d", ErrInvalidObstacleConfig, p.Width, p.Height)
	case p.Velocity <= 0:
		return fmt.Errorf("%w: pipe velocity must be positive, got %v", ErrInvalidObstacleConfig, p.Velocity)
	}
	if c.Bird.Width <= 0 || c.Bird.Height <= 0 {
		return fmt.Errorf("bird size %dx%d must be positive", c.Bird.Width, c.Bird.Height)
	}
	if c.Ground.Width <= 0 {
		return fmt.Errorf("ground width must be positive, got %v", c.Ground.Width)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
