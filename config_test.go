package neatbird

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Screen.Width != 500 || cfg.Screen.Height != 800 || cfg.Screen.TPS != 30 {
		t.Errorf("unexpected screen: %+v", cfg.Screen)
	}
	if cfg.Physics.JumpVelocity != -10.5 || cfg.Physics.TerminalVelocity != 16 {
		t.Errorf("unexpected physics: %+v", cfg.Physics)
	}
	if cfg.Pipes.Gap != 200 || cfg.Pipes.GapMin != 50 || cfg.Pipes.GapMax != 450 {
		t.Errorf("unexpected pipes: %+v", cfg.Pipes)
	}
	if cfg.Fitness != (FitnessConfig{Survival: 0.1, Collision: -1, Pass: 5}) {
		t.Errorf("unexpected fitness: %+v", cfg.Fitness)
	}
}

func TestLoadConfig_merge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("pipes:\n  gap: 150\nfitness:\n  pass: 10\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Pipes.Gap != 150 || cfg.Fitness.Pass != 10 {
		t.Errorf("overrides not applied: %+v %+v", cfg.Pipes, cfg.Fitness)
	}
	if cfg.Pipes.GapMax != 450 || cfg.Fitness.Survival != 0.1 || cfg.Bird.X != 230 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadConfig_invalid(t *testing.T) {
	for name, content := range map[string]string{
		"zero gap":         "pipes:\n  gap: 0\n",
		"inverted range":   "pipes:\n  gap_min: 400\n  gap_max: 100\n",
		"below the ground": "pipes:\n  gap_max: 600\n",
	} {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidObstacleConfig) {
			t.Errorf("%s: unexpected error %v", name, err)
		}
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expecting an error for a missing file")
	}
}

func TestConfig_WriteYAML(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bird.Y = 300
	cfg.Optimizer.PopulationSize = 150

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, loaded) {
		t.Errorf("unexpected config: %+v", loaded)
	}
}
