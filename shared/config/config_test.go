package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"IceVision/shared/mesh"
	"IceVision/shared/regen"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if cfg.Period() != regen.DefaultPeriod {
		t.Errorf("Period() = %v, want %v", cfg.Period(), regen.DefaultPeriod)
	}
	if cfg.Speed() != 0.05 {
		t.Errorf("Speed() = %v, want 0.05", cfg.Speed())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"raio zero", func(c *Config) { c.Radius = 0 }},
		{"epsilon negativo", func(c *Config) { c.Epsilon = -1 }},
		{"nível inicial fora da faixa", func(c *Config) { c.InitialLevel = 3 }},
		{"estratégia desconhecida", func(c *Config) { c.Strategy = "perlin" }},
		{"bucket negativo", func(c *Config) { c.Buckets = []float64{-0.1} }},
		{"velocidade desconhecida", func(c *Config) { c.MovementSpeed = "warp" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, mesh.ErrInvalidArgument) {
				t.Errorf("Validate() = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.Strategy = mesh.StrategyLayered
	cfg.RegenPeriod = 5
	cfg.MovementSpeed = "fast"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Strategy != mesh.StrategyLayered || got.Period() != 5*time.Second || got.Speed() != 0.07 {
		t.Errorf("LoadFrom = %+v", got)
	}

	opts := got.RegenOptions()
	if opts.Strategy != mesh.StrategyLayered || opts.Radius != 50 {
		t.Errorf("RegenOptions() = %+v", opts)
	}
}

func TestLoadFromFallbacks(t *testing.T) {
	dir := t.TempDir()

	if cfg, err := LoadFrom(filepath.Join(dir, "ausente.json")); err == nil || cfg.Radius != 50 {
		t.Errorf("arquivo ausente: cfg = %+v, err = %v", cfg, err)
	}

	bad := filepath.Join(dir, "ruim.json")
	os.WriteFile(bad, []byte("{radius:"), 0644)
	if cfg, err := LoadFrom(bad); err == nil || cfg.Strategy != mesh.StrategySingle {
		t.Errorf("json inválido: cfg = %+v, err = %v", cfg, err)
	}

	partial := filepath.Join(dir, "parcial.json")
	os.WriteFile(partial, []byte(`{"radius": 20}`), 0644)
	cfg, err := LoadFrom(partial)
	if err != nil || cfg.Radius != 20 || cfg.TargetFPS != 60 {
		t.Errorf("json parcial: cfg = %+v, err = %v", cfg, err)
	}
}
