package flags

import (
	"errors"
	"io"
	"strings"
	"testing"

	"IceVision/shared/config"
	"IceVision/shared/mesh"
)

func TestStrategyUsage(t *testing.T) {
	f := NewFlagSet(io.Discard).Lookup("strategy")
	if f == nil {
		t.Fatal("flag -strategy não declarada")
	}
	if !strings.Contains(f.Usage, "ruído") {
		t.Errorf("uso de -strategy = %q, want menção a ruído", f.Usage)
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(*config.Config) bool
	}{
		{"sem flags mantém o padrão", nil, func(c *config.Config) bool {
			return c.ServerURL == "" && c.InitialLevel == 0 && c.Strategy == mesh.StrategySingle
		}},
		{"modo remoto", []string{"-server", "ws://localhost:8080/ws"}, func(c *config.Config) bool {
			return c.ServerURL == "ws://localhost:8080/ws"
		}},
		{"geração", []string{"-strategy", "layered", "-level", "2", "-period", "5"}, func(c *config.Config) bool {
			return c.Strategy == mesh.StrategyLayered && c.InitialLevel == 2 && c.RegenPeriod == 5
		}},
		{"janela e debug", []string{"-width", "800", "-height", "600", "-fullscreen", "-debug", "-speed", "fast"}, func(c *config.Config) bool {
			return c.WindowWidth == 800 && c.WindowHeight == 600 && c.Fullscreen && c.ShowDebugInfo && c.MovementSpeed == "fast"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			if err := Apply(cfg, tt.args, io.Discard); err != nil {
				t.Fatalf("Apply(%v) erro: %v", tt.args, err)
			}
			if !tt.check(cfg) {
				t.Errorf("Apply(%v) = %+v", tt.args, cfg)
			}
		})
	}
}

func TestApplyRejectsInvalid(t *testing.T) {
	tests := [][]string{
		{"-level", "3"},
		{"-strategy", "perlin"},
		{"-speed", "warp"},
	}
	for _, args := range tests {
		if err := Apply(config.DefaultConfig(), args, io.Discard); !errors.Is(err, mesh.ErrInvalidArgument) {
			t.Errorf("Apply(%v) err = %v, want ErrInvalidArgument", args, err)
		}
	}
}
