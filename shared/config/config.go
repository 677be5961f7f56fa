package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"IceVision/shared/mesh"
	"IceVision/shared/regen"
)

// Presets de velocidade de rotação (lenta, média, rápida).
var MovementSpeeds = map[string]float32{
	"slow":   0.02,
	"medium": 0.05,
	"fast":   0.07,
}

// Config armazena as configurações do IceVision.
type Config struct {
	// Janela
	WindowWidth  int32  `json:"window_width"`
	WindowHeight int32  `json:"window_height"`
	WindowTitle  string `json:"window_title"`
	Fullscreen   bool   `json:"fullscreen"`
	TargetFPS    int32  `json:"target_fps"`

	// Geração
	Radius         float64   `json:"radius"`
	Epsilon        float64   `json:"epsilon"`
	Strategy       string    `json:"strategy"` // "single" ou "layered"
	Buckets        []float64 `json:"buckets"`
	InitialLevel   int       `json:"initial_level"`
	RegenPeriod    int       `json:"regen_period_seconds"`
	DebounceOnMove bool      `json:"debounce_on_move"` // movimento do ponteiro adia o timer

	// Rotação
	MovementSpeed string `json:"movement_speed"` // slow, medium ou fast

	// Servidor (listen usado pelo servidor, URL pelo cliente em modo remoto)
	ListenAddr  string `json:"listen_addr"`
	ServerURL   string `json:"server_url"`
	JournalPath string `json:"journal_path"` // vazio desativa o histórico

	// Debug
	ShowDebugInfo bool `json:"show_debug_info"`
	ShowGrid      bool `json:"show_grid"`
}

// DefaultConfig retorna a configuração padrão.
func DefaultConfig() *Config {
	return &Config{
		WindowWidth:  1280,
		WindowHeight: 720,
		WindowTitle:  "IceVision",
		Fullscreen:   false,
		TargetFPS:    60,

		Radius:         50,
		Epsilon:        mesh.DefaultEpsilon,
		Strategy:       mesh.StrategySingle,
		Buckets:        append([]float64(nil), mesh.DefaultBuckets...),
		InitialLevel:   0,
		RegenPeriod:    int(regen.DefaultPeriod / time.Second),
		DebounceOnMove: true,

		MovementSpeed: "medium",

		ListenAddr:  ":8080",
		ServerURL:   "",
		JournalPath: filepath.Join("saves", "journal.db"),

		ShowDebugInfo: false,
		ShowGrid:      false,
	}
}

// Validate verifica os campos de geração.
func (c *Config) Validate() error {
	if c.Radius <= 0 {
		return fmt.Errorf("%w: raio %v", mesh.ErrInvalidArgument, c.Radius)
	}
	if c.Epsilon < 0 {
		return fmt.Errorf("%w: epsilon %v", mesh.ErrInvalidArgument, c.Epsilon)
	}
	if err := mesh.DetailLevel(c.InitialLevel).Validate(); err != nil {
		return err
	}
	if _, err := mesh.StrategyFor(c.Strategy, 0, c.Buckets); err != nil {
		return err
	}
	if _, ok := MovementSpeeds[c.MovementSpeed]; !ok {
		return fmt.Errorf("%w: velocidade %q", mesh.ErrInvalidArgument, c.MovementSpeed)
	}
	return nil
}

// RegenOptions converte a configuração nas opções do regenerador.
func (c *Config) RegenOptions() regen.Options {
	opts := regen.DefaultOptions()
	opts.Radius = c.Radius
	opts.Epsilon = c.Epsilon
	opts.Strategy = c.Strategy
	if len(c.Buckets) > 0 {
		opts.Buckets = c.Buckets
	}
	return opts
}

// Period retorna o intervalo de regeneração automática.
func (c *Config) Period() time.Duration {
	if c.RegenPeriod <= 0 {
		return regen.DefaultPeriod
	}
	return time.Duration(c.RegenPeriod) * time.Second
}

// Speed retorna o fator de rotação do preset configurado.
func (c *Config) Speed() float32 {
	if s, ok := MovementSpeeds[c.MovementSpeed]; ok {
		return s
	}
	return MovementSpeeds["medium"]
}

// configPath retorna o caminho do arquivo de configuração.
func configPath() string {
	execDir, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(filepath.Dir(execDir), "config.json")
}

// Load carrega as configurações do arquivo ao lado do executável.
// Se o arquivo não existir, retorna as configurações padrão.
func Load() *Config {
	cfg, err := LoadFrom(configPath())
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// LoadFrom lê um arquivo JSON específico. Campos ausentes ficam com o padrão.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("config %s inválida: %w", path, err)
	}
	return cfg, nil
}

// Save salva as configurações ao lado do executável.
func (c *Config) Save() error {
	return c.SaveTo(configPath())
}

// SaveTo salva as configurações em um arquivo JSON.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
