// Package flags aplica a linha de comando do cliente sobre a configuração salva.
package flags

import (
	"flag"
	"io"

	"IceVision/shared/config"
)

// NewFlagSet declara as flags do cliente.
func NewFlagSet(output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("cliente", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.String("server", "", "URL do servidor IceVision (ex: ws://localhost:8080/ws); vazio gera localmente")
	fs.Bool("fullscreen", false, "Iniciar em tela cheia")
	fs.Bool("debug", false, "Câmera orbital, eixos e grade")
	fs.Int("width", 0, "Largura da janela")
	fs.Int("height", 0, "Altura da janela")
	fs.String("strategy", "", "Estratégia de ruído (single ou layered)")
	fs.Int("level", -1, "Nível de detalhe inicial (0-2)")
	fs.Int("period", 0, "Segundos entre regenerações automáticas")
	fs.String("speed", "", "Velocidade de rotação (slow, medium ou fast)")
	return fs
}

// Apply lê args e sobrescreve só os campos passados explicitamente.
// O resultado é validado.
func Apply(cfg *config.Config, args []string, output io.Writer) error {
	fs := NewFlagSet(output)
	if err := fs.Parse(args); err != nil {
		return err
	}

	get := func(name string) flag.Getter {
		return fs.Lookup(name).Value.(flag.Getter)
	}

	if v := get("server").Get().(string); v != "" {
		cfg.ServerURL = v
	}
	if get("fullscreen").Get().(bool) {
		cfg.Fullscreen = true
	}
	if get("debug").Get().(bool) {
		cfg.ShowDebugInfo = true
	}
	if v := get("width").Get().(int); v > 0 {
		cfg.WindowWidth = int32(v)
	}
	if v := get("height").Get().(int); v > 0 {
		cfg.WindowHeight = int32(v)
	}
	if v := get("strategy").Get().(string); v != "" {
		cfg.Strategy = v
	}
	if v := get("level").Get().(int); v >= 0 {
		cfg.InitialLevel = v
	}
	if v := get("period").Get().(int); v > 0 {
		cfg.RegenPeriod = v
	}
	if v := get("speed").Get().(string); v != "" {
		cfg.MovementSpeed = v
	}

	return cfg.Validate()
}
