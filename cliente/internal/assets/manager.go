package assets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// --- Estruturas JSON ---

// TintEntry associa padrões de token ("ICE:<nível>:<estratégia>") a uma cor.
type TintEntry struct {
	Tokens  []string `json:"tokens"`
	Color   string   `json:"color"` // "#rrggbb" ou "#rrggbbaa"
	Comment string   `json:"comment,omitempty"`
}

// SkyboxConfig aponta para as seis faces do skybox.
type SkyboxConfig struct {
	Dir   string            `json:"dir"`
	Faces map[string]string `json:"faces,omitempty"` // pos-x → arquivo; vazio = <face>.jpg
	Size  float32           `json:"size"`
}

// FogConfig descreve a neblina exponencial quadrática (exp2).
type FogConfig struct {
	Color   string   `json:"color"`
	Density *float32 `json:"density,omitempty"` // 0 desliga; ausente = padrão
}

// SceneConfig é o root do scene.json.
type SceneConfig struct {
	Skybox     SkyboxConfig `json:"skybox"`
	Tints      []TintEntry  `json:"tints"`
	Background string       `json:"background"`
	Fog        FogConfig    `json:"fog"`
}

// FaceOrder é a ordem das faces do cubo: +X, -X, +Y, -Y, +Z, -Z.
var FaceOrder = [6]string{"pos-x", "neg-x", "pos-y", "neg-y", "pos-z", "neg-z"}

// DefaultFogDensity é a densidade da neblina preta ao redor do gelo.
const DefaultFogDensity float32 = 0.001

// DefaultTint é a cor do gelo (0xcccccc).
var DefaultTint = [4]uint8{0xcc, 0xcc, 0xcc, 0xff}

// DefaultScene retorna a cena usada quando não há scene.json.
func DefaultScene() SceneConfig {
	return SceneConfig{
		Skybox:     SkyboxConfig{Dir: "assets/skybox", Size: 1000},
		Tints:      []TintEntry{{Tokens: []string{"*"}, Color: "#cccccc"}},
		Background: "#000000",
		Fog:        FogConfig{Color: "#000000"},
	}
}

// --- Manager ---

// Manager responde às consultas de cor e skybox do renderizador.
type Manager struct {
	scene SceneConfig
}

// Default retorna um Manager com a cena padrão.
func Default() *Manager {
	return &Manager{scene: DefaultScene()}
}

// NewManager carrega <configDir>/scene.json. Se o arquivo não existir usa a
// cena padrão; um JSON inválido é erro.
func NewManager(configDir string) (*Manager, error) {
	m := Default()

	data, err := os.ReadFile(filepath.Join(configDir, "scene.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("falha ao ler scene.json: %w", err)
	}
	var conf SceneConfig
	if err := json.Unmarshal(data, &conf); err != nil {
		return nil, fmt.Errorf("falha ao parsear scene.json: %w", err)
	}
	for _, t := range conf.Tints {
		if _, err := ParseColor(t.Color); err != nil {
			return nil, fmt.Errorf("scene.json: %w", err)
		}
	}
	if _, err := ParseColor(conf.Background); conf.Background != "" && err != nil {
		return nil, fmt.Errorf("scene.json: %w", err)
	}
	if _, err := ParseColor(conf.Fog.Color); conf.Fog.Color != "" && err != nil {
		return nil, fmt.Errorf("scene.json: neblina: %w", err)
	}
	if d := conf.Fog.Density; d != nil && *d < 0 {
		return nil, fmt.Errorf("scene.json: densidade da neblina %v negativa", *d)
	}

	if conf.Skybox.Dir != "" {
		m.scene.Skybox.Dir = conf.Skybox.Dir
	}
	if conf.Skybox.Size > 0 {
		m.scene.Skybox.Size = conf.Skybox.Size
	}
	m.scene.Skybox.Faces = conf.Skybox.Faces
	if len(conf.Tints) > 0 {
		m.scene.Tints = conf.Tints
	}
	if conf.Background != "" {
		m.scene.Background = conf.Background
	}
	if conf.Fog.Color != "" {
		m.scene.Fog.Color = conf.Fog.Color
	}
	m.scene.Fog.Density = conf.Fog.Density
	return m, nil
}

// --- Wildcard Matching ---

// matchToken compara um token de consulta contra um padrão com suporte a wildcards (*)
// Formato do token: "ICE:NIVEL:ESTRATEGIA"
func matchToken(pattern, query string) bool {
	if pattern == "*" {
		return true
	}

	patParts := strings.Split(pattern, ":")
	queryParts := strings.Split(query, ":")
	if len(patParts) != len(queryParts) {
		return false
	}

	for i := range patParts {
		if patParts[i] == "*" {
			continue
		}
		if patParts[i] != queryParts[i] {
			return false
		}
	}
	return true
}

// specificityScore conta os segmentos que não são wildcard.
func specificityScore(pattern string) int {
	if pattern == "*" {
		return 0
	}
	score := 0
	for _, p := range strings.Split(pattern, ":") {
		if p != "*" {
			score++
		}
	}
	return score
}

// --- Consultas Públicas ---

// TintToken monta o token consultado para um nível e estratégia.
func TintToken(level int, strategy string) string {
	return fmt.Sprintf("ICE:%d:%s", level, strategy)
}

// Tint retorna a cor do padrão mais específico que casa com o token.
func (m *Manager) Tint(level int, strategy string) [4]uint8 {
	token := TintToken(level, strategy)
	best := ""
	bestScore := -1
	for _, entry := range m.scene.Tints {
		for _, pat := range entry.Tokens {
			if matchToken(pat, token) {
				if score := specificityScore(pat); score > bestScore {
					bestScore = score
					best = entry.Color
				}
			}
		}
	}
	c, err := ParseColor(best)
	if err != nil {
		return DefaultTint
	}
	return c
}

// Background retorna a cor de fundo.
func (m *Manager) Background() [4]uint8 {
	c, err := ParseColor(m.scene.Background)
	if err != nil {
		return [4]uint8{0, 0, 0, 0xff}
	}
	return c
}

// SkyboxSize retorna a aresta do cubo do skybox.
func (m *Manager) SkyboxSize() float32 {
	return m.scene.Skybox.Size
}

// SkyboxFaces retorna os caminhos das seis faces em FaceOrder. ok é false se
// alguma delas não existir no disco.
func (m *Manager) SkyboxFaces() (faces [6]string, ok bool) {
	sky := m.scene.Skybox
	for i, name := range FaceOrder {
		file := name + ".jpg"
		if f, found := sky.Faces[name]; found {
			file = f
		}
		faces[i] = filepath.Join(sky.Dir, file)
		if _, err := os.Stat(faces[i]); err != nil {
			return faces, false
		}
	}
	return faces, true
}

// ParseColor lê "#rrggbb" ou "#rrggbbaa".
func ParseColor(s string) ([4]uint8, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return [4]uint8{}, fmt.Errorf("cor inválida %q", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return [4]uint8{}, fmt.Errorf("cor inválida %q: %w", s, err)
	}
	return [4]uint8{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

// Fog retorna a cor e a densidade da neblina. Densidade 0 desliga.
func (m *Manager) Fog() ([4]uint8, float32) {
	c, err := ParseColor(m.scene.Fog.Color)
	if err != nil {
		c = [4]uint8{0, 0, 0, 0xff}
	}
	if m.scene.Fog.Density == nil {
		return c, DefaultFogDensity
	}
	return c, *m.scene.Fog.Density
}
