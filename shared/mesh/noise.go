package mesh

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// RNG fornece sorteios uniformes em [0,1).
type RNG interface {
	Float64() float64
}

type globalRNG struct{}

func (globalRNG) Float64() float64 { return rand.Float64() }

// DefaultRNG retorna a fonte global (não semeada) de math/rand/v2.
// É segura para uso concorrente.
func DefaultRNG() RNG {
	return globalRNG{}
}

// Nomes de estratégia aceitos na configuração.
const (
	StrategyLayered = "layered"
	StrategySingle  = "single"
)

// LayeredNoise são as bandas de ruído da estratégia em camadas.
var LayeredNoise = []float64{0.35, 0.2, 0.1}

// DefaultBuckets são as bandas da estratégia de sorteio único.
var DefaultBuckets = []float64{0.35, 0.3, 0.2}

// Strategy decide o fator radial aplicado a um vértice.
type Strategy interface {
	Name() string
	Validate() error
	// Scale retorna o fator composto (>= 1) para um vértice.
	Scale(rng RNG) float64
}

// Layered aplica Levels escalas sucessivas 1 + u·LayeredNoise[i]/(i+1).
type Layered struct {
	Levels int
}

func (Layered) Name() string { return StrategyLayered }

func (s Layered) Validate() error {
	if s.Levels < 0 || s.Levels > len(LayeredNoise) {
		return fmt.Errorf("camadas %d fora de [0,%d]: %w", s.Levels, len(LayeredNoise), ErrInvalidArgument)
	}
	return nil
}

func (s Layered) Scale(rng RNG) float64 {
	factor := 1.0
	for i := 0; i < s.Levels; i++ {
		noise := LayeredNoise[i] / float64(i+1)
		factor *= 1 + rng.Float64()*noise
	}
	return factor
}

// SinglePick sorteia uma banda de Buckets e aplica uma única escala.
type SinglePick struct {
	Buckets []float64
}

func (SinglePick) Name() string { return StrategySingle }

func (s SinglePick) Validate() error {
	if len(s.Buckets) == 0 {
		return fmt.Errorf("lista de bandas vazia: %w", ErrInvalidArgument)
	}
	for _, b := range s.Buckets {
		if b < 0 || math.IsNaN(b) || math.IsInf(b, 0) {
			return fmt.Errorf("banda %v inválida: %w", b, ErrInvalidArgument)
		}
	}
	return nil
}

func (s SinglePick) Scale(rng RNG) float64 {
	idx := int(rng.Float64() * float64(len(s.Buckets)))
	if idx >= len(s.Buckets) {
		idx = len(s.Buckets) - 1
	}
	return 1 + rng.Float64()*s.Buckets[idx]
}

// StrategyFor monta a estratégia configurada para um nível de detalhe.
// Na estratégia em camadas o número de camadas acompanha o nível.
func StrategyFor(name string, level DetailLevel, buckets []float64) (Strategy, error) {
	if err := level.Validate(); err != nil {
		return nil, err
	}
	switch name {
	case StrategyLayered:
		return Layered{Levels: level.Layers()}, nil
	case StrategySingle, "":
		if len(buckets) == 0 {
			buckets = DefaultBuckets
		}
		s := SinglePick{Buckets: buckets}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("estratégia de ruído %q desconhecida: %w", name, ErrInvalidArgument)
	}
}

// Displace desloca radialmente cada vértice único pelo fator da estratégia.
// Altera a malha no lugar e a devolve para encadeamento.
func Displace(m *SharedMesh, s Strategy, rng RNG) (*SharedMesh, error) {
	if m == nil || s == nil || rng == nil {
		return nil, fmt.Errorf("malha, estratégia e rng são obrigatórios: %w", ErrInvalidArgument)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	for i := range m.Vertices {
		m.Vertices[i] = m.Vertices[i].Mul(s.Scale(rng))
	}
	return m, nil
}
