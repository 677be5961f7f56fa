package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidArgument é devolvido quando raio, profundidade, epsilon, estratégia
// ou nível de detalhe estão fora do intervalo aceito.
var ErrInvalidArgument = errors.New("argumento inválido")

// Vertex é uma posição 3D. A identidade é posicional (ver Merge).
type Vertex = mgl64.Vec3

// Face referencia três vértices de uma SharedMesh, em ordem anti-horária
// vista de fora (define a normal para fora).
type Face [3]int

// SharedMesh é a malha indexada: vértices únicos + faces por índice.
type SharedMesh struct {
	Vertices []Vertex
	Faces    []Face
}

// FlatMesh é a malha não indexada. A face i é dona de Vertices[3i:3i+3].
type FlatMesh struct {
	Vertices []Vertex
}

// FaceCount retorna o número de triângulos da malha plana.
func (f *FlatMesh) FaceCount() int {
	return len(f.Vertices) / 3
}

// NormalizedMesh é a FlatMesh com uma normal por vértice, pronta para o renderizador.
// Deve ser tratada como imutável depois de publicada.
type NormalizedMesh struct {
	FlatMesh
	Normals []Vertex

	Degenerate int         // Faces sem área que receberam a normal de fallback
	Level      DetailLevel // Nível que gerou a malha
	Version    uint64      // Número de publicação (preenchido pelo regenerador)
}

// DetailLevel é o índice de detalhe (0, 1, 2).
type DetailLevel int

// LevelCount é o número de níveis configurados.
const LevelCount = 3

// MaxDepth limita a subdivisão (capacidade de memória, não um erro de domínio).
const MaxDepth = 8

var levelDepths = [LevelCount]int{1, 6, 8}

// Validate garante que o nível existe.
func (l DetailLevel) Validate() error {
	if l < 0 || int(l) >= LevelCount {
		return fmt.Errorf("nível de detalhe %d fora de [0,%d): %w", int(l), LevelCount, ErrInvalidArgument)
	}
	return nil
}

// Depth retorna a profundidade de subdivisão do nível.
func (l DetailLevel) Depth() int {
	return levelDepths[l]
}

// Layers retorna quantas camadas de ruído a estratégia em camadas aplica.
func (l DetailLevel) Layers() int {
	return int(l) + 1
}

// Next retorna o próximo nível no ciclo 0 → 1 → 2 → 0.
func (l DetailLevel) Next() DetailLevel {
	return DetailLevel((int(l) + 1) % LevelCount)
}
