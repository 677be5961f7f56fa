package mesh

import (
	"fmt"
	"math"
)

// DefaultEpsilon é a tolerância padrão de solda de vértices.
const DefaultEpsilon = 1e-4

type weldKey [3]int64

// Merge solda vértices coincidentes e reescreve os índices das faces.
//
// A tolerância é por coordenada: cada componente é quantizado em round(c/epsilon)
// e vértices com a mesma chave viram o primeiro vértice visto. Pontos muito
// próximos mas em células vizinhas continuam separados, e um epsilon grande
// pode soldar vértices legítimos; ambos são aproximações aceitas.
//
// O número de faces não muda. Uma face que colapsa (índices repetidos) é mantida
// e acaba tratada como degenerada no cálculo de normais.
func Merge(m *SharedMesh, epsilon float64) (*SharedMesh, error) {
	if m == nil {
		return nil, fmt.Errorf("malha nula: %w", ErrInvalidArgument)
	}
	if !(epsilon > 0) || math.IsInf(epsilon, 0) {
		return nil, fmt.Errorf("epsilon %v deve ser positivo: %w", epsilon, ErrInvalidArgument)
	}

	inv := 1.0 / epsilon
	seen := make(map[weldKey]int, len(m.Vertices)/2)
	remap := make([]int, len(m.Vertices))
	out := &SharedMesh{
		Vertices: make([]Vertex, 0, len(m.Vertices)/2),
		Faces:    make([]Face, len(m.Faces)),
	}

	for i, v := range m.Vertices {
		key := weldKey{
			int64(math.Round(v[0] * inv)),
			int64(math.Round(v[1] * inv)),
			int64(math.Round(v[2] * inv)),
		}
		if idx, ok := seen[key]; ok {
			remap[i] = idx
			continue
		}
		idx := len(out.Vertices)
		seen[key] = idx
		remap[i] = idx
		out.Vertices = append(out.Vertices, v)
	}

	for i, f := range m.Faces {
		for k := 0; k < 3; k++ {
			if f[k] < 0 || f[k] >= len(remap) {
				return nil, fmt.Errorf("face %d referencia vértice %d inexistente: %w", i, f[k], ErrInvalidArgument)
			}
			out.Faces[i][k] = remap[f[k]]
		}
	}

	return out, nil
}
