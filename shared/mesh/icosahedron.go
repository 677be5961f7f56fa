package mesh

import (
	"fmt"
	"math"
)

// Vértices do icosaedro base (razão áurea) e suas 20 faces.
var (
	phi = (1.0 + math.Sqrt(5.0)) / 2.0

	icoVertices = [12]Vertex{
		{-1, phi, 0}, {1, phi, 0}, {-1, -phi, 0}, {1, -phi, 0},
		{0, -1, phi}, {0, 1, phi}, {0, -1, -phi}, {0, 1, -phi},
		{phi, 0, -1}, {phi, 0, 1}, {-phi, 0, -1}, {-phi, 0, 1},
	}

	icoFaces = [20]Face{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
)

// FaceCountAt retorna 20·4^depth, o número de faces de um icosaedro subdividido.
func FaceCountAt(depth int) int {
	return 20 << (2 * depth)
}

// BuildIcosahedron gera o icosaedro de raio radius subdividido depth vezes.
// Cada face é dona dos seus três vértices: arestas compartilhadas aparecem
// duplicadas até a passagem de Merge.
func BuildIcosahedron(radius float64, depth int) (*SharedMesh, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("raio %v deve ser positivo: %w", radius, ErrInvalidArgument)
	}
	if depth < 0 || depth > MaxDepth {
		return nil, fmt.Errorf("profundidade %d fora de [0,%d]: %w", depth, MaxDepth, ErrInvalidArgument)
	}

	faces := FaceCountAt(depth)
	m := &SharedMesh{
		Vertices: make([]Vertex, 0, 3*faces),
		Faces:    make([]Face, 0, faces),
	}

	for _, f := range icoFaces {
		a := onSphere(icoVertices[f[0]], radius)
		b := onSphere(icoVertices[f[1]], radius)
		c := onSphere(icoVertices[f[2]], radius)
		m.subdivide(a, b, c, depth, radius)
	}
	return m, nil
}

// subdivide divide o triângulo em quatro pelos pontos médios das arestas,
// projetados de volta na esfera. A ordem dos filhos preserva o sentido de giro.
func (m *SharedMesh) subdivide(a, b, c Vertex, depth int, radius float64) {
	if depth == 0 {
		m.addTriangle(a, b, c)
		return
	}

	ab := onSphere(a.Add(b).Mul(0.5), radius)
	bc := onSphere(b.Add(c).Mul(0.5), radius)
	ca := onSphere(c.Add(a).Mul(0.5), radius)

	m.subdivide(a, ab, ca, depth-1, radius)
	m.subdivide(ab, b, bc, depth-1, radius)
	m.subdivide(ca, bc, c, depth-1, radius)
	m.subdivide(ab, bc, ca, depth-1, radius)
}

func (m *SharedMesh) addTriangle(a, b, c Vertex) {
	base := len(m.Vertices)
	m.Vertices = append(m.Vertices, a, b, c)
	m.Faces = append(m.Faces, Face{base, base + 1, base + 2})
}

func onSphere(v Vertex, radius float64) Vertex {
	return v.Normalize().Mul(radius)
}
