package mesh

// GeometryData contém os buffers float32 que o renderizador envia para a GPU.
type GeometryData struct {
	Vertices []float32
	Normals  []float32
	Colors   []uint8
}

// VertexCount retorna o número de vértices nos buffers.
func (g GeometryData) VertexCount() int {
	return len(g.Vertices) / 3
}

// Geometry converte a malha em buffers intercalados por componente, com a mesma
// cor em todos os vértices.
func (m *NormalizedMesh) Geometry(tint [4]uint8) GeometryData {
	n := len(m.Vertices)
	g := GeometryData{
		Vertices: make([]float32, 0, 3*n),
		Normals:  make([]float32, 0, 3*n),
		Colors:   make([]uint8, 0, 4*n),
	}
	for i, v := range m.Vertices {
		nv := m.Normals[i]
		g.Vertices = append(g.Vertices, float32(v[0]), float32(v[1]), float32(v[2]))
		g.Normals = append(g.Normals, float32(nv[0]), float32(nv[1]), float32(nv[2]))
		g.Colors = append(g.Colors, tint[0], tint[1], tint[2], tint[3])
	}
	return g
}
