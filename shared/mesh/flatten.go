package mesh

// Flatten expande a malha indexada em triângulos independentes: cada face
// recebe cópias próprias das três posições, o que mantém o sombreamento facetado.
func Flatten(m *SharedMesh) *FlatMesh {
	flat := &FlatMesh{Vertices: make([]Vertex, 0, 3*len(m.Faces))}
	for _, f := range m.Faces {
		flat.Vertices = append(flat.Vertices, m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]])
	}
	return flat
}
