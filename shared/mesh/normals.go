package mesh

import (
	"log"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/alitto/pond/v2"
)

// ParallelThreshold é o número de faces a partir do qual as normais são
// calculadas em pedaços no pool de workers.
const ParallelThreshold = 1 << 14

// degenerateRatio é o limite de |e1×e2| / (|e1|·|e2|), o seno do ângulo entre
// as arestas, abaixo do qual a face não tem área. Independe da escala da malha.
const degenerateRatio = 1e-10

var (
	poolOnce   sync.Once
	normalPool pond.Pool
)

func workers() pond.Pool {
	poolOnce.Do(func() {
		normalPool = pond.NewPool(runtime.NumCPU())
	})
	return normalPool
}

// ComputeNormals calcula a normal de cada face, normalize((v1-v0)×(v2-v0)),
// e a atribui aos três vértices da face.
//
// Faces degeneradas recebem a direção do centróide (normal radial para fora);
// se o centróide também for a origem, a normal é o vetor zero.
func ComputeNormals(f *FlatMesh) *NormalizedMesh {
	out := &NormalizedMesh{
		FlatMesh: FlatMesh{Vertices: f.Vertices},
		Normals:  make([]Vertex, len(f.Vertices)),
	}

	faces := f.FaceCount()
	var degenerate atomic.Int64

	if faces < ParallelThreshold {
		degenerate.Add(int64(out.normalRange(0, faces)))
	} else {
		chunk := faces / runtime.NumCPU()
		if chunk < ParallelThreshold/4 {
			chunk = ParallelThreshold / 4
		}
		group := workers().NewGroup()
		for start := 0; start < faces; start += chunk {
			from, to := start, min(start+chunk, faces)
			group.Submit(func() {
				degenerate.Add(int64(out.normalRange(from, to)))
			})
		}
		if err := group.Wait(); err != nil {
			log.Printf("[Mesher] Erro no pool de normais: %v", err)
		}
	}

	out.Degenerate = int(degenerate.Load())
	if out.Degenerate > 0 {
		log.Printf("[Mesher] %d faces degeneradas receberam normal de fallback", out.Degenerate)
	}
	return out
}

// normalRange preenche as normais das faces [from, to) e retorna quantas eram degeneradas.
func (m *NormalizedMesh) normalRange(from, to int) int {
	degenerate := 0
	for i := from; i < to; i++ {
		v0, v1, v2 := m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2]
		e1, e2 := v1.Sub(v0), v2.Sub(v0)
		n := e1.Cross(e2)
		if n.Len() <= degenerateRatio*e1.Len()*e2.Len() {
			degenerate++
			n = fallbackNormal(v0, v1, v2)
		} else {
			n = n.Normalize()
		}
		m.Normals[3*i] = n
		m.Normals[3*i+1] = n
		m.Normals[3*i+2] = n
	}
	return degenerate
}

func fallbackNormal(v0, v1, v2 Vertex) Vertex {
	centroid := v0.Add(v1).Add(v2).Mul(1.0 / 3.0)
	if centroid.Len() == 0 {
		return Vertex{}
	}
	return centroid.Normalize()
}
