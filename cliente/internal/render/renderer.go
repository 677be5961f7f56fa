package render

/*
#include <stdlib.h>
*/
import "C"

import (
	"log"
	"sync/atomic"
	"unsafe"

	"IceVision/cliente/internal/assets"
	"IceVision/shared/mesh"
	"IceVision/shared/regen"
	"IceVision/shared/wire"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// pendingMesh é uma malha já convertida para buffers, aguardando upload na
// thread principal.
type pendingMesh struct {
	geo        mesh.GeometryData
	version    uint64
	level      int
	faces      int
	degenerate int
}

// MeshInfo descreve a malha que está na GPU (para o HUD).
type MeshInfo struct {
	Version    uint64
	Level      int
	Faces      int
	Degenerate int
}

// Renderer desenha o skybox e o modelo de gelo.
//
// SetMesh/SetFrame podem ser chamados de qualquer goroutine; o upload para a
// GPU só acontece em Sync, chamado pelo loop principal.
type Renderer struct {
	pending atomic.Pointer[pendingMesh]

	model  rl.Model
	loaded bool
	Info   MeshInfo

	IceShader   rl.Shader
	lightDirLoc int32
	ambientLoc  int32
	diffuseLoc  int32
	viewPosLoc  int32

	Skybox   *Skybox
	AssetMgr *assets.Manager
	strategy string
}

var _ regen.Display = (*Renderer)(nil)

// NewRenderer cria o renderizador. Requer a janela já inicializada.
func NewRenderer(strategy string) *Renderer {
	r := &Renderer{strategy: strategy}

	mgr, err := assets.NewManager("assets/config")
	if err != nil {
		log.Printf("[Renderer] AVISO: scene.json inválido, usando padrão: %v", err)
		mgr = assets.Default()
	}
	r.AssetMgr = mgr

	if rl.IsWindowReady() {
		r.IceShader = rl.LoadShaderFromMemory(iceVertexShader, iceFragmentShader)

		// Locs é um ponteiro bruto (*int32) para o array de localizações em C
		locs := unsafe.Slice(r.IceShader.Locs, 32)
		locs[rl.ShaderLocMatrixModel] = rl.GetShaderLocation(r.IceShader, "matModel")
		locs[rl.ShaderLocMatrixNormal] = rl.GetShaderLocation(r.IceShader, "matNormal")
		locs[rl.ShaderLocColorDiffuse] = rl.GetShaderLocation(r.IceShader, "colDiffuse")

		r.lightDirLoc = rl.GetShaderLocation(r.IceShader, "lightDir")
		r.ambientLoc = rl.GetShaderLocation(r.IceShader, "ambient")
		r.diffuseLoc = rl.GetShaderLocation(r.IceShader, "lightIntensity")
		r.viewPosLoc = rl.GetShaderLocation(r.IceShader, "viewPos")

		rl.SetShaderValue(r.IceShader, r.lightDirLoc, []float32{1, 1, 1}, rl.ShaderUniformVec3)
		rl.SetShaderValue(r.IceShader, r.ambientLoc, []float32{0xb1 / 255.0, 0xb1 / 255.0, 0xb1 / 255.0}, rl.ShaderUniformVec3)
		rl.SetShaderValue(r.IceShader, r.diffuseLoc, []float32{0.2}, rl.ShaderUniformFloat)

		fogColor, fogDensity := mgr.Fog()
		rl.SetShaderValue(r.IceShader, rl.GetShaderLocation(r.IceShader, "fogColor"),
			[]float32{float32(fogColor[0]) / 255, float32(fogColor[1]) / 255, float32(fogColor[2]) / 255}, rl.ShaderUniformVec3)
		rl.SetShaderValue(r.IceShader, rl.GetShaderLocation(r.IceShader, "fogDensity"), []float32{fogDensity}, rl.ShaderUniformFloat)

		r.Skybox = LoadSkybox(mgr)
	}

	log.Printf("[Renderer] Renderizador pronto (skybox texturizado: %v)", r.Skybox != nil && r.Skybox.Textured())
	return r
}

// SetMesh recebe uma malha publicada pelo regenerador local.
func (r *Renderer) SetMesh(m *mesh.NormalizedMesh) {
	tint := r.AssetMgr.Tint(int(m.Level), r.strategy)
	r.pending.Store(&pendingMesh{
		geo:        m.Geometry(tint),
		version:    m.Version,
		level:      int(m.Level),
		faces:      m.FaceCount(),
		degenerate: m.Degenerate,
	})
}

// SetFrame recebe uma malha do servidor remoto.
func (r *Renderer) SetFrame(f *wire.MeshFrame) {
	tint := r.AssetMgr.Tint(int(f.Level), r.strategy)
	geo := f.Geometry(tint)
	r.pending.Store(&pendingMesh{
		geo:        geo,
		version:    f.Version,
		level:      int(f.Level),
		faces:      geo.VertexCount() / 3,
		degenerate: int(f.Degenerate),
	})
}

// Sync envia a malha pendente para a GPU e descarta o modelo anterior.
// Deve ser chamado na thread principal.
func (r *Renderer) Sync() {
	p := r.pending.Swap(nil)
	if p == nil || !rl.IsWindowReady() {
		return
	}
	if r.loaded && p.version == r.Info.Version {
		return // reenvio da mesma malha (ex: reconexão)
	}
	if p.geo.VertexCount() == 0 {
		return
	}

	m := r.geometryToMesh(p.geo)
	rl.UploadMesh(&m, false)
	model := rl.LoadModelFromMesh(m)
	if model.MaterialCount > 0 {
		materials := unsafe.Slice(model.Materials, model.MaterialCount)
		materials[0].Shader = r.IceShader
	}

	if r.loaded {
		rl.UnloadModel(r.model)
	}
	r.model = model
	r.loaded = true
	r.Info = MeshInfo{Version: p.version, Level: p.level, Faces: p.faces, Degenerate: p.degenerate}

	log.Printf("[Renderer] Upload de geometria v%d: nível %d, %d faces", p.version, p.level, p.faces)
}

// Draw desenha o skybox e o gelo com a transformação dada.
func (r *Renderer) Draw(camera3d rl.Camera3D, transform rl.Matrix) {
	if r.Skybox != nil {
		r.Skybox.Draw(camera3d.Position)
	}
	if !r.loaded {
		return
	}

	p := camera3d.Position
	rl.SetShaderValue(r.IceShader, r.viewPosLoc, []float32{p.X, p.Y, p.Z}, rl.ShaderUniformVec3)

	// Material de face dupla
	rl.DisableBackfaceCulling()
	r.model.Transform = transform
	rl.DrawModel(r.model, rl.Vector3{}, 1.0, rl.White)
	rl.EnableBackfaceCulling()
}

// HasModel indica se já existe malha na GPU.
func (r *Renderer) HasModel() bool {
	return r.loaded
}

func (r *Renderer) geometryToMesh(data mesh.GeometryData) rl.Mesh {
	var m rl.Mesh
	vCount := int32(data.VertexCount())
	m.VertexCount = vCount
	m.TriangleCount = vCount / 3

	if len(data.Vertices) > 0 {
		m.Vertices = (*float32)(r.copyToC(unsafe.Pointer(&data.Vertices[0]), len(data.Vertices)*4))
	}
	if len(data.Normals) > 0 {
		m.Normals = (*float32)(r.copyToC(unsafe.Pointer(&data.Normals[0]), len(data.Normals)*4))
	}
	if len(data.Colors) > 0 {
		m.Colors = (*uint8)(r.copyToC(unsafe.Pointer(&data.Colors[0]), len(data.Colors)))
	}
	return m
}

// copyToC copia os dados para memória C; UnloadModel libera com free.
func (r *Renderer) copyToC(data unsafe.Pointer, size int) unsafe.Pointer {
	if size <= 0 || data == nil {
		return nil
	}
	ptr := C.malloc(C.size_t(size))
	if ptr == nil {
		return nil
	}
	cSlice := unsafe.Slice((*byte)(ptr), size)
	goSlice := unsafe.Slice((*byte)(data), size)
	copy(cSlice, goSlice)
	return ptr
}

// Unload libera o modelo, o shader e o skybox.
func (r *Renderer) Unload() {
	if r.loaded {
		rl.UnloadModel(r.model)
		r.loaded = false
	}
	if r.Skybox != nil {
		r.Skybox.Unload()
	}
	if r.IceShader.ID != 0 {
		rl.UnloadShader(r.IceShader)
	}
}
