package render

import (
	"log"

	"IceVision/cliente/internal/assets"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Cores das faces quando não há imagens: um degradê frio de cima para baixo.
var fallbackFaceColors = [6]rl.Color{
	{R: 40, G: 60, B: 90, A: 255},   // +X
	{R: 40, G: 60, B: 90, A: 255},   // -X
	{R: 90, G: 120, B: 160, A: 255}, // +Y
	{R: 10, G: 15, B: 25, A: 255},   // -Y
	{R: 30, G: 50, B: 80, A: 255},   // +Z
	{R: 30, G: 50, B: 80, A: 255},   // -Z
}

// Skybox é um cubo invertido centrado na câmera.
type Skybox struct {
	size     float32
	textures [6]rl.Texture2D
	textured bool
}

// LoadSkybox carrega as seis faces indicadas pelo Asset Manager. Se alguma
// faltar, usa o cubo colorido.
func LoadSkybox(mgr *assets.Manager) *Skybox {
	s := &Skybox{size: mgr.SkyboxSize()}

	faces, ok := mgr.SkyboxFaces()
	if !ok {
		log.Printf("[Renderer] Skybox sem imagens em %v, usando cubo colorido", faces[0])
		return s
	}
	for i, path := range faces {
		tex, ok := loadSingleTexture(path)
		if !ok {
			s.unloadTextures(i)
			return s
		}
		s.textures[i] = tex
	}
	s.textured = true
	return s
}

func loadSingleTexture(path string) (rl.Texture2D, bool) {
	tex := rl.LoadTexture(path)
	if tex.ID == 0 {
		log.Printf("[Renderer] FALHA ao carregar textura: %s", path)
		return tex, false
	}
	rl.SetTextureFilter(tex, rl.FilterBilinear)
	rl.SetTextureWrap(tex, rl.WrapClamp)
	log.Printf("[Renderer] Textura carregada: %s", path)
	return tex, true
}

// Textured indica se as imagens foram carregadas.
func (s *Skybox) Textured() bool {
	return s.textured
}

// Draw desenha o cubo sem escrever no depth buffer, vendo-o por dentro.
func (s *Skybox) Draw(center rl.Vector3) {
	h := s.size / 2

	rl.DisableDepthMask()
	rl.DisableBackfaceCulling()
	for face := 0; face < 6; face++ {
		corners := cubeFace(face, h)
		if s.textured {
			rl.SetTexture(s.textures[face].ID)
		}
		rl.Begin(rl.Quads)
		c := rl.White
		if !s.textured {
			c = fallbackFaceColors[face]
		}
		rl.Color4ub(c.R, c.G, c.B, c.A)
		uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
		for i, p := range corners {
			rl.TexCoord2f(uvs[i][0], uvs[i][1])
			rl.Vertex3f(center.X+p.X, center.Y+p.Y, center.Z+p.Z)
		}
		rl.End()
		rl.SetTexture(0)
	}
	rl.EnableBackfaceCulling()
	rl.EnableDepthMask()
}

// cubeFace retorna os cantos de uma face (ordem de assets.FaceOrder) vistos
// de dentro do cubo, começando pelo canto inferior esquerdo.
func cubeFace(face int, h float32) [4]rl.Vector3 {
	switch face {
	case 0: // +X
		return [4]rl.Vector3{{X: h, Y: -h, Z: h}, {X: h, Y: -h, Z: -h}, {X: h, Y: h, Z: -h}, {X: h, Y: h, Z: h}}
	case 1: // -X
		return [4]rl.Vector3{{X: -h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: h}, {X: -h, Y: h, Z: h}, {X: -h, Y: h, Z: -h}}
	case 2: // +Y
		return [4]rl.Vector3{{X: -h, Y: h, Z: h}, {X: h, Y: h, Z: h}, {X: h, Y: h, Z: -h}, {X: -h, Y: h, Z: -h}}
	case 3: // -Y
		return [4]rl.Vector3{{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h}, {X: h, Y: -h, Z: h}, {X: -h, Y: -h, Z: h}}
	case 4: // +Z
		return [4]rl.Vector3{{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h}, {X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h}}
	default: // -Z
		return [4]rl.Vector3{{X: h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: -h}, {X: -h, Y: h, Z: -h}, {X: h, Y: h, Z: -h}}
	}
}

func (s *Skybox) unloadTextures(n int) {
	for i := 0; i < n; i++ {
		rl.UnloadTexture(s.textures[i])
	}
}

// Unload libera as texturas.
func (s *Skybox) Unload() {
	if s.textured {
		s.unloadTextures(6)
		s.textured = false
	}
}
