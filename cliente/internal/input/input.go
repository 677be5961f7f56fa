// Package input converte a posição do ponteiro em rotação do objeto.
package input

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Pointer guarda a última posição normalizada do ponteiro em [-1, 1].
// Começa em (-1, -1), canto superior esquerdo.
type Pointer struct {
	pos   mgl32.Vec2
	moved bool
}

// NewPointer cria o ponteiro na posição inicial.
func NewPointer() Pointer {
	return Pointer{pos: mgl32.Vec2{-1, -1}}
}

// Normalize converte coordenadas de tela para [-1, 1].
func Normalize(x, y, width, height float32) mgl32.Vec2 {
	if width <= 0 || height <= 0 {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{
		mgl32.Clamp(x/width*2-1, -1, 1),
		mgl32.Clamp(y/height*2-1, -1, 1),
	}
}

// Move registra uma nova posição de tela. Retorna true se a posição mudou.
func (p *Pointer) Move(x, y, width, height float32) bool {
	next := Normalize(x, y, width, height)
	if next.ApproxEqual(p.pos) {
		return false
	}
	p.pos = next
	p.moved = true
	return true
}

// Position retorna a posição normalizada.
func (p Pointer) Position() mgl32.Vec2 {
	return p.pos
}

// Moved indica se o ponteiro se moveu desde a última chamada, e limpa o estado.
func (p *Pointer) Moved() bool {
	m := p.moved
	p.moved = false
	return m
}

// SpinGain escala o preset de velocidade a cada frame.
const SpinGain = 0.1

// Spin acumula a rotação (radianos) do objeto em X, Y e Z.
type Spin struct {
	Rotation mgl32.Vec3
}

// Advance aplica um frame: X segue o ponteiro horizontal, Y e Z o vertical.
func (s *Spin) Advance(pointer mgl32.Vec2, speed float32) {
	s.Rotation = s.Rotation.Add(mgl32.Vec3{
		SpinGain * pointer.X() * speed,
		SpinGain * pointer.Y() * speed,
		SpinGain * pointer.Y() * speed,
	})
}

// Matrix retorna a rotação como matriz (ordem X, Y, Z).
func (s Spin) Matrix() mgl32.Mat4 {
	r := s.Rotation
	return mgl32.HomogRotate3DZ(r.Z()).Mul4(mgl32.HomogRotate3DY(r.Y())).Mul4(mgl32.HomogRotate3DX(r.X()))
}
