package camera

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Mode escolhe qual câmera é usada para desenhar a cena.
type Mode int

const (
	ModeMain  Mode = iota // Câmera fixa olhando para a origem
	ModeDebug             // Órbita livre (botão direito + scroll)
)

// Distâncias das duas câmeras, na direção (1, 0.75, 1).
const (
	MainZoom  = 50.0
	DebugZoom = 10.0
)

// CameraController gerencia a câmera principal e a de depuração.
type CameraController struct {
	RLCamera rl.Camera3D
	Mode     Mode

	// Órbita (apenas no modo debug)
	MinZoom      float32
	MaxZoom      float32
	RotateSpeed  float32
	ZoomSpeed    float32
	SmoothFactor float32

	TargetZoom   float32
	TargetAngleY float32 // azimute (radianos)
	TargetAngleX float32 // elevação (radianos)
	CurrentZoom  float32
}

// New cria o controlador na câmera principal.
func New() *CameraController {
	c := &CameraController{
		Mode:         ModeMain,
		MinZoom:      2.0,
		MaxZoom:      400.0,
		RotateSpeed:  2.0,
		ZoomSpeed:    2.0,
		SmoothFactor: 0.1,
	}
	c.RLCamera = rl.Camera3D{
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       55.0,
		Projection: rl.CameraPerspective,
	}
	c.resetOrbit(DebugZoom)
	c.SetMode(ModeMain)
	return c
}

// ZoomPosition retorna a posição (1, 0.75, 1)·zoom.
func ZoomPosition(zoom float32) mgl32.Vec3 {
	return mgl32.Vec3{1, 0.75, 1}.Mul(zoom)
}

// resetOrbit alinha os ângulos da órbita com a direção de ZoomPosition.
func (c *CameraController) resetOrbit(zoom float32) {
	dir := ZoomPosition(1).Normalize()
	c.TargetAngleY = float32(math.Atan2(float64(dir.X()), float64(dir.Z())))
	c.TargetAngleX = -float32(math.Asin(float64(dir.Y())))
	c.TargetZoom = zoom
	c.CurrentZoom = zoom
}

// SetMode troca de câmera e recalcula a posição na hora.
func (c *CameraController) SetMode(mode Mode) {
	c.Mode = mode
	if mode == ModeMain {
		c.place(ZoomPosition(MainZoom))
		return
	}
	c.resetOrbit(DebugZoom)
	c.Update(1)
}

// Update interpola o zoom da órbita. No modo principal não faz nada.
func (c *CameraController) Update(dt float32) {
	if c.Mode != ModeDebug {
		return
	}
	factor := c.SmoothFactor * 60.0 * dt
	if factor > 1.0 {
		factor = 1.0
	}
	c.CurrentZoom += (c.TargetZoom - c.CurrentZoom) * factor

	cosX := float32(math.Cos(float64(c.TargetAngleX)))
	sinX := float32(math.Sin(float64(c.TargetAngleX)))
	cosY := float32(math.Cos(float64(c.TargetAngleY)))
	sinY := float32(math.Sin(float64(c.TargetAngleY)))

	offset := mgl32.Vec3{cosX * sinY, -sinX, cosX * cosY}.Mul(c.CurrentZoom)
	c.place(offset)
}

func (c *CameraController) place(pos mgl32.Vec3) {
	c.RLCamera.Position = rl.Vector3{X: pos.X(), Y: pos.Y(), Z: pos.Z()}
	c.RLCamera.Target = rl.Vector3{}
}

// HandleInput processa a órbita de depuração. Retorna true se houve movimento.
func (c *CameraController) HandleInput() bool {
	if c.Mode != ModeDebug {
		return false
	}
	moved := false

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		moved = true
		c.TargetZoom = mgl32.Clamp(c.TargetZoom-wheel*c.ZoomSpeed, c.MinZoom, c.MaxZoom)
	}

	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		if delta.X != 0 || delta.Y != 0 {
			moved = true
		}
		c.TargetAngleY -= delta.X * c.RotateSpeed * 0.005
		c.TargetAngleX -= delta.Y * c.RotateSpeed * 0.005

		// Não deixa a câmera passar dos polos
		limit := float32(89.0 * rl.Deg2rad)
		c.TargetAngleX = mgl32.Clamp(c.TargetAngleX, -limit, limit)
	}
	return moved
}

// ToMatrix converte uma matriz mgl32 (coluna-maior) para rl.Matrix.
func ToMatrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: m[12], M13: m[13], M14: m[14], M15: m[15],
	}
}
