package app

import (
	"log"

	"IceVision/cliente/internal/camera"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// updateCamera atualiza a câmera de depuração.
func (a *App) updateCamera() {
	a.Cam.HandleInput()
	a.Cam.Update(rl.GetFrameTime())
}

// updateInput processa teclado, mouse e toque.
func (a *App) updateInput() {
	if rl.IsKeyPressed(rl.KeyF3) {
		a.Config.ShowDebugInfo = !a.Config.ShowDebugInfo
		if a.Config.ShowDebugInfo {
			a.Cam.SetMode(camera.ModeDebug)
		} else {
			a.Cam.SetMode(camera.ModeMain)
		}
		log.Printf("[App] Debug: %v", a.Config.ShowDebugInfo)
	}

	if rl.IsKeyPressed(rl.KeyG) {
		a.Config.ShowGrid = !a.Config.ShowGrid
	}

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())

	// Mouse e toque movem o objeto e adiam o timer
	if rl.GetTouchPointCount() > 0 {
		p := rl.GetTouchPosition(0)
		a.pointer.Move(p.X, p.Y, w, h)
	} else if d := rl.GetMouseDelta(); d.X != 0 || d.Y != 0 {
		p := rl.GetMousePosition()
		a.pointer.Move(p.X, p.Y, w, h)
	}
	if a.pointer.Moved() {
		a.pointerMoved()
	}

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		log.Println("[App] Clique: próximo nível")
		a.regenerateNext()
	}
}
