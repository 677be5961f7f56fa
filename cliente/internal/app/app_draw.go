package app

import (
	"fmt"

	"IceVision/cliente/internal/camera"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// draw renderiza a cena.
func (a *App) draw() {
	bg := a.renderer.AssetMgr.Background()

	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(bg[0], bg[1], bg[2], bg[3]))

	a.drawScene()
	if a.State == StateLoading {
		a.drawLoading()
	}
	a.drawHUD()

	rl.EndDrawing()
}

// drawScene renderiza a cena 3D.
func (a *App) drawScene() {
	rl.BeginMode3D(a.Cam.RLCamera)

	a.renderer.Draw(a.Cam.RLCamera, camera.ToMatrix(a.spin.Matrix()))

	if a.Config.ShowDebugInfo || a.Config.ShowGrid {
		rl.DrawGrid(10, 1.0)
	}
	if a.Config.ShowDebugInfo {
		drawAxes(1.0)
	}

	rl.EndMode3D()
}

// drawAxes desenha X (vermelho), Y (verde) e Z (azul) a partir da origem.
func drawAxes(size float32) {
	origin := rl.Vector3{}
	rl.DrawLine3D(origin, rl.Vector3{X: size}, rl.Red)
	rl.DrawLine3D(origin, rl.Vector3{Y: size}, rl.Green)
	rl.DrawLine3D(origin, rl.Vector3{Z: size}, rl.Blue)
}

// drawHUD desenha a interface de depuração.
func (a *App) drawHUD() {
	if !a.Config.ShowDebugInfo {
		return
	}

	width := int32(320)
	height := int32(170)
	x := int32(rl.GetScreenWidth()) - width - 10
	y := int32(10)

	rl.DrawRectangle(x, y, width, height, rl.NewColor(0, 0, 0, 180))
	rl.DrawRectangleLines(x, y, width, height, rl.NewColor(50, 50, 50, 255))

	fps := rl.GetFPS()
	fpsColor := rl.Green
	if fps < 30 {
		fpsColor = rl.Red
	} else if fps < 50 {
		fpsColor = rl.Yellow
	}
	rl.DrawText(fmt.Sprintf("FPS: %d", fps), x+10, y+10, 20, fpsColor)

	mode := "Local"
	if a.Remote() {
		mode = "Remoto"
		if !a.netClient.IsConnected() {
			mode = "Offline"
		}
	}
	rl.DrawText(mode, x+200, y+10, 20, rl.SkyBlue)

	rl.DrawLine(x+10, y+35, x+width-10, y+35, rl.NewColor(100, 100, 100, 100))

	info := a.renderer.Info
	rl.DrawText("MALHA", x+10, y+45, 12, rl.Gray)
	rl.DrawText(fmt.Sprintf("Versão %d | Nível %d | %d faces", info.Version, info.Level, info.Faces), x+10, y+60, 16, rl.White)
	rl.DrawText(fmt.Sprintf("Normais degeneradas: %d", info.Degenerate), x+10, y+80, 14, rl.LightGray)
	if a.regen != nil {
		rl.DrawText(fmt.Sprintf("Estado: %s | Estratégia: %s", a.regen.State(), a.Config.Strategy), x+10, y+98, 14, rl.LightGray)
	}
	if a.Remote() {
		rl.DrawText(a.Config.ServerURL, x+10, y+116, 14, rl.LightGray)
	}

	rl.DrawLine(x+10, y+136, x+width-10, y+136, rl.NewColor(100, 100, 100, 100))
	rl.DrawText("Clique: próximo nível | F3: HUD | F11: Tela Cheia", x+10, y+145, 12, rl.SkyBlue)
}

// drawLoading mostra o status enquanto não há malha.
func (a *App) drawLoading() {
	sw := int32(rl.GetScreenWidth())
	sh := int32(rl.GetScreenHeight())

	title := "ICEVISION"
	tw := rl.MeasureText(title, 40)
	rl.DrawText(title, (sw-tw)/2, sh/2-40, 40, rl.RayWhite)

	status := a.LoadingStatus
	if a.Remote() && !a.netClient.IsConnected() && a.frameCount > 600 {
		status = "Sem conexão. Verifique se o servidor está rodando."
	}
	st := rl.MeasureText(status, 18)
	rl.DrawText(status, (sw-st)/2, sh/2+20, 18, rl.LightGray)
}
