package app

import (
	"log"

	"IceVision/cliente/internal/camera"
	"IceVision/cliente/internal/client"
	"IceVision/cliente/internal/input"
	"IceVision/cliente/internal/render"
	"IceVision/shared/config"
	"IceVision/shared/regen"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// AppState representa os estados possíveis da aplicação.
type AppState int

const (
	StateLoading AppState = iota // Aguardando a primeira malha
	StateViewing                 // Malha na tela
)

// App é a aplicação principal do IceVision.
type App struct {
	Config *config.Config
	State  AppState

	Cam      *camera.CameraController
	renderer *render.Renderer

	// Modo local: pipeline roda neste processo
	regen  *regen.Regenerator
	worker *regen.Worker
	timer  *regen.Timer

	// Modo remoto: malhas vêm do servidor
	netClient *client.NetworkClient

	pointer input.Pointer
	spin    input.Spin

	frameCount    int
	LoadingStatus string
}

// New cria uma nova instância da aplicação.
func New(cfg *config.Config) *App {
	return &App{
		Config:        cfg,
		State:         StateLoading,
		pointer:       input.NewPointer(),
		LoadingStatus: "Gerando malha...",
	}
}

// Remote indica se a aplicação está conectada a um servidor.
func (a *App) Remote() bool {
	return a.Config.ServerURL != ""
}

// Run inicia o loop principal da aplicação.
func (a *App) Run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro fatal recuperado: %v", r)
			panic(r)
		}
	}()

	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(a.Config.WindowWidth, a.Config.WindowHeight, a.Config.WindowTitle)
	rl.SetTraceLogLevel(rl.LogWarning)

	if a.Config.Fullscreen {
		rl.ToggleFullscreen()
	}
	rl.SetTargetFPS(a.Config.TargetFPS)

	a.Cam = camera.New()
	if a.Config.ShowDebugInfo {
		a.Cam.SetMode(camera.ModeDebug)
	}

	log.Println("[IceVision] Janela inicializada com sucesso")
	log.Printf("[IceVision] Resolução: %dx%d", a.Config.WindowWidth, a.Config.WindowHeight)

	a.renderer = render.NewRenderer(a.Config.Strategy)

	if a.Remote() {
		a.startRemote()
	} else {
		a.startLocal()
	}

	for !rl.WindowShouldClose() {
		a.update()
		a.draw()
	}

	a.shutdown()
	rl.CloseWindow()
}

// update atualiza a lógica a cada frame.
func (a *App) update() {
	a.frameCount++

	a.renderer.Sync()
	if a.State == StateLoading && a.renderer.HasModel() {
		a.State = StateViewing
		log.Printf("[App] Primeira malha na tela (v%d)", a.renderer.Info.Version)
	}

	a.updateCamera()
	a.updateInput()
	a.spin.Advance(a.pointer.Position(), a.Config.Speed())
}

// shutdown realiza a limpeza de recursos.
func (a *App) shutdown() {
	log.Println("[App] Finalizando aplicação...")

	if a.timer != nil {
		a.timer.Stop()
	}
	if a.worker != nil {
		a.worker.Stop()
	}
	if a.netClient != nil {
		a.netClient.Close()
	}
	a.renderer.Unload()

	if err := a.Config.Save(); err != nil {
		log.Printf("[IceVision] Erro ao salvar configurações: %v", err)
	}
}
