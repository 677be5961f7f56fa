package app

import (
	"log"

	"IceVision/cliente/internal/client"
	"IceVision/shared/mesh"
	"IceVision/shared/regen"
	"IceVision/shared/wire"
)

// startLocal monta o pipeline local: o renderizador assina o regenerador,
// o worker gera fora da thread de desenho e o timer regenera periodicamente.
func (a *App) startLocal() {
	a.regen = regen.New(a.Config.RegenOptions())
	a.regen.Subscribe(a.renderer)

	a.worker = regen.NewWorker(a.regen)
	a.worker.OnError = func(req regen.Request, err error) {
		log.Printf("[App] Falha na geração (%+v): %v", req, err)
	}

	a.timer = regen.NewTimer(a.Config.Period(), func() {
		log.Println("[App] Regeneração automática")
		a.worker.Submit(regen.NextRequest())
	})

	a.worker.Submit(regen.LevelRequest(mesh.DetailLevel(a.Config.InitialLevel)))
	a.timer.Reset()
	log.Printf("[App] Pipeline local iniciado (nível %d, estratégia %s, período %v)",
		a.Config.InitialLevel, a.Config.Strategy, a.Config.Period())
}

// startRemote prepara o cliente de rede; a conexão roda em background.
func (a *App) startRemote() {
	nc := client.NewNetworkClient(a.Config.ServerURL)
	nc.OnFrame = func(frame *wire.MeshFrame) {
		a.renderer.SetFrame(frame)
	}
	nc.OnDisconnect = func(err error) {
		log.Printf("[Network] Desconectado: %v", err)
	}
	a.netClient = nc
	a.LoadingStatus = "Conectando ao servidor..."
	go a.connectServer()
}

// connectServer conecta ao servidor IceVision e repassa os frames ao renderizador.
func (a *App) connectServer() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro em connectServer: %v", r)
		}
	}()

	if err := a.netClient.Connect(); err != nil {
		log.Printf("[Network] Erro ao conectar: %v", err)
		return
	}
	log.Println("[Network] Conectado ao servidor IceVision!")
}

// regenerateNext trata o clique/toque: próximo nível e reinício do timer.
func (a *App) regenerateNext() {
	if a.Remote() {
		a.netClient.RequestNext()
		return
	}
	a.worker.Submit(regen.NextRequest())
	a.timer.Reset()
}

// pointerMoved adia a regeneração automática.
func (a *App) pointerMoved() {
	if !a.Config.DebounceOnMove {
		return
	}
	if a.Remote() {
		a.netClient.PointerMoved()
		return
	}
	a.timer.Reset()
}
