package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"IceVision/shared/config"
	"IceVision/shared/journal"
	"IceVision/shared/mesh"
	"IceVision/shared/regen"
	"IceVision/shared/wire"

	"github.com/gorilla/websocket"
)

// Server junta o regenerador, o timer periódico e o hub.
type Server struct {
	cfg     *config.Config
	regen   *regen.Regenerator
	worker  *regen.Worker
	timer   *regen.Timer
	hub     *Hub
	journal *journal.Journal // nil quando o histórico está desativado
}

// NewServer monta o pipeline e assina o hub e o journal nas publicações.
func NewServer(cfg *config.Config, j *journal.Journal) *Server {
	s := &Server{
		cfg:     cfg,
		regen:   regen.New(cfg.RegenOptions()),
		hub:     newHub(),
		journal: j,
	}
	s.regen.Subscribe(s.hub)
	if j != nil {
		s.regen.AddRecorder(j)
	}

	s.worker = regen.NewWorker(s.regen)
	s.worker.OnError = func(req regen.Request, err error) {
		log.Printf("[Server] Falha na geração (%+v): %v", req, err)
	}
	s.timer = regen.NewTimer(cfg.Period(), func() {
		s.worker.Submit(regen.NextRequest())
	})
	return s
}

// Start inicia o hub, gera o nível inicial e arma o timer.
func (s *Server) Start() {
	go s.hub.run()
	s.worker.Submit(regen.LevelRequest(mesh.DetailLevel(s.cfg.InitialLevel)))
	s.timer.Reset()
}

// Stop para o timer, o worker e o hub, nessa ordem.
func (s *Server) Stop() {
	s.timer.Stop()
	s.worker.Stop()
	s.hub.Close()
}

// Routes registra /ws, /status e /history.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWs)
	mux.HandleFunc("/status", s.serveStatus)
	mux.HandleFunc("/history", s.serveHistory)
	return mux
}

// serveWs maneja requisições websocket do peer.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Server] Erro no upgrade do WebSocket: %v", err)
		return
	}
	s.hub.add(conn)

	go func() {
		defer func() {
			select {
			case s.hub.unregister <- conn:
			case <-s.hub.quit:
			}
		}()

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Printf("[Server] Erro ao ler mensagem: %v", err)
				}
				return
			}

			var env wire.Envelope
			if err := env.Unmarshal(message); err != nil {
				log.Printf("[Server] Erro ao desempacotar envelope: %v", err)
				continue
			}
			s.handleClientMessage(&env)
		}
	}()
}

func (s *Server) handleClientMessage(env *wire.Envelope) {
	switch env.Type {
	case wire.MsgRegenerate:
		var req wire.RegenerateRequest
		if err := req.Unmarshal(env.Payload); err != nil {
			log.Printf("[Server] Erro ao ler REGENERATE: %v", err)
			return
		}
		if req.HasLevel {
			level := mesh.DetailLevel(req.Level)
			if err := level.Validate(); err != nil {
				log.Printf("[Server] REGENERATE ignorado: %v", err)
				return
			}
			s.worker.Submit(regen.LevelRequest(level))
		} else {
			s.worker.Submit(regen.NextRequest())
		}
		s.timer.Reset()
	case wire.MsgPointerMove:
		if s.cfg.DebounceOnMove {
			s.timer.Reset()
		}
	default:
		log.Printf("[Server] Mensagem %v ignorada", env.Type)
	}
}

// StatusResponse é o corpo de GET /status.
type StatusResponse struct {
	State         string `json:"state"`
	Level         int    `json:"level"`
	Version       uint64 `json:"version"`
	Faces         int    `json:"faces"`
	Degenerate    int    `json:"degenerate"`
	Strategy      string `json:"strategy"`
	Clients       int    `json:"clients"`
	PeriodSeconds int    `json:"periodSeconds"`
}

func (s *Server) serveStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		State:         s.regen.State().String(),
		Level:         s.regen.Level(),
		Strategy:      s.cfg.Strategy,
		Clients:       s.hub.ClientCount(),
		PeriodSeconds: int(s.timer.Period().Seconds()),
	}
	if m := s.regen.CurrentMesh(); m != nil {
		resp.Version = m.Version
		resp.Faces = m.FaceCount()
		resp.Degenerate = m.Degenerate
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) serveHistory(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		http.Error(w, "histórico desativado", http.StatusNotFound)
		return
	}
	n, _ := strconv.Atoi(r.URL.Query().Get("n"))
	records, err := s.journal.Recent(n)
	if err != nil {
		log.Printf("[Server] Erro ao ler histórico: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Server] Erro ao escrever JSON: %v", err)
	}
}
