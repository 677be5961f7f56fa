package main

import (
	"log"
	"net/http"
	"sync"

	"IceVision/shared/mesh"
	"IceVision/shared/regen"
	"IceVision/shared/wire"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub gerencia as conexões WebSocket ativas e repassa cada malha publicada.
type Hub struct {
	clients    map[*websocket.Conn]*sync.Mutex
	broadcast  chan []byte
	unregister chan *websocket.Conn
	quit       chan struct{}
	mu         sync.Mutex

	lastMu    sync.RWMutex
	lastFrame []byte // último MESH_FRAME, enviado a quem conecta depois
}

var _ regen.Display = (*Hub)(nil)

func newHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]*sync.Mutex),
		broadcast:  make(chan []byte, 16),
		unregister: make(chan *websocket.Conn),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Hub] Recuperado de pânico fatal: %v", r)
		}
	}()

	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for c := range h.clients {
				c.Close()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		case client := <-h.unregister:
			h.mu.Lock()
			if lock, ok := h.clients[client]; ok {
				lock.Lock()
				delete(h.clients, client)
				client.Close()
				lock.Unlock()
				log.Printf("[Hub] Cliente desregistrado: %s", client.RemoteAddr())
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			type clientEntry struct {
				conn *websocket.Conn
				lock *sync.Mutex
			}
			targets := make([]clientEntry, 0, len(h.clients))
			for c, l := range h.clients {
				targets = append(targets, clientEntry{c, l})
			}
			h.mu.Unlock()

			for _, target := range targets {
				target.lock.Lock()
				err := target.conn.WriteMessage(websocket.BinaryMessage, message)
				if err != nil {
					log.Printf("[Hub] Erro ao enviar para cliente %s: %v", target.conn.RemoteAddr(), err)
					target.conn.Close()
					h.mu.Lock()
					delete(h.clients, target.conn)
					h.mu.Unlock()
				}
				target.lock.Unlock()
			}
		}
	}
}

// add registra o cliente e lhe envia a malha atual antes de qualquer broadcast.
func (h *Hub) add(conn *websocket.Conn) {
	lock := &sync.Mutex{}
	lock.Lock()
	h.mu.Lock()
	h.clients[conn] = lock
	h.mu.Unlock()
	log.Printf("[Hub] Cliente registrado: %s", conn.RemoteAddr())

	h.lastMu.RLock()
	data := h.lastFrame
	h.lastMu.RUnlock()
	if data != nil {
		if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			log.Printf("[Hub] Erro ao enviar malha inicial: %v", err)
		}
	}
	lock.Unlock()
}

// Close encerra o loop e desconecta todos os clientes.
func (h *Hub) Close() {
	select {
	case <-h.quit:
	default:
		close(h.quit)
	}
}

// ClientCount retorna o número de clientes conectados.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// SetMesh serializa a malha publicada e a envia para todos os clientes.
func (h *Hub) SetMesh(m *mesh.NormalizedMesh) {
	frame := wire.FrameFromMesh(m)
	data := wire.Pack(wire.MsgMeshFrame, frame.Marshal())

	h.lastMu.Lock()
	h.lastFrame = data
	h.lastMu.Unlock()

	log.Printf("[Hub] Malha v%d (%d faces, %d KB) para %d clientes",
		m.Version, m.FaceCount(), len(data)/1024, h.ClientCount())
	h.safeSend(data)
}

// safeSend entrega ao loop sem bloquear o publicador; se o hub já foi
// encerrado a mensagem é descartada. Não segurar h.mu aqui.
func (h *Hub) safeSend(data []byte) {
	select {
	case h.broadcast <- data:
	case <-h.quit:
	}
}
