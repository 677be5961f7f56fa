package client

import (
	"fmt"
	"log"
	"sync"
	"time"

	"IceVision/shared/wire"

	"github.com/gorilla/websocket"
)

// PointerMoveInterval limita a frequência dos POINTER_MOVE enviados.
const PointerMoveInterval = 250 * time.Millisecond

// NetworkClient lida com a comunicação com o servidor IceVision.
type NetworkClient struct {
	conn      *websocket.Conn
	url       string
	connected bool
	mu        sync.RWMutex
	writeMu   sync.Mutex
	done      chan struct{}

	lastPointer time.Time

	MaxRetries int
	RetryDelay time.Duration

	// Callbacks para o App (chamados na goroutine de leitura)
	OnFrame      func(frame *wire.MeshFrame)
	OnDisconnect func(err error)
}

func NewNetworkClient(url string) *NetworkClient {
	return &NetworkClient{
		url:        url,
		done:       make(chan struct{}),
		MaxRetries: 10,
		RetryDelay: 2 * time.Second,
	}
}

// Connect tenta conectar algumas vezes e inicia o loop de leitura.
func (c *NetworkClient) Connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	var conn *websocket.Conn
	var err error
	for i := 0; i < c.MaxRetries; i++ {
		log.Printf("[Network] Tentativa de conexão %d/%d em %s...", i+1, c.MaxRetries, c.url)
		conn, _, err = dialer.Dial(c.url, nil)
		if err == nil {
			break
		}
		log.Printf("[Network] Servidor ainda não está pronto: %v. Aguardando...", err)
		time.Sleep(c.RetryDelay)
	}
	if conn == nil {
		if err == nil {
			err = fmt.Errorf("nenhuma tentativa de conexão")
		}
		log.Printf("[Network] ERRO CRÍTICO após %d tentativas: %v", c.MaxRetries, err)
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readLoop()
	return nil
}

func (c *NetworkClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// RequestNext pede o próximo nível do ciclo.
func (c *NetworkClient) RequestNext() {
	req := wire.RegenerateRequest{}
	c.Send(wire.MsgRegenerate, req.Marshal())
}

// RequestLevel pede um nível específico.
func (c *NetworkClient) RequestLevel(level int) {
	req := wire.RegenerateRequest{HasLevel: true, Level: int32(level)}
	c.Send(wire.MsgRegenerate, req.Marshal())
}

// PointerMoved avisa o servidor do movimento, no máximo uma vez por intervalo.
func (c *NetworkClient) PointerMoved() {
	c.writeMu.Lock()
	now := time.Now()
	if now.Sub(c.lastPointer) < PointerMoveInterval {
		c.writeMu.Unlock()
		return
	}
	c.lastPointer = now
	c.writeMu.Unlock()

	c.Send(wire.MsgPointerMove, nil)
}

// Send embrulha o payload em um Envelope e escreve no socket.
func (c *NetworkClient) Send(msgType wire.MessageType, payload []byte) {
	c.mu.RLock()
	conn, ok := c.conn, c.connected
	c.mu.RUnlock()
	if !ok {
		return
	}

	data := wire.Pack(msgType, payload)

	c.writeMu.Lock()
	err := conn.WriteMessage(websocket.BinaryMessage, data)
	c.writeMu.Unlock()

	if err != nil {
		log.Printf("[Network] Erro ao enviar %v: %v", msgType, err)
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}
}

// Close encerra a conexão e espera o loop de leitura.
func (c *NetworkClient) Close() {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return
	}

	c.writeMu.Lock()
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	c.writeMu.Unlock()
	conn.Close()
	<-c.done
}

func (c *NetworkClient) readLoop() {
	var readErr error
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		c.conn.Close()
		if c.OnDisconnect != nil {
			c.OnDisconnect(readErr)
		}
		close(c.done)
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			readErr = err
			log.Printf("[Network] Conexão perdida: %v", err)
			return
		}

		var env wire.Envelope
		if err := env.Unmarshal(message); err != nil {
			log.Printf("[Network] Erro ao desempacotar envelope: %v", err)
			continue
		}
		c.handleMessage(&env)
	}
}

func (c *NetworkClient) handleMessage(env *wire.Envelope) {
	switch env.Type {
	case wire.MsgMeshFrame:
		var frame wire.MeshFrame
		if err := frame.Unmarshal(env.Payload); err != nil {
			log.Printf("[Network] Frame de malha inválido: %v", err)
			return
		}
		log.Printf("[Network] Malha v%d recebida: nível %d, %d vértices", frame.Version, frame.Level, len(frame.Positions)/3)
		if c.OnFrame != nil {
			c.OnFrame(&frame)
		}
	default:
		log.Printf("[Network] Mensagem %v ignorada", env.Type)
	}
}
