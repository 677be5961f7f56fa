package client

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"IceVision/shared/wire"

	"github.com/gorilla/websocket"
)

// fakeServer envia um frame ao conectar e repassa as mensagens recebidas.
func fakeServer(t *testing.T, frame *wire.MeshFrame, received chan<- wire.Envelope) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.BinaryMessage, []byte{0x80}) // lixo: deve ser ignorado
		conn.WriteMessage(websocket.BinaryMessage, wire.Pack(wire.MsgMeshFrame, frame.Marshal()))
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var env wire.Envelope
			if env.Unmarshal(data) == nil {
				received <- env
			}
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testFrame() *wire.MeshFrame {
	tri := []float32{0, 0, 1, 1, 0, 0, 0, 1, 0}
	return &wire.MeshFrame{Version: 3, Level: 1, Depth: 6, Positions: tri, Normals: tri}
}

func TestNetworkClientReceivesFramesAndSendsControl(t *testing.T) {
	received := make(chan wire.Envelope, 8)
	ts := fakeServer(t, testFrame(), received)

	c := NewNetworkClient("ws" + strings.TrimPrefix(ts.URL, "http"))
	frames := make(chan *wire.MeshFrame, 1)
	c.OnFrame = func(f *wire.MeshFrame) { frames <- f }

	if err := c.Connect(); err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	select {
	case f := <-frames:
		if f.Version != 3 || f.Level != 1 || len(f.Positions) != 9 {
			t.Errorf("frame = %+v", f)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("nenhum frame recebido")
	}

	c.RequestNext()
	c.RequestLevel(2)
	c.PointerMoved()
	c.PointerMoved() // dentro do intervalo: descartado

	want := []struct {
		typ      wire.MessageType
		hasLevel bool
		level    int32
	}{
		{wire.MsgRegenerate, false, 0},
		{wire.MsgRegenerate, true, 2},
		{wire.MsgPointerMove, false, 0},
	}
	for i, w := range want {
		select {
		case env := <-received:
			if env.Type != w.typ {
				t.Fatalf("mensagem %d tipo = %v, want %v", i, env.Type, w.typ)
			}
			if w.typ == wire.MsgRegenerate {
				var req wire.RegenerateRequest
				if err := req.Unmarshal(env.Payload); err != nil {
					t.Fatal(err)
				}
				if req.HasLevel != w.hasLevel || req.Level != w.level {
					t.Errorf("mensagem %d = %+v", i, req)
				}
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("mensagem %d não chegou", i)
		}
	}

	select {
	case env := <-received:
		t.Errorf("mensagem extra %v", env.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNetworkClientConnectFails(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	c := NewNetworkClient("ws" + strings.TrimPrefix(ts.URL, "http"))
	c.MaxRetries = 2
	c.RetryDelay = time.Millisecond
	if err := c.Connect(); err == nil {
		t.Fatal("Connect deveria falhar")
	}
	if c.IsConnected() {
		t.Error("IsConnected() verdadeiro após falha")
	}
	c.RequestNext() // sem conexão: não deve travar nem entrar em pânico
	c.Close()
}

func TestNetworkClientDisconnect(t *testing.T) {
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err == nil {
			conn.Close()
		}
	}))
	defer ts.Close()

	c := NewNetworkClient("ws" + strings.TrimPrefix(ts.URL, "http"))
	disconnected := make(chan struct{})
	c.OnDisconnect = func(error) { close(disconnected) }
	if err := c.Connect(); err != nil {
		t.Fatal(err)
	}

	select {
	case <-disconnected:
	case <-time.After(5 * time.Second):
		t.Fatal("OnDisconnect não foi chamado")
	}
	if c.IsConnected() {
		t.Error("IsConnected() verdadeiro após desconexão")
	}
}
