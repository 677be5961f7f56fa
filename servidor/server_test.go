package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"IceVision/shared/config"
	"IceVision/shared/journal"
	"IceVision/shared/wire"

	"github.com/gorilla/websocket"
)

func startTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultConfig()
	cfg.RegenPeriod = 3600

	srv := NewServer(cfg, j)
	srv.Start()
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(func() {
		srv.Stop()
		ts.Close()
		j.Close()
	})
	return srv, ts
}

// readFrame lê mensagens até encontrar um MESH_FRAME com versão >= minVersion.
func readFrame(t *testing.T, conn *websocket.Conn, minVersion uint64) *wire.MeshFrame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage: %v", err)
		}
		var env wire.Envelope
		if err := env.Unmarshal(data); err != nil {
			t.Fatal(err)
		}
		if env.Type != wire.MsgMeshFrame {
			continue
		}
		var frame wire.MeshFrame
		if err := frame.Unmarshal(env.Payload); err != nil {
			t.Fatal(err)
		}
		if frame.Version >= minVersion {
			return &frame
		}
	}
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatal(err)
		}
	}
	return resp.StatusCode
}

func TestServerBroadcastsAndAcceptsControl(t *testing.T) {
	_, ts := startTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	first := readFrame(t, conn, 1)
	if first.Level != 0 || first.Depth != 1 || len(first.Positions) != 240*3 {
		t.Fatalf("frame inicial = nível %d profundidade %d, %d floats", first.Level, first.Depth, len(first.Positions))
	}

	req := wire.RegenerateRequest{HasLevel: true, Level: 0}
	if err := conn.WriteMessage(websocket.BinaryMessage, wire.Pack(wire.MsgRegenerate, req.Marshal())); err != nil {
		t.Fatal(err)
	}
	second := readFrame(t, conn, first.Version+1)
	if second.Level != 0 {
		t.Errorf("frame após REGENERATE nível %d, want 0", second.Level)
	}

	// Movimento do ponteiro só adia o timer; nada é publicado.
	conn.WriteMessage(websocket.BinaryMessage, wire.Pack(wire.MsgPointerMove, nil))

	var status StatusResponse
	if code := getJSON(t, ts.URL+"/status", &status); code != http.StatusOK {
		t.Fatalf("GET /status = %d", code)
	}
	if status.State != "ready" || status.Version != second.Version || status.Faces != 80 || status.Clients != 1 {
		t.Errorf("status = %+v", status)
	}
	if status.PeriodSeconds != 3600 {
		t.Errorf("periodSeconds = %d, want 3600", status.PeriodSeconds)
	}

	var history []journal.GenerationRecord
	if code := getJSON(t, ts.URL+"/history?n=5", &history); code != http.StatusOK {
		t.Fatalf("GET /history = %d", code)
	}
	if len(history) != 2 || history[0].Version != second.Version {
		t.Errorf("history = %+v", history)
	}
}

func TestHandleClientMessageRejectsInvalidLevel(t *testing.T) {
	srv, _ := startTestServer(t)

	deadline := time.Now().Add(10 * time.Second)
	for srv.regen.CurrentMesh() == nil && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	before := srv.regen.CurrentMesh()
	if before == nil {
		t.Fatal("nenhuma malha inicial")
	}

	req := wire.RegenerateRequest{HasLevel: true, Level: 7}
	srv.handleClientMessage(&wire.Envelope{Type: wire.MsgRegenerate, Payload: req.Marshal()})
	srv.handleClientMessage(&wire.Envelope{Type: wire.MsgRegenerate, Payload: []byte{0x80}})
	srv.handleClientMessage(&wire.Envelope{Type: wire.MessageType(99)})

	time.Sleep(50 * time.Millisecond)
	if srv.regen.CurrentMesh() != before {
		t.Error("mensagem inválida substituiu a malha publicada")
	}
}

func TestHistoryDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	srv := NewServer(cfg, nil)
	defer srv.Stop()

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /history sem journal = %d, want 404", rec.Code)
	}
}
