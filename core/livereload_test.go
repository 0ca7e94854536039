package core

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialReloader(t *testing.T, lr LiveReloaderInterface) (*websocket.Conn, func()) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(lr.Handler))

	url := "ws" + server.URL[len("http"):]
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		server.Close()
		t.Fatalf("failed to connect to WebSocket: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	return ws, server.Close
}

func TestLiveReloader_ClientConnectsAndReceivesReload(t *testing.T) {
	lr := NewLiveReloader()
	ws, stop := dialReloader(t, lr)
	defer stop()
	defer ws.Close()

	lr.BroadcastReload()

	ws.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, msg, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read reload message: %v", err)
	}
	if string(msg) != "reload" {
		t.Errorf("expected 'reload' message, got %q", msg)
	}
}

func TestLiveReloader_RemovesDisconnectedClients(t *testing.T) {
	lr := NewLiveReloader()
	ws, stop := dialReloader(t, lr)
	defer stop()

	_ = ws.Close()
	time.Sleep(100 * time.Millisecond)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("BroadcastReload panicked after client disconnect: %v", r)
		}
	}()

	lr.BroadcastReload()

	if n := lr.(*LiveReloader).clientCount(); n != 0 {
		t.Errorf("expected no clients, got %d", n)
	}
}

func TestLiveReloader_IgnoreUpgradeError(t *testing.T) {
	lr := NewLiveReloader()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	lr.Handler(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected HTTP 400 on upgrade failure, got %d", w.Code)
	}
}

func TestLiveReloader_CloseDisconnectsClients(t *testing.T) {
	lr := NewLiveReloader()
	ws, stop := dialReloader(t, lr)
	defer stop()
	defer ws.Close()

	lr.Close()

	ws.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, _, err := ws.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("expected going-away close, got %v", err)
	}
	if n := lr.(*LiveReloader).clientCount(); n != 0 {
		t.Errorf("expected no clients after Close, got %d", n)
	}
}
