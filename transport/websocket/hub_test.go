package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/mcp-training/tileswap/game/engine"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		id:        sessionID + "-client",
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, engine.WebSocketBufferSize),
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func receive(t *testing.T, client *Client) Message {
	t.Helper()
	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		return message
	case <-time.After(time.Second):
		t.Fatal("No message received within timeout")
	}
	return Message{}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels must be initialized")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if hub.ClientCount("test-session") != 1 {
		t.Errorf("Expected 1 client in session, got %d", hub.ClientCount("test-session"))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Expected send channel to be closed")
	}

	// A second unregister must not close the channel twice
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)

	hub.registerClient(client1)
	hub.registerClient(client2)
	if hub.ClientCount(sessionID) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", hub.ClientCount(sessionID))
	}

	hub.unregisterClient(client1)
	if hub.ClientCount(sessionID) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", hub.ClientCount(sessionID))
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := startHub(t)
	client := newTestClient(hub, "broadcast-test")
	other := newTestClient(hub, "other-session")
	hub.register <- client
	hub.register <- other

	state := &engine.GameState{
		Rows:  2,
		Cols:  2,
		Grid:  [][]int{{1, 2}, {3, 4}},
		Score: 6,
	}
	hub.BroadcastToSession("broadcast-test", state)

	message := receive(t, client)
	if message.SessionID != "broadcast-test" {
		t.Errorf("Expected sessionID broadcast-test, got %s", message.SessionID)
	}
	if message.Event != EventStateUpdate {
		t.Errorf("Expected event %s, got %s", EventStateUpdate, message.Event)
	}
	if message.GameState == nil || message.GameState.Score != 6 || message.GameState.Grid[1][0] != 3 {
		t.Errorf("GameState not correctly transmitted: %+v", message.GameState)
	}

	select {
	case <-other.send:
		t.Error("Client of another session should not receive the message")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubBroadcastMove(t *testing.T) {
	hub := startHub(t)
	client := newTestClient(hub, "move-test")
	hub.register <- client

	move := &engine.MoveResult{
		Action:          engine.ActionSwap,
		Swapped:         &engine.SwapPair{From: engine.Coord{X: 0, Y: 0}, To: engine.Coord{X: 1, Y: 0}},
		RemovedCells:    []engine.Coord{{X: 0, Y: 0}, {X: 0, Y: 1}},
		RefilledColumns: map[int][]int{0: {4, 5}},
		ScoreDelta:      2,
		Score:           2,
	}
	hub.BroadcastMove("move-test", &engine.GameState{Score: 2}, move)

	message := receive(t, client)
	if message.Event != EventMove {
		t.Errorf("Expected event %s, got %s", EventMove, message.Event)
	}
	if message.Move == nil || message.Move.ScoreDelta != 2 || len(message.Move.RemovedCells) != 2 {
		t.Fatalf("Move not correctly transmitted: %+v", message.Move)
	}
	if got := message.Move.RefilledColumns[0]; len(got) != 2 || got[0] != 4 {
		t.Errorf("Expected refilled column [4 5], got %v", got)
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := startHub(t)
	client := newTestClient(hub, "event-test")
	hub.register <- client

	hub.BroadcastEvent("event-test", "custom-event", "test-data")

	message := receive(t, client)
	if message.Event != "custom-event" {
		t.Errorf("Expected event 'custom-event', got %s", message.Event)
	}
	if message.Data != "test-data" {
		t.Errorf("Expected data 'test-data', got %v", message.Data)
	}
}

func TestHubRunStopsOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := newTestClient(hub, "shutdown")
	hub.register <- client
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if hub.ClientCount("shutdown") != 0 {
		t.Error("Expected clients to be closed on shutdown")
	}
}

func newWSServer(t *testing.T, hub *Hub) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(server.Close)
	return server
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within timeout")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketUpgrade(t *testing.T) {
	hub := startHub(t)
	server := newWSServer(t, hub)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}

	waitFor(t, func() bool { return hub.ClientCount("ws-test") == 1 })

	conn.Close()
	waitFor(t, func() bool { return hub.ClientCount("ws-test") == 0 })
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub := startHub(t)
	server := newWSServer(t, hub)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=msg-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return hub.ClientCount("msg-test") == 1 })

	hub.BroadcastToSession("msg-test", &engine.GameState{Rows: 1, Cols: 3, Grid: [][]int{{7, 8, 9}}, Score: 20})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if message.SessionID != "msg-test" {
		t.Errorf("Expected sessionID 'msg-test', got %s", message.SessionID)
	}
	if message.GameState.Score != 20 || message.GameState.Grid[0][2] != 9 {
		t.Errorf("GameState not correctly received: %+v", message.GameState)
	}
}
