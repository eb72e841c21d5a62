package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mcoot/snakeladder/internal/model"
	"github.com/mcoot/snakeladder/internal/testutil"
)

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub("g-1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient()
	if !hub.Register(client) {
		t.Fatal("Register() = false on a running hub")
	}

	// Give the hub time to process registration
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.Broadcast([]byte("hello"))

	select {
	case msg := <-client.send:
		if string(msg) != "hello" {
			t.Errorf("client received %q, want %q", string(msg), "hello")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client did not receive message")
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub("g-1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient()
	hub.Register(client)
	hub.Unregister(client)

	// Unregister is processed before the next loop iteration completes
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after unregister, want 0", hub.ClientCount())
	}
	if _, ok := <-client.send; ok {
		t.Error("client send channel still open after unregister")
	}
}

func TestHub_SlowClientDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub("g-1", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	slow := NewClient()
	fast := NewClient()
	hub.Register(slow)
	hub.Register(fast)

	for i := 0; i < sendBufferSize+5; i++ {
		hub.Broadcast([]byte("x"))
		<-fast.send
	}

	if got := len(slow.send); got != sendBufferSize {
		t.Errorf("slow client buffered %d messages, want %d", got, sendBufferSize)
	}
}

func TestHub_RegisterAfterCloseFails(t *testing.T) {
	hub := NewHub("g-1", testutil.NopLogger())
	go hub.Run()
	hub.Close()
	hub.Close() // idempotent

	if hub.Register(NewClient()) {
		t.Error("Register() = true on a closed hub")
	}
}

func TestHubManager_GetOrCreateHub(t *testing.T) {
	manager := NewHubManager(nil, testutil.NopLogger())
	defer manager.CloseAll()

	hub1 := manager.GetOrCreateHub("g-1")
	hub2 := manager.GetOrCreateHub("g-1")
	if hub1 != hub2 {
		t.Error("GetOrCreateHub returned different hubs for the same game")
	}
	if manager.GetHub("g-2") != nil {
		t.Error("GetHub returned a hub for an unwatched game")
	}
}

func TestHubManager_CleanupEmptyHubs(t *testing.T) {
	manager := NewHubManager(nil, testutil.NopLogger())
	defer manager.CloseAll()

	busy := manager.GetOrCreateHub("g-1")
	busy.Register(NewClient())
	manager.GetOrCreateHub("g-2")
	time.Sleep(10 * time.Millisecond)

	manager.CleanupEmptyHubs()

	if manager.HubCount() != 1 {
		t.Errorf("HubCount() = %d, want 1", manager.HubCount())
	}
	if manager.GetHub("g-1") == nil {
		t.Error("hub with a client was removed")
	}
}

func TestHubManager_PublishEncodesEvent(t *testing.T) {
	manager := NewHubManager(nil, testutil.NopLogger())
	defer manager.CloseAll()

	client := NewClient()
	manager.GetOrCreateHub("g-1").Register(client)

	manager.Publish(model.Event{
		Type:   model.EventPositionUpdated,
		GameID: "g-1",
		Game: &model.Game{
			ID:          "g-1",
			Player1:     &model.PlayerInfo{Name: "Alice", Position: 36},
			Player2:     &model.PlayerInfo{Name: "Bob", Position: 1},
			CurrentTurn: model.SeatPlayer2,
		},
		Payload: model.PositionUpdatedPayload{Seat: model.SeatPlayer1, From: 1, Die: 1, To: 36, Via: "ladder"},
	})

	select {
	case raw := <-client.send:
		var msg struct {
			Type      string         `json:"type"`
			GameID    string         `json:"gameId"`
			GameState model.GameView `json:"gameState"`
			Payload   map[string]any `json:"payload"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if msg.Type != "position_updated" || msg.GameID != "g-1" {
			t.Errorf("got type=%q gameId=%q", msg.Type, msg.GameID)
		}
		if msg.GameState.Player1.Position != 36 || msg.GameState.CurrentTurn != model.SeatPlayer2 {
			t.Errorf("unexpected game state %+v", msg.GameState)
		}
		if msg.Payload["via"] != "ladder" {
			t.Errorf("payload via = %v, want ladder", msg.Payload["via"])
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client did not receive event")
	}
}

func TestHubManager_PublishWithoutSubscribersIsNoop(t *testing.T) {
	manager := NewHubManager(nil, testutil.NopLogger())

	manager.Publish(model.Event{Type: model.EventGameReset, GameID: "g-1"})

	if manager.HubCount() != 0 {
		t.Error("Publish created a hub")
	}
}
