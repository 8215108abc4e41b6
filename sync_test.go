package chaosnet

import (
	"encoding/json"
	"testing"
	"time"
)

func mustEvent(t *testing.T, eventType, senderID string, data interface{}) Event {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	return Event{Type: eventType, Timestamp: 1, SenderID: senderID, Data: raw}
}

func TestReceiveSuppressesOwnEcho(t *testing.T) {
	r := createReplicator("me", nil)
	called := false
	handlers := EventHandlers{
		OnSpawn: func(senderID string, data SpawnData) { called = true },
	}
	r.Receive(mustEvent(t, EventSpawn, "me", SpawnData{ObjectType: "box"}), handlers)
	if called {
		t.Fatal("own event was dispatched")
	}
}

func TestReceiveDispatchesByType(t *testing.T) {
	r := createReplicator("me", nil)
	var gotSpawn SpawnData
	var gotSender string
	handlers := EventHandlers{
		OnSpawn: func(senderID string, data SpawnData) {
			gotSender = senderID
			gotSpawn = data
		},
	}
	r.Receive(mustEvent(t, EventSpawn, "other", SpawnData{
		ObjectType: "ball",
		Position:   Point{X: 10, Y: 20},
	}), handlers)
	if gotSender != "other" {
		t.Fatalf("sender = %q, want other", gotSender)
	}
	if gotSpawn.ObjectType != "ball" || gotSpawn.Position.X != 10 {
		t.Fatalf("spawn data = %+v", gotSpawn)
	}
}

func TestReceiveUnknownTypeIsDropped(t *testing.T) {
	r := createReplicator("me", nil)
	handlers := EventHandlers{
		OnSpawn: func(senderID string, data SpawnData) {
			t.Fatal("handler was called for an unknown event type")
		},
	}
	r.Receive(mustEvent(t, "teleport", "other", map[string]string{}), handlers)
}

func TestReceiveMalformedDataIsDropped(t *testing.T) {
	r := createReplicator("me", nil)
	handlers := EventHandlers{
		OnForce: func(senderID string, data ForceData) {
			t.Fatal("handler was called for malformed data")
		},
	}
	r.Receive(Event{
		Type:     EventForce,
		SenderID: "other",
		Data:     json.RawMessage(`"not an object"`),
	}, handlers)
}

func TestBuildEvent(t *testing.T) {
	r := createReplicator("me", nil)
	r.now = func() time.Time { return time.UnixMilli(1234) }
	event, err := r.BuildEvent(EventGravity, GravityData{Gravity: Point{Y: -300}})
	if err != nil {
		t.Fatal(err)
	}
	if event.Type != EventGravity || event.SenderID != "me" || event.Timestamp != 1234 {
		t.Fatalf("event envelope = %+v", event)
	}
	var data GravityData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Gravity.Y != -300 {
		t.Fatalf("gravity = %+v", data.Gravity)
	}
}

func TestBroadcastWithoutTransport(t *testing.T) {
	r := createReplicator("me", nil)
	// одиночный режим: рассылка без транспорта вырождается в no-op
	r.Broadcast(EventCursor, CursorData{})
}
