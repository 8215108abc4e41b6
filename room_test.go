package chaosnet

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEldestPeer(t *testing.T) {
	r := createRoom("ABCDEF", 8, compileEventSchema(), func(string) {})
	base := time.Now()
	r.clients["young"] = &Client{id: "young", joined: base.Add(time.Minute)}
	r.clients["old"] = &Client{id: "old", joined: base}
	r.clients["new"] = &Client{id: "new", joined: base.Add(time.Hour)}

	eldest := r.eldest("new")
	if eldest == nil || eldest.id != "old" {
		t.Fatalf("eldest = %v, want old", eldest)
	}
}

func TestEldestWithoutPeers(t *testing.T) {
	r := createRoom("ABCDEF", 8, compileEventSchema(), func(string) {})
	r.clients["only"] = &Client{id: "only", joined: time.Now()}
	if eldest := r.eldest("only"); eldest != nil {
		t.Fatalf("eldest = %v for the first peer, want nil", eldest)
	}
}

func TestRelayEventGates(t *testing.T) {
	r := createRoom("ABCDEF", 8, compileEventSchema(), func(string) {})
	// комната пуста: проверяется только, что мусор и подмена
	// отправителя не роняют актора
	r.relayEvent("peer-1", json.RawMessage(`not json`))
	r.relayEvent("peer-1", json.RawMessage(`{"type": "teleport", "timestamp": 1, "senderId": "peer-1", "data": {}}`))
	r.relayEvent("peer-1", json.RawMessage(`{"type": "cursor", "timestamp": 1, "senderId": "peer-2", "data": {}}`))
	r.relayEvent("peer-1", json.RawMessage(`{"type": "cursor", "timestamp": 1, "senderId": "peer-1", "data": {}}`))
}

func TestRelayIgnoresStrangers(t *testing.T) {
	r := createRoom("ABCDEF", 8, compileEventSchema(), func(string) {})
	r.relay("stranger", rawMessage{Type: messageTypeEvent, Data: json.RawMessage(`{}`)})
}
