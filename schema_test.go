package chaosnet

import (
	"encoding/json"
	"testing"
)

func validate(t *testing.T, raw string) error {
	t.Helper()
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatal(err)
	}
	return compileEventSchema().Validate(v)
}

func TestEventSchemaAcceptsValidEvent(t *testing.T) {
	err := validate(t, `{
		"type": "spawn",
		"timestamp": 1700000000000,
		"senderId": "peer-1",
		"data": {"objectType": "box", "position": {"x": 1, "y": 2}, "rotation": 0, "options": {}}
	}`)
	if err != nil {
		t.Fatalf("valid event was rejected: %s", err)
	}
}

func TestEventSchemaRejectsUnknownType(t *testing.T) {
	err := validate(t, `{
		"type": "teleport",
		"timestamp": 1,
		"senderId": "peer-1",
		"data": {}
	}`)
	if err == nil {
		t.Fatal("event with unknown type was accepted")
	}
}

func TestEventSchemaRejectsMissingSender(t *testing.T) {
	err := validate(t, `{
		"type": "cursor",
		"timestamp": 1,
		"data": {}
	}`)
	if err == nil {
		t.Fatal("event without senderId was accepted")
	}
}

func TestEventSchemaRejectsEmptySender(t *testing.T) {
	err := validate(t, `{
		"type": "cursor",
		"timestamp": 1,
		"senderId": "",
		"data": {}
	}`)
	if err == nil {
		t.Fatal("event with empty senderId was accepted")
	}
}

func TestEventSchemaRejectsScalarData(t *testing.T) {
	err := validate(t, `{
		"type": "cursor",
		"timestamp": 1,
		"senderId": "peer-1",
		"data": 42
	}`)
	if err == nil {
		t.Fatal("event with scalar data was accepted")
	}
}
