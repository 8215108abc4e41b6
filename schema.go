package chaosnet

import "github.com/santhosh-tekuri/jsonschema/v5"

// eventSchema - схема конверта события синхронизации; ретранслятор
// отбрасывает сообщения, не проходящие валидацию
const eventSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["type", "timestamp", "senderId", "data"],
  "properties": {
    "type": {"enum": ["spawn", "force", "tool", "gravity", "cursor"]},
    "timestamp": {"type": "integer"},
    "senderId": {"type": "string", "minLength": 1},
    "data": {"type": "object"}
  }
}`

func compileEventSchema() *jsonschema.Schema {
	return jsonschema.MustCompileString("event.json", eventSchema)
}
