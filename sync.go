package chaosnet

import (
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// Типы событий синхронизации.
const (
	EventSpawn   = "spawn"
	EventForce   = "force"
	EventTool    = "tool"
	EventGravity = "gravity"
	EventCursor  = "cursor"
)

// Event - единица репликации: самоописывающее событие, воспроизводимое
// пиром без общей предыстории. Отметка времени только диагностическая,
// порядок доставки она не гарантирует.
type Event struct {
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	SenderID  string          `json:"senderId"`
	Data      json.RawMessage `json:"data"`
}

// SpawnEventOptions - переопределения архетипа в событии создания
type SpawnEventOptions struct {
	ID              string  `json:"id,omitempty"`
	Velocity        *Point  `json:"velocity,omitempty"`
	AngularVelocity float64 `json:"angularVelocity,omitempty"`
	Scale           float64 `json:"scale,omitempty"`
}

// SpawnData - данные события создания тела
type SpawnData struct {
	ObjectType string            `json:"objectType"`
	Position   Point             `json:"position"`
	Rotation   float64           `json:"rotation"`
	Options    SpawnEventOptions `json:"options"`
}

// ForceData - данные события приложения силы
type ForceData struct {
	ObjectID  string  `json:"objectId"`
	Position  Point   `json:"position"`
	Direction Point   `json:"direction"`
	Strength  float64 `json:"strength"`
}

// ToolParamsData - параметры инструмента в событии
type ToolParamsData struct {
	Force     float64 `json:"force,omitempty"`
	Radius    float64 `json:"radius,omitempty"`
	Direction *Point  `json:"direction,omitempty"`
	Grow      bool    `json:"grow,omitempty"`
}

// ToolData - данные события применения инструмента
type ToolData struct {
	ToolType string         `json:"toolType"`
	Position Point          `json:"position"`
	Params   ToolParamsData `json:"params"`
}

// GravityData - данные события смены гравитации
type GravityData struct {
	Gravity Point `json:"gravity"`
}

// CursorData - данные события курсора
type CursorData struct {
	Position Point  `json:"position"`
	ToolID   string `json:"toolId"`
}

// EventHandlers - таблица обработчиков входящих событий
type EventHandlers struct {
	OnSpawn   func(senderID string, data SpawnData)
	OnForce   func(senderID string, data ForceData)
	OnTool    func(senderID string, data ToolData)
	OnGravity func(senderID string, data GravityData)
	OnCursor  func(senderID string, data CursorData)
}

// Replicator - слой репликации: собирает, рассылает и интерпретирует
// события синхронизации
type Replicator struct {
	selfID    string
	transport Transport
	now       func() time.Time
}

func createReplicator(selfID string, transport Transport) *Replicator {
	return &Replicator{selfID: selfID, transport: transport, now: time.Now}
}

// BuildEvent собирает событие с отметкой времени и идентификатором
// отправителя
func (r *Replicator) BuildEvent(eventType string, data interface{}) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("buildEvent: %s", err)
	}
	return Event{
		Type:      eventType,
		Timestamp: r.now().UnixMilli(),
		SenderID:  r.selfID,
		Data:      raw,
	}, nil
}

// Broadcast собирает и рассылает событие; без подключённого транспорта
// вырождается в no-op (одиночный режим)
func (r *Replicator) Broadcast(eventType string, data interface{}) {
	if r.transport == nil || !r.transport.IsConnected() {
		return
	}
	event, err := r.BuildEvent(eventType, data)
	if err != nil {
		log.Println("broadcast:", err)
		return
	}
	if err := r.transport.Broadcast(event); err != nil {
		log.Println("broadcast:", err)
	}
}

// Receive подавляет собственное эхо и передаёт событие обработчику его
// типа; событие неизвестного типа журналируется и отбрасывается
func (r *Replicator) Receive(event Event, handlers EventHandlers) {
	if event.SenderID == r.selfID {
		return
	}
	switch event.Type {
	case EventSpawn:
		var data SpawnData
		if decodeEventData(event, &data) && handlers.OnSpawn != nil {
			handlers.OnSpawn(event.SenderID, data)
		}
	case EventForce:
		var data ForceData
		if decodeEventData(event, &data) && handlers.OnForce != nil {
			handlers.OnForce(event.SenderID, data)
		}
	case EventTool:
		var data ToolData
		if decodeEventData(event, &data) && handlers.OnTool != nil {
			handlers.OnTool(event.SenderID, data)
		}
	case EventGravity:
		var data GravityData
		if decodeEventData(event, &data) && handlers.OnGravity != nil {
			handlers.OnGravity(event.SenderID, data)
		}
	case EventCursor:
		var data CursorData
		if decodeEventData(event, &data) && handlers.OnCursor != nil {
			handlers.OnCursor(event.SenderID, data)
		}
	default:
		log.Println("receive: unknown event type:", event.Type)
	}
}

func decodeEventData(event Event, v interface{}) bool {
	if err := json.Unmarshal(event.Data, v); err != nil {
		log.Printf("receive: malformed %s event: %s", event.Type, err)
		return false
	}
	return true
}
