package chaosnet

import (
	"encoding/json"

	"github.com/jakecoffman/cp"
)

// Типы конвертов протокола между пиром и ретранслятором.
const (
	messageTypeEvent  = "event"
	messageTypeSystem = "system"
)

// Идентификаторы системных сообщений.
const (
	systemWelcome         = "welcome"
	systemPeerJoin        = "peer-join"
	systemPeerLeave       = "peer-leave"
	systemSnapshotRequest = "snapshot-request"
	systemSnapshot        = "snapshot"
)

type message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// rawMessage - конверт на стороне чтения: содержимое разбирается получателем
type rawMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type route struct {
	ID   string      `json:"id"`
	Data interface{} `json:"data"`
}

type rawRoute struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// Point - точка
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func pt(v cp.Vector) Point {
	return Point{X: v.X, Y: v.Y}
}

func vec(p Point) cp.Vector {
	return cp.Vector{X: p.X, Y: p.Y}
}

// WelcomeProps - свойства приветствия нового пира
type WelcomeProps struct {
	ID    string `json:"id"`
	Room  string `json:"room"`
	Peers int    `json:"peers"`
}

// PeerProps - свойства уведомления об изменении состава комнаты
type PeerProps struct {
	ID    string `json:"id"`
	Peers int    `json:"peers"`
}

// SnapshotRequestProps - запрос снимка мира для нового пира
type SnapshotRequestProps struct {
	To string `json:"to"`
}

// SnapshotProps - снимок мира, адресованный конкретному пиру
type SnapshotProps struct {
	To   string `json:"to"`
	Blob string `json:"blob"`
}
