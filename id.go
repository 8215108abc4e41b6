package chaosnet

import (
	"math/rand"

	actrs "github.com/grinova/actors"
	"github.com/oklog/ulid/v2"
)

// Алфавит и длина кода комнаты.
const (
	roomAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomCodeLength = 6
)

// IDGenerator - генератор идентификаторов
type IDGenerator func() (string, error)

func newBodyID() string {
	return "body-" + ulid.Make().String()
}

func newPeerID() string {
	return "peer-" + ulid.Make().String()
}

func randomRoomCode(r *rand.Rand) string {
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = roomAlphabet[r.Intn(len(roomAlphabet))]
	}
	return string(code)
}

// roomIDGenerator - генератор идентификаторов акторов комнат:
// позволяет подставить заранее известный код комнаты
type roomIDGenerator struct {
	actrs.NumericIDGenerator
	id string
}

func (g *roomIDGenerator) NewID() string {
	if g.id == "" {
		return g.NumericIDGenerator.NewID()
	}
	id := g.id
	g.id = ""
	return id
}
