package chaosnet

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	actrs "github.com/grinova/actors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Relay - ретранслятор комнат: не владеет симуляцией, только проверяет
// и пересылает события между пирами одной комнаты. Каждая комната -
// актор, внешняя синхронизация нужна лишь реестру комнат.
type Relay struct {
	sync.RWMutex
	config RelayConfig
	actors *actrs.Actors
	idGen  roomIDGenerator
	rooms  map[string]actrs.ActorID
	schema *jsonschema.Schema
	rand   *rand.Rand
}

// CreateRelay создаёт ретранслятор
func CreateRelay(config RelayConfig) *Relay {
	r := &Relay{
		config: config,
		rooms:  make(map[string]actrs.ActorID),
		schema: compileEventSchema(),
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	actors := actrs.New(actrs.Props{RootIDGenerator: &r.idGen})
	r.actors = &actors
	return r
}

// Connect подключает соединение к комнате; create создаёт новую комнату
// со сгенерированным кодом, иначе roomCode должен существовать
func (r *Relay) Connect(conn *websocket.Conn, roomCode string, create bool) (string, string, error) {
	r.Lock()
	var actorID actrs.ActorID
	if create {
		code, err := r.createRoom()
		if err != nil {
			r.Unlock()
			return "", "", fmt.Errorf("connect: %s", err)
		}
		roomCode = code
		actorID = r.rooms[code]
	} else {
		id, ok := r.rooms[roomCode]
		if !ok {
			r.Unlock()
			return "", "", fmt.Errorf("connect: room %s not found", roomCode)
		}
		actorID = id
	}
	// отправка в почтовый ящик комнаты не должна происходить под
	// блокировкой реестра: комната берёт её же при опустении
	r.Unlock()
	peerID := newPeerID()
	client := &Client{conn: conn, id: peerID, joined: time.Now()}
	r.actors.Send(actorID, roomJoin{client: client})
	go r.pump(conn, actorID, peerID)
	return peerID, roomCode, nil
}

// Rooms возвращает количество активных комнат
func (r *Relay) Rooms() int {
	defer r.RUnlock()
	r.RLock()
	return len(r.rooms)
}

// Close закрывает все комнаты
func (r *Relay) Close() {
	r.Lock()
	ids := make([]actrs.ActorID, 0, len(r.rooms))
	for _, actorID := range r.rooms {
		ids = append(ids, actorID)
	}
	r.Unlock()
	for _, actorID := range ids {
		r.actors.Send(actorID, roomClose{})
	}
}

// createRoom выбирает свободный код и запускает актора комнаты; код
// комнаты навязывается генератору идентификаторов, чтобы идентификатор
// актора совпадал с кодом
func (r *Relay) createRoom() (string, error) {
	var code string
	for i := 0; i < 16; i++ {
		code = randomRoomCode(r.rand)
		if _, ok := r.rooms[code]; !ok {
			break
		}
		code = ""
	}
	if code == "" {
		return "", fmt.Errorf("createRoom: can't pick a free room code")
	}
	r.idGen.id = code
	room := createRoom(code, r.config.RoomCapacity, r.schema, r.onEmpty)
	actorID, ok := r.actors.Spawn(func(id actrs.ActorID) (actrs.Actor, bool) {
		return room, true
	})
	if !ok {
		return "", fmt.Errorf("createRoom: can't spawn room actor")
	}
	r.rooms[code] = actorID
	log.Println("room created:", code)
	return code, nil
}

func (r *Relay) onEmpty(code string) {
	defer r.Unlock()
	r.Lock()
	delete(r.rooms, code)
	log.Println("room closed:", code)
}

func (r *Relay) pump(conn *websocket.Conn, actorID actrs.ActorID, peerID string) {
	defer r.actors.Send(actorID, roomLeave{id: peerID})
	for {
		var m rawMessage
		if err := conn.ReadJSON(&m); err != nil {
			log.Println("ReadJSON:", err)
			return
		}
		r.actors.Send(actorID, roomRelay{senderID: peerID, m: m})
	}
}
