package chaosnet

import (
	"encoding/json"
	"log"
	"time"

	actrs "github.com/grinova/actors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

type roomJoin struct {
	client *Client
}

type roomLeave struct {
	id string
}

type roomRelay struct {
	senderID string
	m        rawMessage
}

type roomClose struct{}

// room - актор комнаты: весь трафик комнаты проходит через почтовый
// ящик актора, поэтому состав участников не требует блокировок
type room struct {
	code     string
	capacity int
	clients  clients
	schema   *jsonschema.Schema
	onEmpty  func(code string)
}

func createRoom(code string, capacity int, schema *jsonschema.Schema, onEmpty func(code string)) *room {
	return &room{
		code:     code,
		capacity: capacity,
		clients:  make(clients),
		schema:   schema,
		onEmpty:  onEmpty,
	}
}

// OnInit - инициализация актора комнаты
func (r *room) OnInit(selfID actrs.ActorID, send actrs.Send, spawn actrs.Spawn, exit actrs.Exit) {
}

// OnMessage - обработка сообщений комнаты
func (r *room) OnMessage(message actrs.Message, send actrs.Send, spawn actrs.Spawn, exit actrs.Exit) {
	switch m := message.(type) {
	case roomJoin:
		r.join(m.client)
	case roomLeave:
		r.leave(m.id, exit)
	case roomRelay:
		r.relay(m.senderID, m.m)
	case roomClose:
		r.close(exit)
	}
}

func (r *room) join(c *Client) {
	if len(r.clients) >= r.capacity {
		log.Printf("room %s: capacity %d exceeded, peers may degrade", r.code, r.capacity)
	}
	r.clients[c.id] = c
	c.SendSystemMessage(systemWelcome, WelcomeProps{
		ID:    c.id,
		Room:  r.code,
		Peers: len(r.clients),
	})
	notify := &systemSync{parent: &except{broadcast: &broadcast{clients: r.clients}, exceptID: c.id}, id: systemPeerJoin}
	notify.sync(PeerProps{ID: c.id, Peers: len(r.clients)})
	if eldest := r.eldest(c.id); eldest != nil {
		eldest.SendSystemMessage(systemSnapshotRequest, SnapshotRequestProps{To: c.id})
	}
}

func (r *room) leave(id string, exit actrs.Exit) {
	c, ok := r.clients[id]
	if !ok {
		return
	}
	c.conn.Close()
	delete(r.clients, id)
	notify := &systemSync{parent: &broadcast{clients: r.clients}, id: systemPeerLeave}
	notify.sync(PeerProps{ID: id, Peers: len(r.clients)})
	if len(r.clients) == 0 {
		r.onEmpty(r.code)
		exit()
	}
}

func (r *room) relay(senderID string, m rawMessage) {
	if _, ok := r.clients[senderID]; !ok {
		return
	}
	switch m.Type {
	case messageTypeEvent:
		r.relayEvent(senderID, m.Data)
	case messageTypeSystem:
		r.relaySystem(senderID, m.Data)
	default:
		log.Printf("room %s: unknown envelope type %q from %s", r.code, m.Type, senderID)
	}
}

// relayEvent проверяет событие схемой и подлинностью отправителя, после
// чего рассылает его всем остальным участникам без изменений
func (r *room) relayEvent(senderID string, data json.RawMessage) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		log.Printf("room %s: malformed event from %s: %s", r.code, senderID, err)
		return
	}
	if err := r.schema.Validate(v); err != nil {
		log.Printf("room %s: invalid event from %s: %s", r.code, senderID, err)
		return
	}
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		log.Printf("room %s: malformed event from %s: %s", r.code, senderID, err)
		return
	}
	if event.SenderID != senderID {
		log.Printf("room %s: sender mismatch: %s claims %s", r.code, senderID, event.SenderID)
		return
	}
	sync := &eventSync{parent: &except{broadcast: &broadcast{clients: r.clients}, exceptID: senderID}}
	sync.sync(data)
}

func (r *room) relaySystem(senderID string, data json.RawMessage) {
	var route rawRoute
	if err := json.Unmarshal(data, &route); err != nil {
		log.Printf("room %s: malformed system message from %s: %s", r.code, senderID, err)
		return
	}
	switch route.ID {
	case systemSnapshot:
		var props SnapshotProps
		if err := json.Unmarshal(route.Data, &props); err != nil {
			log.Printf("room %s: malformed snapshot from %s: %s", r.code, senderID, err)
			return
		}
		sync := &systemSync{parent: &target{broadcast: &broadcast{clients: r.clients}, targetID: props.To}, id: systemSnapshot}
		sync.sync(props)
	default:
		log.Printf("room %s: unexpected system message %q from %s", r.code, route.ID, senderID)
	}
}

func (r *room) close(exit actrs.Exit) {
	for id, c := range r.clients {
		c.conn.Close()
		delete(r.clients, id)
	}
	r.onEmpty(r.code)
	exit()
}

// eldest возвращает самого давнего участника кроме joined - он
// авторитетный источник снимка мира для нового пира
func (r *room) eldest(joined string) *Client {
	var oldest *Client
	var oldestAt time.Time
	for id, c := range r.clients {
		if id == joined {
			continue
		}
		if oldest == nil || c.joined.Before(oldestAt) {
			oldest = c
			oldestAt = c.joined
		}
	}
	return oldest
}
