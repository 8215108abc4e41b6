package chaosnet

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// Transport - транспорт пира: рассылка событий остальной комнате и
// приём входящих конвертов; гарантий порядка и доставки нет
type Transport interface {
	Broadcast(event Event) error
	SendSystem(id string, data interface{}) error
	Messages() <-chan rawMessage
	ID() string
	Room() string
	ConnectionCount() int
	IsConnected() bool
	Close() error
}

type wsTransport struct {
	conn     *websocket.Conn
	id       string
	room     string
	peers    int32
	alive    int32
	messages chan rawMessage
	writeMu  sync.Mutex
}

// DialRoom подключается к ретранслятору; пустой код комнаты создаёт
// новую комнату. Ошибка установления соединения - единственная ошибка
// ядра, которая поднимается до вызывающего.
func DialRoom(relayURL, room string) (Transport, error) {
	u, err := url.Parse(relayURL)
	if err != nil {
		return nil, fmt.Errorf("dialRoom: %s", err)
	}
	q := u.Query()
	if room == "" {
		q.Set("create", "1")
	} else {
		q.Set("room", room)
	}
	u.RawQuery = q.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dialRoom: %s", err)
	}
	welcome, err := readWelcome(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("dialRoom: %s", err)
	}
	t := &wsTransport{
		conn:     conn,
		id:       welcome.ID,
		room:     welcome.Room,
		peers:    int32(welcome.Peers),
		alive:    1,
		messages: make(chan rawMessage, 64),
	}
	go t.readPump()
	return t, nil
}

func readWelcome(conn *websocket.Conn) (WelcomeProps, error) {
	var m rawMessage
	if err := conn.ReadJSON(&m); err != nil {
		return WelcomeProps{}, err
	}
	if m.Type != messageTypeSystem {
		return WelcomeProps{}, fmt.Errorf("unexpected message type %q", m.Type)
	}
	var r rawRoute
	if err := json.Unmarshal(m.Data, &r); err != nil {
		return WelcomeProps{}, err
	}
	if r.ID != systemWelcome {
		return WelcomeProps{}, fmt.Errorf("unexpected system message %q", r.ID)
	}
	var welcome WelcomeProps
	if err := json.Unmarshal(r.Data, &welcome); err != nil {
		return WelcomeProps{}, err
	}
	return welcome, nil
}

func (t *wsTransport) readPump() {
	defer close(t.messages)
	for {
		var m rawMessage
		if err := t.conn.ReadJSON(&m); err != nil {
			atomic.StoreInt32(&t.alive, 0)
			log.Println("ReadJSON:", err)
			return
		}
		t.trackPeers(m)
		t.messages <- m
	}
}

// trackPeers обновляет счётчик участников по системным уведомлениям
func (t *wsTransport) trackPeers(m rawMessage) {
	if m.Type != messageTypeSystem {
		return
	}
	var r rawRoute
	if err := json.Unmarshal(m.Data, &r); err != nil {
		return
	}
	if r.ID != systemPeerJoin && r.ID != systemPeerLeave {
		return
	}
	var props PeerProps
	if err := json.Unmarshal(r.Data, &props); err != nil {
		return
	}
	atomic.StoreInt32(&t.peers, int32(props.Peers))
}

func (t *wsTransport) Broadcast(event Event) error {
	return t.write(message{Type: messageTypeEvent, Data: event})
}

func (t *wsTransport) SendSystem(id string, data interface{}) error {
	return t.write(message{Type: messageTypeSystem, Data: route{ID: id, Data: data}})
}

func (t *wsTransport) write(m message) error {
	if atomic.LoadInt32(&t.alive) == 0 {
		return fmt.Errorf("transport: connection is closed")
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := t.conn.WriteJSON(m); err != nil {
		return fmt.Errorf("transport: %s", err)
	}
	return nil
}

func (t *wsTransport) Messages() <-chan rawMessage { return t.messages }

func (t *wsTransport) ID() string { return t.id }

func (t *wsTransport) Room() string { return t.room }

func (t *wsTransport) ConnectionCount() int {
	return int(atomic.LoadInt32(&t.peers))
}

func (t *wsTransport) IsConnected() bool {
	return atomic.LoadInt32(&t.alive) == 1
}

func (t *wsTransport) Close() error {
	atomic.StoreInt32(&t.alive, 0)
	return t.conn.Close()
}

// loopbackTransport - транспорт в пределах процесса: пара пиров,
// соединённых каналами; используется тестами и одиночным режимом
type loopbackTransport struct {
	id       string
	room     string
	peer     *loopbackTransport
	messages chan rawMessage
	closed   int32
}

// CreateLoopbackPair создаёт два соединённых локальных транспорта
func CreateLoopbackPair(room string) (Transport, Transport) {
	a := &loopbackTransport{id: newPeerID(), room: room, messages: make(chan rawMessage, 64)}
	b := &loopbackTransport{id: newPeerID(), room: room, messages: make(chan rawMessage, 64)}
	a.peer = b
	b.peer = a
	return a, b
}

func (t *loopbackTransport) Broadcast(event Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("loopback: %s", err)
	}
	return t.deliver(rawMessage{Type: messageTypeEvent, Data: raw})
}

func (t *loopbackTransport) SendSystem(id string, data interface{}) error {
	raw, err := json.Marshal(route{ID: id, Data: data})
	if err != nil {
		return fmt.Errorf("loopback: %s", err)
	}
	return t.deliver(rawMessage{Type: messageTypeSystem, Data: raw})
}

func (t *loopbackTransport) deliver(m rawMessage) error {
	if atomic.LoadInt32(&t.closed) == 1 || atomic.LoadInt32(&t.peer.closed) == 1 {
		return fmt.Errorf("loopback: connection is closed")
	}
	t.peer.messages <- m
	return nil
}

func (t *loopbackTransport) Messages() <-chan rawMessage { return t.messages }

func (t *loopbackTransport) ID() string { return t.id }

func (t *loopbackTransport) Room() string { return t.room }

func (t *loopbackTransport) ConnectionCount() int { return 1 }

func (t *loopbackTransport) IsConnected() bool {
	return atomic.LoadInt32(&t.closed) == 0
}

func (t *loopbackTransport) Close() error {
	atomic.StoreInt32(&t.closed, 1)
	return nil
}
