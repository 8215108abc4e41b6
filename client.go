package chaosnet

import (
	"time"

	"github.com/gorilla/websocket"
)

// Client - подключение пира на стороне ретранслятора
type Client struct {
	conn   *websocket.Conn
	id     string
	joined time.Time
}

// SendSystemMessage отправляет пиру системное сообщение
func (c *Client) SendSystemMessage(id string, v interface{}) {
	c.sync(message{Type: messageTypeSystem, Data: route{ID: id, Data: v}})
}

func (c *Client) sync(v interface{}) {
	c.conn.WriteJSON(v)
}
