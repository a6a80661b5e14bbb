package websocket

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/tixora/payments/internal/domain/interfaces"
	"github.com/tixora/payments/internal/domain/models"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrClientInactive = errors.New("client is inactive")
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Client is one connected payment-status subscriber.
type Client struct {
	id     string
	conn   *websocket.Conn
	active bool
	send   chan *models.StatusUpdate
	done   chan struct{}
}

func NewClient(conn *websocket.Conn) interfaces.WebSocketClient {
	client := &Client{
		id:     uuid.New().String(),
		conn:   conn,
		active: true,
		send:   make(chan *models.StatusUpdate, 256),
		done:   make(chan struct{}),
	}

	go client.writePump()
	go client.readPump()

	return client
}

func (c *Client) GetID() string {
	return c.id
}

// Send queues a status update for delivery. Updates are dropped rather
// than blocking the broadcaster when the client cannot keep up.
func (c *Client) Send(update *models.StatusUpdate) error {
	if !c.active {
		return ErrClientInactive
	}

	select {
	case c.send <- update:
		return nil
	case <-c.done:
		return ErrClientInactive
	default:
		log.Warn().Str("client_id", c.id).Msg("Status stream client send channel full, dropping update")
		return errors.New("send channel full")
	}
}

func (c *Client) Close() error {
	if !c.active {
		return nil
	}

	c.active = false
	close(c.done)

	if c.conn != nil {
		return c.conn.Close()
	}

	return nil
}

func (c *Client) IsActive() bool {
	return c.active
}

// HandleConnection blocks until the connection is closed.
func (c *Client) HandleConnection() {
	defer c.Close()

	<-c.done
}

// readPump drains incoming frames. Subscribers never send application
// messages; reads only service pings and detect disconnects.
func (c *Client) readPump() {
	defer func() {
		c.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.done:
			return
		default:
			_, _, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Error().Err(err).Str("client_id", c.id).Msg("Unexpected WebSocket close error")
				}
				return
			}
		}
	}
}

// writePump pushes queued updates and keepalive pings to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case update, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			data, err := json.Marshal(update)
			if err != nil {
				log.Error().Err(err).Str("client_id", c.id).Msg("Failed to marshal status update")
				w.Close()
				continue
			}

			w.Write(data)

			// Flush any updates queued behind this one.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte("\n"))
				queued := <-c.send
				queuedData, err := json.Marshal(queued)
				if err != nil {
					log.Error().Err(err).Str("client_id", c.id).Msg("Failed to marshal queued status update")
					continue
				}
				w.Write(queuedData)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}
