package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Workspaces are sent whole on every change.
	maxMessageSize = 1024 * 1024

	// How long one generate request may take.
	processTimeout = 30 * time.Second
)

// Processor turns the data of a generate message into the payload broadcast
// to the room.
type Processor interface {
	Process(ctx context.Context, data json.RawMessage) (any, error)
}

type ProcessorFunc func(ctx context.Context, data json.RawMessage) (any, error)

func (f ProcessorFunc) Process(ctx context.Context, data json.RawMessage) (any, error) {
	return f(ctx, data)
}

type Client struct {
	ID        string
	Room      string
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan Message
	Processor Processor
	Logger    zerolog.Logger

	queue chan Inbound
	done  chan struct{}
}

func NewClient(id, room string, hub *Hub, conn *websocket.Conn, processor Processor, logger zerolog.Logger) *Client {
	client := &Client{
		ID:        id,
		Room:      room,
		Hub:       hub,
		Conn:      conn,
		Send:      make(chan Message, 256),
		Processor: processor,
		Logger:    logger,
		queue:     make(chan Inbound, 16),
		done:      make(chan struct{}),
	}

	// Requests from one client are processed in order
	go client.processWorker()

	return client
}

func (c *Client) ReadPump() {
	defer func() {
		close(c.queue)
		<-c.done
		c.Hub.Leave(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, messageBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.Logger.Error().Err(err).Str("clientId", c.ID).Msg("WebSocket read error")
			}
			break
		}

		var msg Inbound
		if err = json.Unmarshal(messageBytes, &msg); err != nil {
			c.sendError("Invalid message format")
			continue
		}
		if msg.Type != MessageTypeGenerate {
			c.sendError("Unsupported message type " + string(msg.Type))
			continue
		}

		select {
		case c.queue <- msg:
		default:
			c.Logger.Warn().Str("clientId", c.ID).Msg("Process queue full, dropping message")
			c.sendError("Server is busy, please try again")
		}
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close stops a client that never started its pumps.
func (c *Client) Close() {
	close(c.queue)
	<-c.done
	c.Conn.Close()
}

// sendError answers this client only.
func (c *Client) sendError(text string) {
	select {
	case c.Send <- NewErrorMessage(c.Room, c.ID, text):
	default:
	}
}

func (c *Client) processWorker() {
	defer close(c.done)

	for msg := range c.queue {
		payload, err := c.process(msg.Data)
		if err != nil {
			c.Logger.Debug().Err(err).Str("clientId", c.ID).Msg("Failed to process message")
			c.sendError(err.Error())
			continue
		}
		if !c.Hub.Publish(newMessage(MessageTypeGenerated, c.Room, c.ID, payload)) {
			c.Logger.Debug().Str("clientId", c.ID).Msg("Hub stopped, result dropped")
		}
	}
}

// process runs one request. A panicking processor fails the request, not
// the worker.
func (c *Client) process(data json.RawMessage) (payload any, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			c.Logger.Error().Str("clientId", c.ID).Interface("panic", r).Msg("Processor panicked")
			err = fmt.Errorf("generation failed: %v", r)
		}
	}()
	return c.Processor.Process(ctx, data)
}
