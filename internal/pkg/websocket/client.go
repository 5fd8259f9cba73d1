package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/campusmeet/backend/internal/app/services"
	"github.com/campusmeet/backend/internal/events"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 16 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development, in production you should restrict this
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Frame types a client may send.
const (
	frameSubscribe   = "subscribe"
	frameUnsubscribe = "unsubscribe"
	frameChat        = "chat"
)

// Frame is one inbound client message.
type Frame struct {
	Type     string `json:"type"`
	MeetupID int64  `json:"meetupId,omitempty"`
	Text     string `json:"text,omitempty"`
}

// Client is a middleman between one websocket connection and the event
// router. Every client holds the lobby subscription for its whole lifetime;
// meetup channel subscriptions follow the client's frames.
type Client struct {
	router *events.Router

	// The WebSocket connection
	conn *websocket.Conn

	// Event queue this connection drains
	sub *events.Subscriber

	chatService services.ChatService

	// User ID of the client
	userID string

	// Logger instance
	logger zerolog.Logger
}

// readPump pumps frames from the websocket connection into the router and
// the chat service
func (c *Client) readPump() {
	defer func() {
		c.router.Release(c.sub)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info().
					Str("userID", c.userID).
					Msg("WebSocket closed normally")
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().
					Err(err).
					Str("userID", c.userID).
					Msg("Unexpected WebSocket close")
			} else {
				c.logger.Debug().
					Err(err).
					Str("userID", c.userID).
					Msg("WebSocket read error")
			}
			break
		}

		var frame Frame
		if err := json.Unmarshal(message, &frame); err != nil {
			c.logger.Error().
				Err(err).
				Str("userID", c.userID).
				Str("message", string(message)).
				Msg("Failed to unmarshal client frame")
			continue
		}

		c.handleFrame(frame)
	}
}

func (c *Client) handleFrame(frame Frame) {
	switch frame.Type {
	case frameSubscribe:
		if frame.MeetupID > 0 {
			c.router.Subscribe(events.MeetupChannel(frame.MeetupID), c.sub)
		}
	case frameUnsubscribe:
		if frame.MeetupID > 0 {
			c.router.Unsubscribe(events.MeetupChannel(frame.MeetupID), c.sub)
		}
	case frameChat:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := c.chatService.Append(ctx, c.userID, frame.MeetupID, frame.Text); err != nil {
			c.logger.Debug().
				Err(err).
				Str("userID", c.userID).
				Int64("meetupID", frame.MeetupID).
				Msg("Chat frame rejected")
		}
	default:
		c.logger.Debug().
			Str("userID", c.userID).
			Str("type", frame.Type).
			Msg("Unknown frame type")
	}
}

// writePump pumps events from the subscriber queue to the websocket
// connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.sub.Events():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The router closed the queue
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			payload, err := json.Marshal(evt)
			if err != nil {
				c.logger.Error().Err(err).Msg("Failed to marshal event")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
