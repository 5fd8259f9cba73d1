package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/campusmeet/backend/internal/app/services"
	"github.com/campusmeet/backend/internal/events"
	"github.com/campusmeet/backend/internal/pkg/metrics"
)

// queue depth per connection; a client that cannot drain this many events
// starts losing them rather than stalling publishers
const subscriberBuffer = 64

// Handler for WebSocket connections
type Handler struct {
	router      *events.Router
	chatService services.ChatService
	logger      zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(
	router *events.Router,
	chatService services.ChatService,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		router:      router,
		chatService: chatService,
		logger:      logger,
	}
}

// HandleConnection godoc
// @Summary Establish a WebSocket connection for real-time events
// @Description Upgrades the HTTP connection to a WebSocket stream. The connection starts subscribed to the lobby; subscribe/unsubscribe frames manage meetup channels and chat frames append transcript entries.
// @Tags events, websocket
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} gin.H "Unauthorized: JWT token missing or invalid"
// @Router /ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	userIDInterface, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User ID not found in context",
		})
		return
	}

	userID, ok := userIDInterface.(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Invalid user ID format",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("userID", userID).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	sub := events.NewSubscriber(subscriberBuffer)
	h.router.Subscribe(events.Lobby, sub)

	client := &Client{
		router:      h.router,
		conn:        conn,
		sub:         sub,
		chatService: h.chatService,
		userID:      userID,
		logger:      h.logger,
	}

	metrics.WsConnections.Inc()
	go func() {
		defer metrics.WsConnections.Dec()
		client.writePump()
	}()
	go client.readPump()

	h.logger.Info().
		Str("userID", userID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}
