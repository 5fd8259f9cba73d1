package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/campusmeet/backend/internal/app/controllers"
	"github.com/campusmeet/backend/internal/middleware"
	"github.com/campusmeet/backend/internal/pkg/websocket"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	meetupController *controllers.MeetupController,
	chatController *controllers.ChatController,
	wsHandler *websocket.Handler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	// Login and signup get a tight bucket; each call costs a portal round trip.
	auth := v1.Group("/auth")
	auth.Use(middleware.RateLimit(rate.Every(time.Second), 5))
	{
		auth.POST("/login", authController.Login)
		auth.POST("/signup", authController.Signup)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/session", meetupController.GetSnapshot)

		meetups := authenticated.Group("/meetups")
		{
			meetups.GET("", meetupController.GetOverview)
			meetups.POST("", meetupController.CreateMeetup)
			meetups.POST("/:id/join", meetupController.JoinMeetup)
			meetups.POST("/leave", meetupController.LeaveMeetup)

			chat := meetups.Group("/:id/chat")
			chat.Use(middleware.RateLimit(rate.Every(time.Second/10), 20))
			{
				chat.GET("", chatController.GetTranscript)
				chat.POST("", chatController.AppendChat)
			}
		}

		// WebSocket endpoint for the realtime event stream
		authenticated.GET("/ws", wsHandler.HandleConnection)
	}

	// Operational endpoint outside the API version group
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
