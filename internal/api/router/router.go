package router

import (
	"context"

	"craft_marketplace_service/internal/api/handlers"
	chatapp "craft_marketplace_service/internal/chat/app"
	"craft_marketplace_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes register marketplace routes
// @title Craft Marketplace Chat & Connection API
// @version 1.0
// @description Chat, connection and file upload API for the designer/village marketplace
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func RegisterRoutes(
	app *fiber.App,
	chatHandler *handlers.ChatHandler,
	connectionHandler *handlers.ConnectionHandler,
	chatWebsocket *chatapp.ChatWebsocketHandler,
) {
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/health", handlers.HealthCheck)
	app.Post("/debug", handlers.DebugLogFlag)

	api := app.Group("/api", middlewares.JWTMiddleware())

	chatRoutes := api.Group("/chat")
	chatRoutes.Get("/rooms", chatHandler.ListRooms)
	chatRoutes.Post("/rooms", chatHandler.StartChat)
	chatRoutes.Get("/rooms/:id", chatHandler.GetRoom)
	chatRoutes.Get("/rooms/:id/messages", chatHandler.History)
	chatRoutes.Post("/rooms/:id/messages", chatHandler.SendMessage)
	chatRoutes.Put("/rooms/:id/read", chatHandler.MarkRead)
	chatRoutes.Post("/upload", chatHandler.Upload)

	connectionRoutes := api.Group("/connections")
	connectionRoutes.Get("/eligibility/:roomId", connectionHandler.Eligibility)
	connectionRoutes.Post("/", connectionHandler.SendRequest)
	connectionRoutes.Get("/", connectionHandler.List)
	connectionRoutes.Get("/pending/received", connectionHandler.PendingReceived)
	connectionRoutes.Get("/pending/sent", connectionHandler.PendingSent)
	connectionRoutes.Put("/:id/accept", connectionHandler.Accept)
	connectionRoutes.Put("/:id/reject", connectionHandler.Reject)

	ws := app.Group("/ws", middlewares.JWTMiddleware())
	ws.Get("/chat", websocket.New(func(c *websocket.Conn) {
		chatWebsocket.HandleConnection(context.Background(), c)
	}))
}
