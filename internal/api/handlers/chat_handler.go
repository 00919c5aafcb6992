package handlers

import (
	"craft_marketplace_service/internal/chat/app"
	"craft_marketplace_service/internal/chat/domain"
	"craft_marketplace_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ChatHandler handles chat room and message HTTP requests
type ChatHandler struct {
	roomUC    *app.RoomUseCase
	messageUC *app.MessageUseCase
	uploadUC  *app.UploadUseCase
}

// NewChatHandler create ChatHandler
func NewChatHandler(roomUC *app.RoomUseCase, messageUC *app.MessageUseCase, uploadUC *app.UploadUseCase) *ChatHandler {
	return &ChatHandler{
		roomUC:    roomUC,
		messageUC: messageUC,
		uploadUC:  uploadUC,
	}
}

// ListRooms list the caller's rooms
// @Summary List chat rooms
// @Description Page the caller's rooms, most recent activity first
// @Tags Chat
// @Produce json
// @Param page query int false "Page number (0-based)"
// @Param size query int false "Page size"
// @Success 200 {object} domain.RoomPage
// @Failure 500 {object} string "server error"
// @Security BearerAuth
// @Router /api/chat/rooms [get]
func (h *ChatHandler) ListRooms(c *fiber.Ctx) error {
	viewer := caller(c)
	page := queryInt(c, "page", 0)
	size := queryInt(c, "size", 20)

	result, err := h.roomUC.ListRooms(c.Context(), viewer.UserID, page, size)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}

// StartChat get or create the room with the other party
// @Summary Start a chat
// @Description Idempotent get-or-create of the designer/village room
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body domain.StartChatRequest true "other party"
// @Success 200 {object} domain.ChatRoom
// @Failure 400 {object} string "invalid request"
// @Security BearerAuth
// @Router /api/chat/rooms [post]
func (h *ChatHandler) StartChat(c *fiber.Ctx) error {
	var req domain.StartChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	viewer := caller(c)
	logger.Log.Info("start chat", zap.String("userID", viewer.UserID), zap.String("villageID", req.VillageID), zap.String("designerID", req.DesignerID))

	room, err := h.roomUC.StartChat(c.Context(), viewer, req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(room)
}

// GetRoom fetch one room
// @Summary Get a chat room
// @Tags Chat
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} domain.ChatRoom
// @Failure 404 {object} string "room not found"
// @Security BearerAuth
// @Router /api/chat/rooms/{id} [get]
func (h *ChatHandler) GetRoom(c *fiber.Ctx) error {
	viewer := caller(c)
	room, err := h.roomUC.GetRoom(c.Context(), c.Params("id"), viewer.UserID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(room)
}

// History page a room's messages
// @Summary Get message history
// @Description One page of room messages, newest first
// @Tags Chat
// @Produce json
// @Param id path string true "Room ID"
// @Param page query int false "Page number (0-based)"
// @Param size query int false "Page size"
// @Success 200 {object} domain.MessagePage
// @Failure 500 {object} string "server error"
// @Security BearerAuth
// @Router /api/chat/rooms/{id}/messages [get]
func (h *ChatHandler) History(c *fiber.Ctx) error {
	viewer := caller(c)
	page := queryInt(c, "page", 0)
	size := queryInt(c, "size", 50)

	result, err := h.messageUC.History(c.Context(), c.Params("id"), viewer.UserID, page, size)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}

// SendMessage REST fallback send path
// @Summary Send a message
// @Description Persist a message and fan it out to live subscribers
// @Tags Chat
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Param request body domain.SendMessageRequest true "message"
// @Success 200 {object} domain.ChatMessage
// @Failure 400 {object} string "invalid request"
// @Security BearerAuth
// @Router /api/chat/rooms/{id}/messages [post]
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	var req domain.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	msg, err := h.messageUC.Send(c.Context(), c.Params("id"), caller(c), req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	msg.IsOwnMessage = true
	return c.JSON(msg)
}

// MarkRead mark the whole room read for the caller
// @Summary Mark a room read
// @Tags Chat
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} string "marked read"
// @Failure 400 {object} string "invalid request"
// @Security BearerAuth
// @Router /api/chat/rooms/{id}/read [put]
func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	viewer := caller(c)
	if err := h.roomUC.MarkRead(c.Context(), c.Params("id"), viewer.UserID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "marked read"})
}

// Upload store a chat attachment
// @Summary Upload a chat file
// @Description Multipart upload, returns the metadata to embed in a message
// @Tags Chat
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "file"
// @Success 200 {object} domain.FileUploadResponse
// @Failure 400 {object} string "invalid file"
// @Security BearerAuth
// @Router /api/chat/upload [post]
func (h *ChatHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot open file"})
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	resp, err := h.uploadUC.Upload(c.Context(), fileHeader.Filename, contentType, fileHeader.Size, file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(resp)
}
