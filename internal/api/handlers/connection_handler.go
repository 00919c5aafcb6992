package handlers

import (
	"craft_marketplace_service/internal/connection/app"
	"craft_marketplace_service/internal/connection/domain"
	"craft_marketplace_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ConnectionHandler handles connection request HTTP endpoints
type ConnectionHandler struct {
	connectionUC *app.ConnectionUseCase
}

// NewConnectionHandler create ConnectionHandler
func NewConnectionHandler(connectionUC *app.ConnectionUseCase) *ConnectionHandler {
	return &ConnectionHandler{connectionUC: connectionUC}
}

// Eligibility can the caller request a connection for this room
// @Summary Connection eligibility
// @Description Message counts, threshold and blocking states for a room
// @Tags Connections
// @Produce json
// @Param roomId path string true "Room ID"
// @Success 200 {object} domain.ConnectionEligibility
// @Failure 500 {object} string "server error"
// @Security BearerAuth
// @Router /api/connections/eligibility/{roomId} [get]
func (h *ConnectionHandler) Eligibility(c *fiber.Ctx) error {
	viewer := caller(c)
	elig, err := h.connectionUC.Eligibility(c.Context(), c.Params("roomId"), viewer.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(elig)
}

// SendRequest send a connection request
// @Summary Send a connection request
// @Description Creates a PENDING connection; eligibility is rechecked server side
// @Tags Connections
// @Accept json
// @Produce json
// @Param request body domain.SendConnectionRequest true "room"
// @Success 200 {object} domain.Connection
// @Failure 400 {object} string "not eligible"
// @Security BearerAuth
// @Router /api/connections [post]
func (h *ConnectionHandler) SendRequest(c *fiber.Ctx) error {
	var req domain.SendConnectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	viewer := caller(c)
	logger.Log.Info("connection request", zap.String("userID", viewer.UserID), zap.String("roomID", req.RoomID))

	conn, err := h.connectionUC.SendRequest(c.Context(), req.RoomID, viewer.UserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(conn)
}

// List the caller's accepted connections
// @Summary List connections
// @Tags Connections
// @Produce json
// @Success 200 {array} domain.Connection
// @Failure 500 {object} string "server error"
// @Security BearerAuth
// @Router /api/connections [get]
func (h *ConnectionHandler) List(c *fiber.Ctx) error {
	viewer := caller(c)
	conns, err := h.connectionUC.ListAccepted(c.Context(), viewer.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(conns)
}

// PendingReceived requests waiting on the caller's decision
// @Summary List pending received requests
// @Tags Connections
// @Produce json
// @Success 200 {array} domain.Connection
// @Failure 500 {object} string "server error"
// @Security BearerAuth
// @Router /api/connections/pending/received [get]
func (h *ConnectionHandler) PendingReceived(c *fiber.Ctx) error {
	viewer := caller(c)
	conns, err := h.connectionUC.ListPendingReceived(c.Context(), viewer.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(conns)
}

// PendingSent requests the caller sent and still awaits
// @Summary List pending sent requests
// @Tags Connections
// @Produce json
// @Success 200 {array} domain.Connection
// @Failure 500 {object} string "server error"
// @Security BearerAuth
// @Router /api/connections/pending/sent [get]
func (h *ConnectionHandler) PendingSent(c *fiber.Ctx) error {
	viewer := caller(c)
	conns, err := h.connectionUC.ListPendingSent(c.Context(), viewer.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(conns)
}

// Accept accept a pending request, receiver only
// @Summary Accept a connection request
// @Tags Connections
// @Produce json
// @Param id path string true "Connection ID"
// @Success 200 {object} domain.Connection
// @Failure 400 {object} string "cannot accept"
// @Security BearerAuth
// @Router /api/connections/{id}/accept [put]
func (h *ConnectionHandler) Accept(c *fiber.Ctx) error {
	viewer := caller(c)
	conn, err := h.connectionUC.Accept(c.Context(), c.Params("id"), viewer.UserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(conn)
}

// Reject reject a pending request, receiver only
// @Summary Reject a connection request
// @Tags Connections
// @Produce json
// @Param id path string true "Connection ID"
// @Success 200 {object} domain.Connection
// @Failure 400 {object} string "cannot reject"
// @Security BearerAuth
// @Router /api/connections/{id}/reject [put]
func (h *ConnectionHandler) Reject(c *fiber.Ctx) error {
	viewer := caller(c)
	conn, err := h.connectionUC.Reject(c.Context(), c.Params("id"), viewer.UserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(conn)
}
