package handlers

import (
	"fmt"
	"net/url"
	"strconv"

	chatdomain "craft_marketplace_service/internal/chat/domain"
	"craft_marketplace_service/pkg/logger"
	"craft_marketplace_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HealthCheck check api connect start
// @Summary Check service status
// @Description Returns a simple confirmation message
// @Tags Shared
// @Success 200 {string} string "marketplace service start!"
// @Router /health [get]
func HealthCheck(c *fiber.Ctx) error {
	return c.SendString("marketplace service start!")
}

// DebugLogFlag toggle debug log flag
// @Summary Toggle Debug Log Flag
// @Description Enable or disable debug logging
// @Tags Shared
// @Param status query bool true "Debug status"
// @Success 200 {string} string "debug mode updated"
// @Failure 400 {string} string "Invalid status value"
// @Router /debug [post]
func DebugLogFlag(c *fiber.Ctx) error {
	query, _ := url.ParseQuery(string(c.Context().QueryArgs().QueryString()))
	statusStr := query.Get("status")
	logger.Log.Info("debug", zap.String("status", statusStr))
	status, err := strconv.ParseBool(statusStr)
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	logger.Log.SetDebugMode(status)
	return c.SendString(fmt.Sprintf("debug mode is : %t", status))
}

// caller rebuild the participant from the JWT locals
func caller(c *fiber.Ctx) chatdomain.Participant {
	userID, _ := c.Locals(middlewares.TokenUserID).(string)
	userName, _ := c.Locals(middlewares.TokenUserName).(string)
	userType, _ := c.Locals(middlewares.TokenUserType).(string)
	return chatdomain.Participant{
		UserID: userID,
		Name:   userName,
		Type:   chatdomain.SenderType(userType),
	}
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
