package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/visheshsingal/hitech/chatbot"
)

type ChatResponder interface {
	Reply(ctx context.Context, req chatbot.Request) (*chatbot.Response, error)
}

type ChatbotController struct {
	bot ChatResponder
	log *slog.Logger
}

func NewChatbotController(bot ChatResponder, log *slog.Logger) *ChatbotController {
	return &ChatbotController{bot: bot, log: log}
}

func (cc *ChatbotController) SendMessage(c echo.Context) error {
	var req chatbot.Request
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	resp, err := cc.bot.Reply(c.Request().Context(), req)
	if err != nil {
		return respondError(c, cc.log, err)
	}
	return c.JSON(http.StatusOK, resp)
}
