package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nexus-console/internal/api/dto"
	"github.com/spec-kit/nexus-console/internal/service"
)

// ChatHandler manages the live-chat endpoints.
type ChatHandler struct {
	service *service.ChatService
}

// NewChatHandler constructs handler.
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{service: chatService}
}

// MyChats GET /chat/my.
func (h *ChatHandler) MyChats(c *fiber.Ctx) error {
	who, err := actor(c)
	if err != nil {
		return err
	}
	chats, err := h.service.MyChats(c.UserContext(), who)
	if err != nil {
		return err
	}
	return c.JSON(chats)
}

// Messages GET /chat/messages/:id.
func (h *ChatHandler) Messages(c *fiber.Ctx) error {
	who, err := actor(c)
	if err != nil {
		return err
	}
	msgs, err := h.service.Messages(c.UserContext(), who, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(msgs)
}

// Send POST /chat/messages/:id. Responds with the stored message.
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	who, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.SendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	msg, err := h.service.Send(c.UserContext(), who, c.Params("id"), req.Text)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// MarkRead POST /chat/:id/read.
func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	who, err := actor(c)
	if err != nil {
		return err
	}
	n, err := h.service.MarkRead(c.UserContext(), who, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.MarkReadResponse{Updated: n})
}

// Close POST /chat/close/:id.
func (h *ChatHandler) Close(c *fiber.Ctx) error {
	who, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.service.Close(c.UserContext(), who, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.StatusResponse{Status: "closed"})
}
