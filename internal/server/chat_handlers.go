package server

import (
	"shelftalk/internal/models"
	"shelftalk/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetConversations handles GET /api/conversations
// @Summary List conversations
// @Description List the caller's conversations, most recent message first, with unread counters.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.ConversationView
// @Router /conversations [get]
func (s *Server) GetConversations(c *fiber.Ctx) error {
	views, err := s.chatService.GetConversations(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(views)
}

// SendMessage handles POST /api/conversations/with/:userId/messages
// @Summary Send a direct message
// @Description Append a message to the conversation with the given user. The conversation ID is derived server-side.
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Recipient user ID"
// @Param request body object{text=string,image_payload=string} true "Message"
// @Success 201 {object} models.Message
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Router /conversations/with/{userId}/messages [post]
func (s *Server) SendMessage(c *fiber.Ctx) error {
	var req struct {
		Text         string `json:"text"`
		ImagePayload string `json:"image_payload"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	message, err := s.chatService.SendMessage(c.Context(), service.SendMessageInput{
		SenderID:     currentUserID(c),
		RecipientID:  c.Params("userId"),
		Text:         req.Text,
		ImagePayload: req.ImagePayload,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

// GetMessages handles GET /api/conversations/with/:userId/messages
// @Summary Get conversation messages
// @Description Messages with the given user, oldest first.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Other participant's user ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Message
// @Router /conversations/with/{userId}/messages [get]
func (s *Server) GetMessages(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	messages, err := s.chatService.GetMessages(c.Context(), currentUserID(c), c.Params("userId"), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(messages)
}

// MarkConversationRead handles POST /api/conversations/with/:userId/read
// @Summary Mark conversation read
// @Description Reset the caller's unread counter for the conversation. Idempotent.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Other participant's user ID"
// @Success 204
// @Router /conversations/with/{userId}/read [post]
func (s *Server) MarkConversationRead(c *fiber.Ctx) error {
	if err := s.chatService.MarkConversationRead(c.Context(), currentUserID(c), c.Params("userId")); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetUnreadCount handles GET /api/conversations/with/:userId/unread
// @Summary Get unread counter
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Other participant's user ID"
// @Success 200 {object} object{unread_count=int}
// @Router /conversations/with/{userId}/unread [get]
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	count, err := s.chatService.GetUnreadCount(c.Context(), currentUserID(c), c.Params("userId"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"unread_count": count})
}
