package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shelftalk/internal/middleware"
	"shelftalk/internal/models"
	"shelftalk/internal/notifications"
	"shelftalk/internal/observability"
	"shelftalk/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketChatHandler handles WebSocket connections for real-time chat.
// Clients address conversations by the other participant's user ID; the
// canonical conversation ID is derived server-side, same as over HTTP.
func (s *Server) WebSocketChatHandler() fiber.Handler {
	wsLog := observability.NewWSLogger(s.chatHub.Name())
	return websocket.New(func(conn *websocket.Conn) {
		middleware.ActiveWebSockets.Inc()
		defer middleware.ActiveWebSockets.Dec()

		ctx := context.Background()

		userIDVal := conn.Locals(middleware.LocalUserID)
		if userIDVal == nil {
			wsLog.LogError(ctx, "", "connect", errors.New("unauthenticated connection attempt"))
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(string)

		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil || user == nil {
			if err == nil {
				err = errors.New("unknown user")
			}
			wsLog.LogError(ctx, userID, "connect", err)
			_ = conn.Close()
			return
		}

		client, err := s.chatHub.Register(userID, conn)
		if err != nil {
			wsLog.LogError(ctx, userID, "register", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		wsLog.LogConnect(ctx, userID)

		client.IncomingHandler = func(c *notifications.Client, raw []byte) {
			var incoming struct {
				Type         string `json:"type"`
				UserID       string `json:"user_id"` // the other participant
				Text         string `json:"text"`
				ImagePayload string `json:"image_payload"`
			}
			if err := json.Unmarshal(raw, &incoming); err != nil {
				wsLog.LogError(ctx, userID, "decode", err)
				return
			}

			switch incoming.Type {
			case "join":
				convID, derr := models.DeriveConversationID(userID, incoming.UserID)
				if derr != nil {
					sendWSError(c, derr.Error())
					return
				}
				s.chatHub.JoinConversation(userID, convID)
				response := notifications.ChatEvent{
					Type:           "joined",
					ConversationID: convID,
					UserID:         userID,
					Payload:        map[string]string{"conversation_id": convID},
				}
				if responseJSON, merr := json.Marshal(response); merr == nil {
					c.TrySend(responseJSON)
				}

			case "leave":
				convID, derr := models.DeriveConversationID(userID, incoming.UserID)
				if derr != nil {
					return
				}
				s.chatHub.LeaveConversation(userID, convID)

			case "read":
				if err := s.chatService.MarkConversationRead(ctx, userID, incoming.UserID); err != nil {
					sendWSError(c, "Failed to mark conversation read")
				}

			case "message":
				// Same rate limit as the HTTP send endpoint.
				id := fmt.Sprintf("user:%s", userID)
				allowed, _ := middleware.CheckRateLimit(ctx, s.redis, "send_chat", id, 15, time.Minute)
				if !allowed {
					sendWSError(c, "Rate limit exceeded. Please wait a moment.")
					return
				}

				_, serr := s.chatService.SendMessage(ctx, service.SendMessageInput{
					SenderID:     userID,
					RecipientID:  incoming.UserID,
					Text:         incoming.Text,
					ImagePayload: incoming.ImagePayload,
				})
				if serr != nil {
					sendWSError(c, serr.Error())
				}
				// Delivery back to this client happens through the hub fanout.
			}
		}

		go client.WritePump()
		client.ReadPump()
		wsLog.LogDisconnect(ctx, userID, "read pump closed")
	})
}

func sendWSError(c *notifications.Client, message string) {
	event := notifications.ChatEvent{
		Type:    "error",
		Payload: map[string]string{"message": message},
	}
	if payload, err := json.Marshal(event); err == nil {
		c.TrySend(payload)
	}
}
