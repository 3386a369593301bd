package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Ilyes4CODE/Market-place-live/internal/api/middleware"
	"github.com/Ilyes4CODE/Market-place-live/internal/config"
	"github.com/Ilyes4CODE/Market-place-live/internal/models"
	"github.com/Ilyes4CODE/Market-place-live/internal/realtime"
	"github.com/Ilyes4CODE/Market-place-live/internal/services"
	"github.com/Ilyes4CODE/Market-place-live/internal/utils"
)

// pongWait must exceed the subscriber's ping period so a live connection
// always refreshes its read deadline in time.
const pongWait = 60 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser origin enforcement happens at the proxy; tokens gate access here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades authenticated HTTP requests into realtime feeds and
// bridges inbound frames to the services.
type WSHandler struct {
	cfg                 *config.Config
	registry            *realtime.Registry
	presence            realtime.Presence
	messageService      services.IMessageService
	notificationService services.INotificationService
	conversationService services.IConversationService
	ticketService       services.ITicketService
	userService         services.IUserService
	statsService        services.IStatsService
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(
	cfg *config.Config,
	registry *realtime.Registry,
	presence realtime.Presence,
	messageService services.IMessageService,
	notificationService services.INotificationService,
	conversationService services.IConversationService,
	ticketService services.ITicketService,
	userService services.IUserService,
	statsService services.IStatsService,
) *WSHandler {
	return &WSHandler{
		cfg:                 cfg,
		registry:            registry,
		presence:            presence,
		messageService:      messageService,
		notificationService: notificationService,
		conversationService: conversationService,
		ticketService:       ticketService,
		userService:         userService,
		statsService:        statsService,
	}
}

// upgrade performs the WebSocket handshake and wires up the write pump.
func (h *WSHandler) upgrade(c *gin.Context) (*websocket.Conn, *realtime.Subscriber, bool) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		log.Printf("WebSocket upgrade failed on %s: %v", c.FullPath(), err)
		return nil, nil, false
	}
	sub := realtime.NewSubscriber(conn)
	go sub.Run()
	return conn, sub, true
}

// readLoop pumps inbound frames into onFrame until the connection dies, then
// detaches the subscriber from every channel. onFrame may be nil for
// feed-only connections.
func (h *WSHandler) readLoop(conn *websocket.Conn, sub *realtime.Subscriber, onFrame func(payload []byte)) {
	defer func() {
		h.registry.LeaveAll(sub)
		sub.Close()
		conn.Close()
	}()

	conn.SetReadLimit(int64(h.cfg.MaxMessageSize) + 1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		if onFrame != nil {
			onFrame(payload)
		}
	}
}

// sendError pushes an error frame without dropping the connection.
func sendError(sub *realtime.Subscriber, msg string) {
	sub.Send(gin.H{"type": "error", "message": msg})
}

// chatFrame is an inbound chat or ticket message.
type chatFrame struct {
	Message string `json:"message"`
	Picture string `json:"picture"`
}

// Chat handles GET /v1/ws/chat/:conversation_id
func (h *WSHandler) Chat(c *gin.Context) {
	conversationID, ok := idParam(c, "conversation_id")
	if !ok {
		return
	}
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	conv, err := h.conversationService.FindByID(c.Request.Context(), conversationID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !conv.HasParticipant(userID) && !middleware.IsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant in this conversation"})
		return
	}

	target := services.MessageTarget{ConversationID: &conversationID}
	history, err := h.messageService.History(c.Request.Context(), target)
	if err != nil {
		respondError(c, err)
		return
	}

	conn, sub, ok := h.upgrade(c)
	if !ok {
		return
	}
	h.registry.Join(realtime.ChatChannel(conversationID), sub)

	ctx := c.Request.Context()
	if err := h.presence.Mark(ctx, conversationID, userID); err != nil {
		log.Printf("Error marking presence for user %s in conversation %s: %v", userID, conversationID, err)
	}

	receiverID := conv.OtherParticipant(userID)
	receiver := gin.H{"id": receiverID.String()}
	if other, err := h.userService.FindByID(ctx, receiverID); err == nil {
		receiver["name"] = other.Name
	} else {
		log.Printf("Error loading counterpart %s for conversation %s: %v", receiverID, conversationID, err)
	}
	sub.Send(gin.H{
		"type":     "old_messages",
		"messages": history,
		"receiver": receiver,
	})
	if err := h.messageService.MarkSeen(ctx, target, userID); err != nil {
		log.Printf("Error marking messages seen in conversation %s: %v", conversationID, err)
	}

	h.readLoop(conn, sub, func(payload []byte) {
		var frame chatFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			sendError(sub, "Malformed message frame")
			return
		}
		if _, err := h.messageService.PostMessage(ctx, target, userID, frame.Message, frame.Picture); err != nil {
			sendError(sub, err.Error())
		}
	})

	if err := h.presence.Clear(ctx, conversationID, userID); err != nil {
		log.Printf("Error clearing presence for user %s in conversation %s: %v", userID, conversationID, err)
	}
}

// notificationFrame is an inbound action on the notification feed.
type notificationFrame struct {
	Action string `json:"action"`
}

// Notifications handles GET /v1/ws/notifications
func (h *WSHandler) Notifications(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	unread, err := h.notificationService.UnreadForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	conn, sub, ok := h.upgrade(c)
	if !ok {
		return
	}
	h.registry.Join(realtime.NotifChannel(userID), sub)

	sub.Send(gin.H{"type": "notifications", "notifications": unread})

	ctx := c.Request.Context()
	h.readLoop(conn, sub, func(payload []byte) {
		var frame notificationFrame
		if err := json.Unmarshal(payload, &frame); err != nil || frame.Action != "mark_as_read" {
			sendError(sub, "Unsupported action")
			return
		}
		if err := h.notificationService.MarkChatNotificationsRead(ctx, userID); err != nil {
			sendError(sub, err.Error())
			return
		}
		sub.Send(gin.H{"action": "chat_notifications_marked_as_read"})
	})
}

// TicketChat handles GET /v1/ws/tickets/:ticket_id
func (h *WSHandler) TicketChat(c *gin.Context) {
	ticketID, ok := idParam(c, "ticket_id")
	if !ok {
		return
	}
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	ticket, err := h.ticketService.FindByID(c.Request.Context(), ticketID)
	if err != nil {
		respondError(c, err)
		return
	}
	user, err := h.userService.FindByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.ticketService.CanAccess(ticket, user) {
		c.JSON(http.StatusForbidden, gin.H{"error": "No access to this ticket"})
		return
	}

	target := services.MessageTarget{TicketID: &ticketID}
	history, err := h.messageService.History(c.Request.Context(), target)
	if err != nil {
		respondError(c, err)
		return
	}

	conn, sub, ok := h.upgrade(c)
	if !ok {
		return
	}
	h.registry.Join(realtime.TicketChannel(ticketID), sub)

	sub.Send(gin.H{"type": "old_messages", "messages": history})

	ctx := c.Request.Context()
	h.readLoop(conn, sub, func(payload []byte) {
		var frame chatFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			sendError(sub, "Malformed message frame")
			return
		}
		if _, err := h.messageService.PostMessage(ctx, target, userID, frame.Message, frame.Picture); err != nil {
			sendError(sub, err.Error())
		}
	})
}

// ticketFilterFrame is an inbound filter request on the admin ticket feed.
type ticketFilterFrame struct {
	Status string `json:"status"`
	User   string `json:"user"`
}

// AdminTickets handles GET /v1/ws/admin/tickets
func (h *WSHandler) AdminTickets(c *gin.Context) {
	tickets, err := h.ticketService.List(c.Request.Context(), services.TicketFilter{})
	if err != nil {
		respondError(c, err)
		return
	}

	conn, sub, ok := h.upgrade(c)
	if !ok {
		return
	}
	h.registry.Join(realtime.AdminTicketsChannel, sub)

	sub.Send(gin.H{"tickets": tickets})

	ctx := c.Request.Context()
	h.readLoop(conn, sub, func(payload []byte) {
		var frame ticketFilterFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			sendError(sub, "Malformed filter frame")
			return
		}
		filter := services.TicketFilter{Status: models.TicketStatus(frame.Status)}
		if frame.User != "" {
			userID, err := utils.ParseSixID(frame.User)
			if err != nil {
				sendError(sub, "Invalid user filter")
				return
			}
			filter.UserID = &userID
		}
		filtered, err := h.ticketService.List(ctx, filter)
		if err != nil {
			sendError(sub, err.Error())
			return
		}
		sub.Send(gin.H{"tickets": filtered})
	})
}

// AdminStats handles GET /v1/ws/admin/stats
func (h *WSHandler) AdminStats(c *gin.Context) {
	stats, err := h.statsService.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	conn, sub, ok := h.upgrade(c)
	if !ok {
		return
	}
	h.registry.Join(realtime.AdminStatsChannel, sub)

	sub.Send(gin.H{"type": "marketplace_stats", "data": stats})

	h.readLoop(conn, sub, nil)
}
