package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ilyes4CODE/Market-place-live/internal/api/middleware"
	"github.com/Ilyes4CODE/Market-place-live/internal/services"
)

// RestTicketHandler handles REST requests for support tickets.
type RestTicketHandler struct {
	ticketService services.ITicketService
}

// NewRestTicketHandler creates a new RestTicketHandler.
func NewRestTicketHandler(ticketService services.ITicketService) *RestTicketHandler {
	return &RestTicketHandler{ticketService: ticketService}
}

// CreateTicketRequest is the payload for opening a ticket.
type CreateTicketRequest struct {
	Subject string `json:"subject" binding:"required"`
}

// Create handles POST /v1/tickets
func (h *RestTicketHandler) Create(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	ticket, err := h.ticketService.Create(c.Request.Context(), userID, req.Subject)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// ListOwn handles GET /v1/tickets
func (h *RestTicketHandler) ListOwn(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	tickets, err := h.ticketService.List(c.Request.Context(), services.TicketFilter{UserID: &userID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}
