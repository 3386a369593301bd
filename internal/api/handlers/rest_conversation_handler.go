package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ilyes4CODE/Market-place-live/internal/api/middleware"
	"github.com/Ilyes4CODE/Market-place-live/internal/services"
	"github.com/Ilyes4CODE/Market-place-live/internal/utils"
)

// RestConversationHandler handles REST requests for chat conversations.
type RestConversationHandler struct {
	conversationService services.IConversationService
	auctionService      services.IAuctionService
}

// NewRestConversationHandler creates a new RestConversationHandler.
func NewRestConversationHandler(conversationService services.IConversationService, auctionService services.IAuctionService) *RestConversationHandler {
	return &RestConversationHandler{
		conversationService: conversationService,
		auctionService:      auctionService,
	}
}

// StartConversationRequest is the payload for starting a conversation about a product.
type StartConversationRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// Start handles POST /v1/conversations. The caller becomes the buyer; the
// seller comes from the product.
func (h *RestConversationHandler) Start(c *gin.Context) {
	buyerID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	productID, err := utils.ParseSixID(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product_id format"})
		return
	}

	product, err := h.auctionService.FindProduct(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	conv, err := h.conversationService.GetOrCreate(c.Request.Context(), product.SellerID, buyerID, product.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// ListOwn handles GET /v1/conversations
func (h *RestConversationHandler) ListOwn(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	conversations, err := h.conversationService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}
