package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ilyes4CODE/Market-place-live/internal/services"
)

// RestAdminHandler handles the admin REST surface: bid review, product
// approval, user moderation and the stats snapshot.
type RestAdminHandler struct {
	auctionService services.IAuctionService
	userService    services.IUserService
	statsService   services.IStatsService
}

// NewRestAdminHandler creates a new RestAdminHandler.
func NewRestAdminHandler(auctionService services.IAuctionService, userService services.IUserService, statsService services.IStatsService) *RestAdminHandler {
	return &RestAdminHandler{
		auctionService: auctionService,
		userService:    userService,
		statsService:   statsService,
	}
}

// BidDecisionRequest is the payload for deciding a pending bid.
type BidDecisionRequest struct {
	Decision string `json:"decision" binding:"required"`
}

// DecideBid handles POST /v1/admin/bids/:id/decision
func (h *RestAdminHandler) DecideBid(c *gin.Context) {
	bidID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req BidDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	var decision services.BidDecision
	switch req.Decision {
	case "accept":
		decision = services.BidDecisionAccept
	case "reject":
		decision = services.BidDecisionReject
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Decision must be 'accept' or 'reject'"})
		return
	}

	bid, err := h.auctionService.DecideBid(c.Request.Context(), bidID, decision)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bid)
}

// ApprovalRequest is the payload for toggling product approval.
type ApprovalRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// SetApproval handles POST /v1/admin/products/:id/approval
func (h *RestAdminHandler) SetApproval(c *gin.Context) {
	productID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if err := h.auctionService.SetApproval(c.Request.Context(), productID, *req.Approved); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approved": *req.Approved})
}

// BanRequest is the payload for toggling a user ban.
type BanRequest struct {
	Banned *bool `json:"banned" binding:"required"`
}

// SetBan handles POST /v1/admin/users/:id/ban
func (h *RestAdminHandler) SetBan(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if err := h.userService.SetBanned(c.Request.Context(), userID, *req.Banned); err != nil {
		respondError(c, err)
		return
	}
	h.statsService.Publish(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"banned": *req.Banned})
}

// ListUsers handles GET /v1/admin/users
func (h *RestAdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Stats handles GET /v1/admin/stats
func (h *RestAdminHandler) Stats(c *gin.Context) {
	stats, err := h.statsService.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
