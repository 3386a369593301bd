package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ilyes4CODE/Market-place-live/internal/api/middleware"
	"github.com/Ilyes4CODE/Market-place-live/internal/models"
	"github.com/Ilyes4CODE/Market-place-live/internal/services"
)

// RestProductHandler handles REST requests for products, auctions and bids.
type RestProductHandler struct {
	auctionService services.IAuctionService
	userService    services.IUserService
}

// NewRestProductHandler creates a new RestProductHandler.
func NewRestProductHandler(auctionService services.IAuctionService, userService services.IUserService) *RestProductHandler {
	return &RestProductHandler{
		auctionService: auctionService,
		userService:    userService,
	}
}

// CreateProductRequest is the payload for creating a listing.
type CreateProductRequest struct {
	Title         string  `json:"title" binding:"required"`
	Description   string  `json:"description"`
	SaleType      string  `json:"sale_type"`
	Price         float64 `json:"price"`
	StartingPrice float64 `json:"starting_price"`
	BuyNowPrice   float64 `json:"buy_now_price"`
	DurationHours int     `json:"duration_hours"`
}

// CreateAuction handles POST /v1/products/auction
func (h *RestProductHandler) CreateAuction(c *gin.Context) {
	sellerID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	saleType := models.SaleType(req.SaleType)
	if saleType == "" {
		saleType = models.SaleTypeAuction
	}

	product, err := h.auctionService.CreateProduct(c.Request.Context(), sellerID, services.CreateProductInput{
		Title:         req.Title,
		Description:   req.Description,
		SaleType:      saleType,
		Price:         req.Price,
		StartingPrice: req.StartingPrice,
		BuyNowPrice:   req.BuyNowPrice,
		DurationHours: req.DurationHours,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// ListActive handles GET /v1/products
func (h *RestProductHandler) ListActive(c *gin.Context) {
	products, err := h.auctionService.ActiveAuctions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// SellerHistory handles GET /v1/products/history
func (h *RestProductHandler) SellerHistory(c *gin.Context) {
	sellerID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	products, err := h.auctionService.HistoryForSeller(c.Request.Context(), sellerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// ListBids handles GET /v1/products/:id/bids
func (h *RestProductHandler) ListBids(c *gin.Context) {
	productID, ok := idParam(c, "id")
	if !ok {
		return
	}

	bids, err := h.auctionService.BidsForProduct(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bids": bids})
}

// PlaceBidRequest is the payload for placing a bid.
type PlaceBidRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// PlaceBid handles POST /v1/products/:id/bids
func (h *RestProductHandler) PlaceBid(c *gin.Context) {
	productID, ok := idParam(c, "id")
	if !ok {
		return
	}
	bidderID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	bid, err := h.auctionService.PlaceBid(c.Request.Context(), productID, bidderID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bid)
}

// CloseAuction handles POST /v1/products/:id/close
func (h *RestProductHandler) CloseAuction(c *gin.Context) {
	productID, ok := idParam(c, "id")
	if !ok {
		return
	}
	callerID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	caller, err := h.userService.FindByID(c.Request.Context(), callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.auctionService.CloseManual(c.Request.Context(), productID, caller); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}

// Purchase handles POST /v1/products/:id/purchase
func (h *RestProductHandler) Purchase(c *gin.Context) {
	productID, ok := idParam(c, "id")
	if !ok {
		return
	}
	buyerID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	purchase, err := h.auctionService.Purchase(c.Request.Context(), productID, buyerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}
