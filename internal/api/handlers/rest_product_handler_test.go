package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Ilyes4CODE/Market-place-live/internal/api/handlers"
	"github.com/Ilyes4CODE/Market-place-live/internal/api/middleware"
	"github.com/Ilyes4CODE/Market-place-live/internal/apperr"
	"github.com/Ilyes4CODE/Market-place-live/internal/models"
	"github.com/Ilyes4CODE/Market-place-live/internal/services"
	"github.com/Ilyes4CODE/Market-place-live/internal/utils"
)

// authAs fakes the auth middleware by seeding the context keys directly.
func authAs(userID utils.SixID, isAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID.String())
		c.Set(middleware.ContextKeyIsAdmin, isAdmin)
		c.Next()
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewBuffer(payload)
}

func setupProductRouter(auctionSvc *MockAuctionService, userSvc *MockUserService, callerID utils.SixID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handlers.NewRestProductHandler(auctionSvc, userSvc)
	r := gin.New()
	r.Use(authAs(callerID, false))
	r.POST("/v1/products/auction", h.CreateAuction)
	r.GET("/v1/products", h.ListActive)
	r.GET("/v1/products/history", h.SellerHistory)
	r.GET("/v1/products/:id/bids", h.ListBids)
	r.POST("/v1/products/:id/bids", h.PlaceBid)
	r.POST("/v1/products/:id/close", h.CloseAuction)
	r.POST("/v1/products/:id/purchase", h.Purchase)
	return r
}

func TestCreateAuction(t *testing.T) {
	sellerID := utils.NewSixID()
	auctionSvc := new(MockAuctionService)
	r := setupProductRouter(auctionSvc, new(MockUserService), sellerID)

	product := &models.Product{Base: models.NewBase(), SellerID: sellerID, Title: "Old clock"}
	auctionSvc.On("CreateProduct", mock.Anything, sellerID, services.CreateProductInput{
		Title:         "Old clock",
		SaleType:      models.SaleTypeAuction,
		StartingPrice: 50,
		DurationHours: 48,
	}).Return(product, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/v1/products/auction", jsonBody(t, gin.H{
		"title":          "Old clock",
		"starting_price": 50,
		"duration_hours": 48,
	}))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	auctionSvc.AssertExpectations(t)
}

func TestCreateAuction_MissingTitle(t *testing.T) {
	r := setupProductRouter(new(MockAuctionService), new(MockUserService), utils.NewSixID())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/v1/products/auction", jsonBody(t, gin.H{"starting_price": 50}))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlaceBid(t *testing.T) {
	bidderID := utils.NewSixID()
	productID := utils.NewSixID()
	auctionSvc := new(MockAuctionService)
	r := setupProductRouter(auctionSvc, new(MockUserService), bidderID)

	bid := &models.Bid{Base: models.NewBase(), ProductID: productID, BidderID: bidderID, Amount: 120}
	auctionSvc.On("PlaceBid", mock.Anything, productID, bidderID, 120.0).Return(bid, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/v1/products/"+productID.String()+"/bids", jsonBody(t, gin.H{"amount": 120}))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	auctionSvc.AssertExpectations(t)
}

func TestPlaceBid_ErrorMapping(t *testing.T) {
	bidderID := utils.NewSixID()
	productID := utils.NewSixID()

	cases := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"closed auction", apperr.Conflict("the auction has closed"), http.StatusConflict},
		{"own product", apperr.Forbidden("sellers cannot bid on their own auction"), http.StatusForbidden},
		{"unknown product", apperr.NotFound("product not found"), http.StatusNotFound},
		{"low amount", apperr.Invalid("bid must exceed the current floor"), http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auctionSvc := new(MockAuctionService)
			auctionSvc.On("PlaceBid", mock.Anything, productID, bidderID, 10.0).Return(nil, tc.serviceErr)
			r := setupProductRouter(auctionSvc, new(MockUserService), bidderID)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodPost, "/v1/products/"+productID.String()+"/bids", jsonBody(t, gin.H{"amount": 10}))
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestPlaceBid_BadProductID(t *testing.T) {
	r := setupProductRouter(new(MockAuctionService), new(MockUserService), utils.NewSixID())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/v1/products/not-an-id/bids", jsonBody(t, gin.H{"amount": 10}))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCloseAuction_LooksUpCaller(t *testing.T) {
	callerID := utils.NewSixID()
	productID := utils.NewSixID()
	auctionSvc := new(MockAuctionService)
	userSvc := new(MockUserService)
	r := setupProductRouter(auctionSvc, userSvc, callerID)

	caller := &models.User{Base: models.Base{ID: callerID}, Name: "Seller"}
	userSvc.On("FindByID", mock.Anything, callerID).Return(caller, nil)
	auctionSvc.On("CloseManual", mock.Anything, productID, caller).Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/v1/products/"+productID.String()+"/close", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	userSvc.AssertExpectations(t)
	auctionSvc.AssertExpectations(t)
}

func TestPurchase(t *testing.T) {
	buyerID := utils.NewSixID()
	productID := utils.NewSixID()
	auctionSvc := new(MockAuctionService)
	r := setupProductRouter(auctionSvc, new(MockUserService), buyerID)

	purchase := &models.Purchase{Base: models.NewBase(), ProductID: productID, BuyerID: buyerID}
	auctionSvc.On("Purchase", mock.Anything, productID, buyerID).Return(purchase, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/v1/products/"+productID.String()+"/purchase", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	auctionSvc.AssertExpectations(t)
}

func TestListActive(t *testing.T) {
	auctionSvc := new(MockAuctionService)
	r := setupProductRouter(auctionSvc, new(MockUserService), utils.NewSixID())

	auctionSvc.On("ActiveAuctions", mock.Anything).Return([]models.Product{
		{Base: models.NewBase(), Title: "One"},
		{Base: models.NewBase(), Title: "Two"},
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/v1/products", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Products []models.Product `json:"products"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Products, 2)
}

func TestSellerHistory(t *testing.T) {
	sellerID := utils.NewSixID()
	auctionSvc := new(MockAuctionService)
	r := setupProductRouter(auctionSvc, new(MockUserService), sellerID)

	auctionSvc.On("HistoryForSeller", mock.Anything, sellerID).Return([]models.Product{}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/v1/products/history", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	auctionSvc.AssertExpectations(t)
}
