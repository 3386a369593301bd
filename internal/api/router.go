package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Ilyes4CODE/Market-place-live/internal/api/handlers"
	"github.com/Ilyes4CODE/Market-place-live/internal/api/middleware"
	"github.com/Ilyes4CODE/Market-place-live/internal/config"
	"github.com/Ilyes4CODE/Market-place-live/internal/realtime"
	"github.com/Ilyes4CODE/Market-place-live/internal/services"
	"github.com/Ilyes4CODE/Market-place-live/internal/storage"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, registry *realtime.Registry, bus realtime.Publisher) *gin.Engine {
	// Initialize services needed by API handlers HERE
	userService := services.NewUserService(db)
	notificationService := services.NewNotificationService(db, bus, userService)
	conversationService := services.NewConversationService(db)
	ticketService := services.NewTicketService(db, bus)
	statsService := services.NewStatsService(db, bus)
	auctionService := services.NewAuctionService(db, notificationService, conversationService, userService, statsService)

	attachmentStore, err := storage.NewAttachmentStore(cfg)
	if err != nil {
		log.Fatalf("CRITICAL: Failed to initialize attachment storage for API: %v", err)
	}

	presence := realtime.NewRedisPresence(rdb)
	messageService := services.NewMessageService(
		db, attachmentStore, bus, presence, notificationService, conversationService, ticketService, userService)

	r := gin.Default()

	// Initialize Middleware
	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)

	// Apply global middleware first (order matters)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	// Initialize handlers
	productHandler := handlers.NewRestProductHandler(auctionService, userService)
	conversationHandler := handlers.NewRestConversationHandler(conversationService, auctionService)
	notificationHandler := handlers.NewRestNotificationHandler(notificationService)
	ticketHandler := handlers.NewRestTicketHandler(ticketService)
	adminHandler := handlers.NewRestAdminHandler(auctionService, userService, statsService)
	wsHandler := handlers.NewWSHandler(
		cfg, registry, presence, messageService, notificationService, conversationService, ticketService, userService, statsService)

	v1 := r.Group("/v1")
	{
		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Everything else requires a valid token.
		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		{
			// Product and auction routes
			authed.POST("/products/auction", productHandler.CreateAuction)
			authed.GET("/products", productHandler.ListActive)
			authed.GET("/products/history", productHandler.SellerHistory)
			authed.GET("/products/:id/bids", productHandler.ListBids)
			authed.POST("/products/:id/bids", productHandler.PlaceBid)
			authed.POST("/products/:id/close", productHandler.CloseAuction)
			authed.POST("/products/:id/purchase", productHandler.Purchase)

			// Conversations and notifications
			authed.POST("/conversations", conversationHandler.Start)
			authed.GET("/conversations", conversationHandler.ListOwn)
			authed.GET("/notifications", notificationHandler.ListUnread)

			// Support tickets
			authed.POST("/tickets", ticketHandler.Create)
			authed.GET("/tickets", ticketHandler.ListOwn)

			// Realtime feeds
			authed.GET("/ws/chat/:conversation_id", wsHandler.Chat)
			authed.GET("/ws/notifications", wsHandler.Notifications)
			authed.GET("/ws/tickets/:ticket_id", wsHandler.TicketChat)
			authed.GET("/ws/admin/tickets", middleware.AdminMiddleware(), wsHandler.AdminTickets)
			authed.GET("/ws/admin/stats", middleware.AdminMiddleware(), wsHandler.AdminStats)

			// Admin routes
			admin := authed.Group("/admin")
			admin.Use(middleware.AdminMiddleware())
			{
				admin.POST("/bids/:id/decision", adminHandler.DecideBid)
				admin.POST("/products/:id/approval", adminHandler.SetApproval)
				admin.POST("/users/:id/ban", adminHandler.SetBan)
				admin.GET("/users", adminHandler.ListUsers)
				admin.GET("/stats", adminHandler.Stats)
			}
		}
	}

	return r
}
