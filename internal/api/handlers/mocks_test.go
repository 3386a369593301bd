package handlers_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Ilyes4CODE/Market-place-live/internal/models"
	"github.com/Ilyes4CODE/Market-place-live/internal/services"
	"github.com/Ilyes4CODE/Market-place-live/internal/utils"
)

// --- Mocks ---

// MockAuctionService
type MockAuctionService struct {
	mock.Mock
}

func (m *MockAuctionService) CreateProduct(ctx context.Context, sellerID utils.SixID, input services.CreateProductInput) (*models.Product, error) {
	args := m.Called(ctx, sellerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockAuctionService) FindProduct(ctx context.Context, productID utils.SixID) (*models.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockAuctionService) SetApproval(ctx context.Context, productID utils.SixID, approved bool) error {
	args := m.Called(ctx, productID, approved)
	return args.Error(0)
}

func (m *MockAuctionService) PlaceBid(ctx context.Context, productID, bidderID utils.SixID, amount float64) (*models.Bid, error) {
	args := m.Called(ctx, productID, bidderID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bid), args.Error(1)
}

func (m *MockAuctionService) DecideBid(ctx context.Context, bidID utils.SixID, decision services.BidDecision) (*models.Bid, error) {
	args := m.Called(ctx, bidID, decision)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bid), args.Error(1)
}

func (m *MockAuctionService) Close(ctx context.Context, productID utils.SixID, trigger models.CloseTrigger, preferredBidID *utils.SixID) error {
	args := m.Called(ctx, productID, trigger, preferredBidID)
	return args.Error(0)
}

func (m *MockAuctionService) CloseManual(ctx context.Context, productID utils.SixID, caller *models.User) error {
	args := m.Called(ctx, productID, caller)
	return args.Error(0)
}

func (m *MockAuctionService) SweepExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockAuctionService) ArchiveExpiredHistory(ctx context.Context, retention time.Duration) (int64, error) {
	args := m.Called(ctx, retention)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuctionService) Purchase(ctx context.Context, productID, buyerID utils.SixID) (*models.Purchase, error) {
	args := m.Called(ctx, productID, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Purchase), args.Error(1)
}

func (m *MockAuctionService) BidsForProduct(ctx context.Context, productID utils.SixID) ([]models.Bid, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Bid), args.Error(1)
}

func (m *MockAuctionService) ActiveAuctions(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockAuctionService) HistoryForSeller(ctx context.Context, sellerID utils.SixID) ([]models.Product, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

// MockUserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) FindByID(ctx context.Context, userID utils.SixID) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) AdminIDs(ctx context.Context) ([]utils.SixID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]utils.SixID), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserService) SetBanned(ctx context.Context, userID utils.SixID, banned bool) error {
	args := m.Called(ctx, userID, banned)
	return args.Error(0)
}

func (m *MockUserService) SetVerified(ctx context.Context, userID utils.SixID, verified bool) error {
	args := m.Called(ctx, userID, verified)
	return args.Error(0)
}

// MockNotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Notify(ctx context.Context, recipientID utils.SixID, text string, ref services.NotificationRef) (*models.Notification, error) {
	args := m.Called(ctx, recipientID, text, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationService) NotifyAdmins(ctx context.Context, text string, ref services.NotificationRef) error {
	args := m.Called(ctx, text, ref)
	return args.Error(0)
}

func (m *MockNotificationService) NotifyChatMessage(ctx context.Context, recipientID utils.SixID, sender *models.User, msg *models.Message) error {
	args := m.Called(ctx, recipientID, sender, msg)
	return args.Error(0)
}

func (m *MockNotificationService) UnreadForUser(ctx context.Context, userID utils.SixID) ([]models.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkChatNotificationsRead(ctx context.Context, userID utils.SixID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockTicketService
type MockTicketService struct {
	mock.Mock
}

func (m *MockTicketService) Create(ctx context.Context, userID utils.SixID, subject string) (*models.Ticket, error) {
	args := m.Called(ctx, userID, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketService) FindByID(ctx context.Context, ticketID utils.SixID) (*models.Ticket, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketService) List(ctx context.Context, filter services.TicketFilter) ([]models.Ticket, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ticket), args.Error(1)
}

func (m *MockTicketService) SetStatus(ctx context.Context, ticketID utils.SixID, status models.TicketStatus) error {
	args := m.Called(ctx, ticketID, status)
	return args.Error(0)
}

func (m *MockTicketService) CanAccess(ticket *models.Ticket, user *models.User) bool {
	args := m.Called(ticket, user)
	return args.Bool(0)
}

// MockStatsService
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Snapshot(ctx context.Context) (*models.MarketplaceStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MarketplaceStats), args.Error(1)
}

func (m *MockStatsService) Publish(ctx context.Context) {
	m.Called(ctx)
}

// MockMessageService
type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) PostMessage(ctx context.Context, target services.MessageTarget, senderID utils.SixID, text, attachmentDataURI string) (*models.Message, error) {
	args := m.Called(ctx, target, senderID, text, attachmentDataURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockMessageService) History(ctx context.Context, target services.MessageTarget) ([]models.Message, error) {
	args := m.Called(ctx, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMessageService) MarkSeen(ctx context.Context, target services.MessageTarget, readerID utils.SixID) error {
	args := m.Called(ctx, target, readerID)
	return args.Error(0)
}

// MockConversationService
type MockConversationService struct {
	mock.Mock
}

func (m *MockConversationService) GetOrCreate(ctx context.Context, sellerID, buyerID, productID utils.SixID) (*models.Conversation, error) {
	args := m.Called(ctx, sellerID, buyerID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockConversationService) FindByID(ctx context.Context, conversationID utils.SixID) (*models.Conversation, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockConversationService) ListForUser(ctx context.Context, userID utils.SixID) ([]models.Conversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Conversation), args.Error(1)
}
