package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Ilyes4CODE/Market-place-live/internal/db"
	"github.com/Ilyes4CODE/Market-place-live/internal/models"
	"github.com/Ilyes4CODE/Market-place-live/internal/realtime"
	"github.com/Ilyes4CODE/Market-place-live/internal/testutil"
	"github.com/Ilyes4CODE/Market-place-live/internal/utils"
)

// recordingBus captures publishes so tests can assert on fan-out without a
// live connection.
type recordingBus struct {
	mu     sync.Mutex
	events []busEvent
}

type busEvent struct {
	Channel string
	Payload any
}

func (b *recordingBus) Publish(_ context.Context, channel string, v any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, busEvent{Channel: channel, Payload: v})
}

func (b *recordingBus) onChannel(channel string) []busEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []busEvent
	for _, e := range b.events {
		if e.Channel == channel {
			out = append(out, e)
		}
	}
	return out
}

// fakeAttachments returns a canned URL instead of hitting S3.
type fakeAttachments struct {
	saved int
}

func (f *fakeAttachments) SaveDataURI(_ context.Context, _ string) (string, error) {
	f.saved++
	return fmt.Sprintf("https://img.example.com/attachments/test-%d.jpg", f.saved), nil
}

type testEnv struct {
	db            *mongo.Database
	bus           *recordingBus
	presence      realtime.Presence
	attachments   *fakeAttachments
	users         IUserService
	notifications INotificationService
	conversations IConversationService
	tickets       ITicketService
	messages      IMessageService
	stats         IStatsService
	auctions      IAuctionService
}

func newTestEnv(t *testing.T, dbName string) *testEnv {
	t.Helper()
	database := testutil.SetupTestDB(t, dbName,
		usersCollection, productsCollection, bidsCollection,
		conversationsCollection, messagesCollection,
		notificationsCollection, ticketsCollection, purchasesCollection)
	require.NoError(t, db.EnsureIndexes(context.Background(), database))

	env := &testEnv{
		db:          database,
		bus:         &recordingBus{},
		presence:    realtime.NewMemoryPresence(),
		attachments: &fakeAttachments{},
	}
	env.users = NewUserService(database)
	env.notifications = NewNotificationService(database, env.bus, env.users)
	env.conversations = NewConversationService(database)
	env.tickets = NewTicketService(database, env.bus)
	env.stats = NewStatsService(database, env.bus)
	env.messages = NewMessageService(database, env.attachments, env.bus, env.presence,
		env.notifications, env.conversations, env.tickets, env.users)
	env.auctions = NewAuctionService(database, env.notifications, env.conversations,
		env.users, env.stats)
	return env
}

func (e *testEnv) createUser(t *testing.T, name string, admin bool) *models.User {
	t.Helper()
	user := &models.User{
		Base:     models.NewBase(),
		Name:     name,
		Email:    name + "@example.com",
		IsAdmin:  admin,
		Verified: true,
		JoinedAt: time.Now().UTC(),
	}
	_, err := e.db.Collection(usersCollection).InsertOne(context.Background(), user)
	require.NoError(t, err)
	return user
}

func (e *testEnv) createAuction(t *testing.T, sellerID utils.SixID, starting, buyNow float64) *models.Product {
	t.Helper()
	product, err := e.auctions.CreateProduct(context.Background(), sellerID, CreateProductInput{
		Title:         "Test auction",
		SaleType:      models.SaleTypeAuction,
		StartingPrice: starting,
		BuyNowPrice:   buyNow,
		DurationHours: 24,
	})
	require.NoError(t, err)
	require.NoError(t, e.auctions.SetApproval(context.Background(), product.ID, true))
	product.Approved = true
	return product
}

// notificationCount counts persisted unread notifications for a recipient.
func (e *testEnv) notificationCount(t *testing.T, recipientID utils.SixID) int {
	t.Helper()
	notifs, err := e.notifications.UnreadForUser(context.Background(), recipientID)
	require.NoError(t, err)
	return len(notifs)
}
