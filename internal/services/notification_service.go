package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Ilyes4CODE/Market-place-live/internal/models"
	"github.com/Ilyes4CODE/Market-place-live/internal/realtime"
	"github.com/Ilyes4CODE/Market-place-live/internal/utils"
)

const notificationsCollection = "notifications"

// NotificationRef links a notification to the entity that caused it.
type NotificationRef struct {
	BidID     *utils.SixID
	MessageID *utils.SixID
}

// INotificationService persists notifications and pushes them to connected
// recipients. The persist always happens first: a notification must survive
// the recipient being offline, and live delivery is best-effort only.
type INotificationService interface {
	Notify(ctx context.Context, recipientID utils.SixID, text string, ref NotificationRef) (*models.Notification, error)
	NotifyAdmins(ctx context.Context, text string, ref NotificationRef) error
	NotifyChatMessage(ctx context.Context, recipientID utils.SixID, sender *models.User, msg *models.Message) error
	UnreadForUser(ctx context.Context, userID utils.SixID) ([]models.Notification, error)
	MarkChatNotificationsRead(ctx context.Context, userID utils.SixID) error
}

type notificationService struct {
	db    *mongo.Database
	bus   realtime.Publisher
	users IUserService
}

func NewNotificationService(db *mongo.Database, bus realtime.Publisher, users IUserService) INotificationService {
	return &notificationService{db: db, bus: bus, users: users}
}

func (s *notificationService) Notify(ctx context.Context, recipientID utils.SixID, text string, ref NotificationRef) (*models.Notification, error) {
	notif := &models.Notification{
		Base:        models.NewBase(),
		RecipientID: recipientID,
		Text:        text,
		BidID:       ref.BidID,
		MessageID:   ref.MessageID,
		CreatedAt:   time.Now().UTC(),
	}

	if _, err := s.db.Collection(notificationsCollection).InsertOne(ctx, notif); err != nil {
		return nil, fmt.Errorf("error inserting notification for %s: %w", recipientID, err)
	}

	s.bus.Publish(ctx, realtime.NotifChannel(recipientID), map[string]any{
		"type":         "notification",
		"message":      notif.Text,
		"recipient_id": recipientID.String(),
		"created_at":   notif.CreatedAt,
	})
	return notif, nil
}

// NotifyAdmins fans one notification out per admin account. A failure for
// one admin is logged and does not stop the rest.
func (s *notificationService) NotifyAdmins(ctx context.Context, text string, ref NotificationRef) error {
	adminIDs, err := s.users.AdminIDs(ctx)
	if err != nil {
		return err
	}
	for _, adminID := range adminIDs {
		if _, err := s.Notify(ctx, adminID, text, ref); err != nil {
			log.Printf("Error notifying admin %s: %v", adminID, err)
		}
	}
	return nil
}

// NotifyChatMessage persists an unread-message notification and pushes the
// chat_notification frame to the recipient's personal feed.
func (s *notificationService) NotifyChatMessage(ctx context.Context, recipientID utils.SixID, sender *models.User, msg *models.Message) error {
	text := fmt.Sprintf("New message from %s", sender.Name)
	notif, err := s.Notify(ctx, recipientID, text, NotificationRef{MessageID: &msg.ID})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, realtime.NotifChannel(recipientID), map[string]any{
		"type":         "chat_notification",
		"message":      msg.Content,
		"recipient_id": recipientID.String(),
		"sender":       sender.Name,
		"timestamp":    notif.CreatedAt,
	})
	return nil
}

func (s *notificationService) UnreadForUser(ctx context.Context, userID utils.SixID) ([]models.Notification, error) {
	cursor, err := s.db.Collection(notificationsCollection).Find(ctx,
		bson.M{"recipient_id": userID, "is_read": false},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error listing unread notifications for %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var notifs []models.Notification
	if err := cursor.All(ctx, &notifs); err != nil {
		return nil, fmt.Errorf("error decoding notifications: %w", err)
	}
	return notifs, nil
}

// MarkChatNotificationsRead flips every unread message-linked notification of
// the user. Only the recipient can do this, enforced by the caller passing
// its own authenticated id.
func (s *notificationService) MarkChatNotificationsRead(ctx context.Context, userID utils.SixID) error {
	result, err := s.db.Collection(notificationsCollection).UpdateMany(ctx,
		bson.M{"recipient_id": userID, "is_read": false, "message_id": bson.M{"$ne": nil}},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return fmt.Errorf("error marking notifications read for %s: %w", userID, err)
	}
	if result.ModifiedCount > 0 {
		log.Printf("Marked %d chat notifications read for user %s", result.ModifiedCount, userID)
	}
	return nil
}
