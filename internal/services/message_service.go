package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Ilyes4CODE/Market-place-live/internal/apperr"
	"github.com/Ilyes4CODE/Market-place-live/internal/models"
	"github.com/Ilyes4CODE/Market-place-live/internal/realtime"
	"github.com/Ilyes4CODE/Market-place-live/internal/storage"
	"github.com/Ilyes4CODE/Market-place-live/internal/utils"
)

const messagesCollection = "messages"

// MessageTarget addresses exactly one conversation or one ticket.
type MessageTarget struct {
	ConversationID *utils.SixID
	TicketID       *utils.SixID
}

func (t MessageTarget) validate() error {
	if (t.ConversationID == nil) == (t.TicketID == nil) {
		return apperr.Invalid("a message targets exactly one conversation or ticket")
	}
	return nil
}

// IMessageService is the durable message log plus its delivery side effects:
// fan-out to the live channel, and a notification for a recipient who is not
// currently viewing it.
type IMessageService interface {
	PostMessage(ctx context.Context, target MessageTarget, senderID utils.SixID, text, attachmentDataURI string) (*models.Message, error)
	History(ctx context.Context, target MessageTarget) ([]models.Message, error)
	MarkSeen(ctx context.Context, target MessageTarget, readerID utils.SixID) error
}

type messageService struct {
	db            *mongo.Database
	attachments   storage.IAttachmentStore
	bus           realtime.Publisher
	presence      realtime.Presence
	notifications INotificationService
	conversations IConversationService
	tickets       ITicketService
	users         IUserService
}

func NewMessageService(
	database *mongo.Database,
	attachments storage.IAttachmentStore,
	bus realtime.Publisher,
	presence realtime.Presence,
	notifications INotificationService,
	conversations IConversationService,
	tickets ITicketService,
	users IUserService,
) IMessageService {
	return &messageService{
		db:            database,
		attachments:   attachments,
		bus:           bus,
		presence:      presence,
		notifications: notifications,
		conversations: conversations,
		tickets:       tickets,
		users:         users,
	}
}

// PostMessage validates, persists, broadcasts, and raises a notification for
// an absent recipient. The notification side effects never fail the post.
func (s *messageService) PostMessage(ctx context.Context, target MessageTarget, senderID utils.SixID, text, attachmentDataURI string) (*models.Message, error) {
	if err := target.validate(); err != nil {
		return nil, err
	}
	if text == "" && attachmentDataURI == "" {
		return nil, apperr.Invalid("a message needs text or an attachment")
	}

	sender, err := s.users.FindByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if !sender.CanParticipate() {
		return nil, apperr.Forbidden("user %s may not send messages", senderID)
	}

	var (
		channel     string
		recipientID *utils.SixID
	)
	switch {
	case target.ConversationID != nil:
		conv, err := s.conversations.FindByID(ctx, *target.ConversationID)
		if err != nil {
			return nil, err
		}
		if !conv.HasParticipant(senderID) {
			return nil, apperr.Forbidden("user %s is not a participant of conversation %s", senderID, conv.ID)
		}
		other := conv.OtherParticipant(senderID)
		recipientID = &other
		channel = realtime.ChatChannel(conv.ID)
	case target.TicketID != nil:
		ticket, err := s.tickets.FindByID(ctx, *target.TicketID)
		if err != nil {
			return nil, err
		}
		if !sender.IsAdmin && ticket.UserID != senderID {
			return nil, apperr.Forbidden("user %s may not post on ticket %s", senderID, ticket.ID)
		}
		if sender.IsAdmin && ticket.UserID != senderID {
			recipientID = &ticket.UserID
		}
		channel = realtime.TicketChannel(ticket.ID)
	}

	picture := ""
	if attachmentDataURI != "" {
		picture, err = s.attachments.SaveDataURI(ctx, attachmentDataURI)
		if err != nil {
			return nil, err
		}
	}

	msg := &models.Message{
		Base:           models.NewBase(),
		ConversationID: target.ConversationID,
		TicketID:       target.TicketID,
		SenderID:       senderID,
		RecipientID:    recipientID,
		Content:        text,
		Picture:        picture,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := s.db.Collection(messagesCollection).InsertOne(ctx, msg); err != nil {
		return nil, fmt.Errorf("error inserting message: %w", err)
	}

	frame := map[string]any{
		"type":      "chat_message",
		"message":   msg.Content,
		"sender":    sender.Name,
		"timestamp": msg.CreatedAt,
	}
	if recipientID != nil {
		frame["recipient"] = recipientID.String()
	}
	if picture != "" {
		frame["picture"] = picture
	}
	s.bus.Publish(ctx, channel, frame)

	if recipientID != nil && target.ConversationID != nil {
		s.notifyIfAbsent(ctx, *target.ConversationID, *recipientID, sender, msg)
	}
	return msg, nil
}

// notifyIfAbsent raises a notification only when the recipient is not
// currently viewing the conversation. A presence lookup failure counts as
// absent: an extra notification beats a missed one.
func (s *messageService) notifyIfAbsent(ctx context.Context, conversationID, recipientID utils.SixID, sender *models.User, msg *models.Message) {
	present, err := s.presence.IsPresent(ctx, conversationID, recipientID)
	if err != nil {
		log.Printf("Error checking presence for %s in %s: %v", recipientID, conversationID, err)
		present = false
	}
	if present {
		return
	}
	if err := s.notifications.NotifyChatMessage(ctx, recipientID, sender, msg); err != nil {
		log.Printf("Error notifying %s about message %s: %v", recipientID, msg.ID, err)
	}
}

func (s *messageService) History(ctx context.Context, target MessageTarget) ([]models.Message, error) {
	if err := target.validate(); err != nil {
		return nil, err
	}

	query := bson.M{}
	if target.ConversationID != nil {
		query["conversation_id"] = *target.ConversationID
	} else {
		query["ticket_id"] = *target.TicketID
	}

	cursor, err := s.db.Collection(messagesCollection).Find(ctx, query,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error loading message history: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("error decoding messages: %w", err)
	}
	return messages, nil
}

// MarkSeen flips the seen flag on every message in the target that was not
// sent by the reader.
func (s *messageService) MarkSeen(ctx context.Context, target MessageTarget, readerID utils.SixID) error {
	if err := target.validate(); err != nil {
		return err
	}

	query := bson.M{"seen": false, "sender_id": bson.M{"$ne": readerID}}
	if target.ConversationID != nil {
		query["conversation_id"] = *target.ConversationID
	} else {
		query["ticket_id"] = *target.TicketID
	}

	if _, err := s.db.Collection(messagesCollection).UpdateMany(ctx, query,
		bson.M{"$set": bson.M{"seen": true}}); err != nil {
		return fmt.Errorf("error marking messages seen: %w", err)
	}
	return nil
}
