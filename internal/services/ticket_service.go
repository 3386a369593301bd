package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Ilyes4CODE/Market-place-live/internal/apperr"
	"github.com/Ilyes4CODE/Market-place-live/internal/models"
	"github.com/Ilyes4CODE/Market-place-live/internal/realtime"
	"github.com/Ilyes4CODE/Market-place-live/internal/utils"
)

const ticketsCollection = "tickets"

// TicketFilter narrows ticket listings; zero values mean "any".
type TicketFilter struct {
	Status models.TicketStatus
	UserID *utils.SixID
}

// ITicketService manages support tickets. Each ticket carries a message
// stream handled by the message service; new tickets are pushed live to the
// admin ticket feed.
type ITicketService interface {
	Create(ctx context.Context, userID utils.SixID, subject string) (*models.Ticket, error)
	FindByID(ctx context.Context, ticketID utils.SixID) (*models.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]models.Ticket, error)
	SetStatus(ctx context.Context, ticketID utils.SixID, status models.TicketStatus) error
	CanAccess(ticket *models.Ticket, user *models.User) bool
}

type ticketService struct {
	db  *mongo.Database
	bus realtime.Publisher
}

func NewTicketService(database *mongo.Database, bus realtime.Publisher) ITicketService {
	return &ticketService{db: database, bus: bus}
}

func (s *ticketService) Create(ctx context.Context, userID utils.SixID, subject string) (*models.Ticket, error) {
	if subject == "" {
		return nil, apperr.Invalid("ticket subject is required")
	}

	ticket := &models.Ticket{
		Base:      models.NewBase(),
		UserID:    userID,
		Subject:   subject,
		Status:    models.TicketStatusOpen,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.db.Collection(ticketsCollection).InsertOne(ctx, ticket); err != nil {
		return nil, fmt.Errorf("error creating ticket: %w", err)
	}

	s.bus.Publish(ctx, realtime.AdminTicketsChannel, map[string]any{
		"new_ticket": ticket,
	})
	return ticket, nil
}

func (s *ticketService) FindByID(ctx context.Context, ticketID utils.SixID) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.db.Collection(ticketsCollection).FindOne(ctx, bson.M{"_id": ticketID}).Decode(&ticket)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("ticket %s not found", ticketID)
		}
		return nil, fmt.Errorf("error finding ticket %s: %w", ticketID, err)
	}
	return &ticket, nil
}

func (s *ticketService) List(ctx context.Context, filter TicketFilter) ([]models.Ticket, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.UserID != nil {
		query["user_id"] = *filter.UserID
	}

	cursor, err := s.db.Collection(ticketsCollection).Find(ctx, query,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("error listing tickets: %w", err)
	}
	defer cursor.Close(ctx)

	var tickets []models.Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, fmt.Errorf("error decoding tickets: %w", err)
	}
	return tickets, nil
}

func (s *ticketService) SetStatus(ctx context.Context, ticketID utils.SixID, status models.TicketStatus) error {
	if status != models.TicketStatusOpen && status != models.TicketStatusClosed {
		return apperr.Invalid("invalid ticket status %q", status)
	}
	result, err := s.db.Collection(ticketsCollection).UpdateOne(ctx,
		bson.M{"_id": ticketID},
		bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("error setting ticket %s status: %w", ticketID, err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("ticket %s not found", ticketID)
	}
	return nil
}

// CanAccess reports whether user may read or post on the ticket: the owner
// and admins only.
func (s *ticketService) CanAccess(ticket *models.Ticket, user *models.User) bool {
	return user.IsAdmin || ticket.UserID == user.ID
}
