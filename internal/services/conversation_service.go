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
	"github.com/Ilyes4CODE/Market-place-live/internal/db"
	"github.com/Ilyes4CODE/Market-place-live/internal/models"
	"github.com/Ilyes4CODE/Market-place-live/internal/utils"
)

const conversationsCollection = "conversations"

// IConversationService manages buyer-seller-product conversations. Creation
// is idempotent on the triple: concurrent callers all end up with the single
// stored row.
type IConversationService interface {
	GetOrCreate(ctx context.Context, sellerID, buyerID, productID utils.SixID) (*models.Conversation, error)
	FindByID(ctx context.Context, conversationID utils.SixID) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID utils.SixID) ([]models.Conversation, error)
}

type conversationService struct {
	db *mongo.Database
}

func NewConversationService(database *mongo.Database) IConversationService {
	return &conversationService{db: database}
}

// GetOrCreate relies on the unique index over (seller_id, buyer_id,
// product_id): the insert loser of a creation race hits a duplicate-key
// error and re-reads the winner's row.
func (s *conversationService) GetOrCreate(ctx context.Context, sellerID, buyerID, productID utils.SixID) (*models.Conversation, error) {
	if sellerID == buyerID {
		return nil, apperr.Invalid("a conversation needs two distinct participants")
	}

	collection := s.db.Collection(conversationsCollection)
	filter := bson.M{"seller_id": sellerID, "buyer_id": buyerID, "product_id": productID}

	var conv models.Conversation
	err := collection.FindOne(ctx, filter).Decode(&conv)
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("error finding conversation: %w", err)
	}

	conv = models.Conversation{
		Base:      models.NewBase(),
		SellerID:  sellerID,
		BuyerID:   buyerID,
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	}
	_, err = collection.InsertOne(ctx, conv)
	if err == nil {
		return &conv, nil
	}
	if db.IsDuplicateKeyError(err) {
		// Lost the race; reuse the stored row.
		if err := collection.FindOne(ctx, filter).Decode(&conv); err != nil {
			return nil, fmt.Errorf("error re-reading conversation after duplicate insert: %w", err)
		}
		return &conv, nil
	}
	return nil, fmt.Errorf("error creating conversation: %w", err)
}

func (s *conversationService) FindByID(ctx context.Context, conversationID utils.SixID) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.Collection(conversationsCollection).FindOne(ctx, bson.M{"_id": conversationID}).Decode(&conv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("conversation %s not found", conversationID)
		}
		return nil, fmt.Errorf("error finding conversation %s: %w", conversationID, err)
	}
	return &conv, nil
}

func (s *conversationService) ListForUser(ctx context.Context, userID utils.SixID) ([]models.Conversation, error) {
	cursor, err := s.db.Collection(conversationsCollection).Find(ctx,
		bson.M{"$or": []bson.M{{"seller_id": userID}, {"buyer_id": userID}}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("error listing conversations for %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var convs []models.Conversation
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, fmt.Errorf("error decoding conversations: %w", err)
	}
	return convs, nil
}
