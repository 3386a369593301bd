package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Ilyes4CODE/Market-place-live/internal/apperr"
	"github.com/Ilyes4CODE/Market-place-live/internal/models"
	"github.com/Ilyes4CODE/Market-place-live/internal/utils"
)

const usersCollection = "users"

// IUserService is the read side of user accounts plus the two admin toggles
// the marketplace core owns (ban, verify). Account lifecycle lives elsewhere.
type IUserService interface {
	FindByID(ctx context.Context, userID utils.SixID) (*models.User, error)
	AdminIDs(ctx context.Context) ([]utils.SixID, error)
	List(ctx context.Context) ([]models.User, error)
	SetBanned(ctx context.Context, userID utils.SixID, banned bool) error
	SetVerified(ctx context.Context, userID utils.SixID, verified bool) error
}

type userService struct {
	db *mongo.Database
}

func NewUserService(db *mongo.Database) IUserService {
	return &userService{db: db}
}

func (s *userService) FindByID(ctx context.Context, userID utils.SixID) (*models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("user %s not found", userID)
		}
		return nil, fmt.Errorf("error finding user %s: %w", userID, err)
	}
	return &user, nil
}

// AdminIDs returns the ids of every admin account, used to fan admin
// notifications out.
func (s *userService) AdminIDs(ctx context.Context) ([]utils.SixID, error) {
	cursor, err := s.db.Collection(usersCollection).Find(ctx, bson.M{"is_admin": true},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("error listing admins: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []utils.SixID
	for cursor.Next(ctx) {
		var doc struct {
			ID utils.SixID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("error decoding admin id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating admins: %w", err)
	}
	return ids, nil
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	cursor, err := s.db.Collection(usersCollection).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "joined_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("error decoding users: %w", err)
	}
	return users, nil
}

func (s *userService) SetBanned(ctx context.Context, userID utils.SixID, banned bool) error {
	return s.setFlag(ctx, userID, "banned", banned)
}

func (s *userService) SetVerified(ctx context.Context, userID utils.SixID, verified bool) error {
	return s.setFlag(ctx, userID, "verified", verified)
}

func (s *userService) setFlag(ctx context.Context, userID utils.SixID, field string, value bool) error {
	result, err := s.db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return fmt.Errorf("error setting %s for user %s: %w", field, userID, err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("user %s not found", userID)
	}
	return nil
}
