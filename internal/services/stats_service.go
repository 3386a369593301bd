package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Ilyes4CODE/Market-place-live/internal/models"
	"github.com/Ilyes4CODE/Market-place-live/internal/realtime"
)

const (
	productsCollection = "products"
	bidsCollection     = "bids"
)

// IStatsService recomputes marketplace counters and pushes them to the admin
// stats feed. Every snapshot is a full recount; mutating services call
// Publish explicitly after touching a watched entity.
type IStatsService interface {
	Snapshot(ctx context.Context) (*models.MarketplaceStats, error)
	Publish(ctx context.Context)
}

type statsService struct {
	db  *mongo.Database
	bus realtime.Publisher
}

func NewStatsService(database *mongo.Database, bus realtime.Publisher) IStatsService {
	return &statsService{db: database, bus: bus}
}

func (s *statsService) Snapshot(ctx context.Context) (*models.MarketplaceStats, error) {
	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)

	stats := &models.MarketplaceStats{}
	counts := []struct {
		dest       *int64
		collection string
		filter     bson.M
	}{
		{&stats.ActiveUsers, usersCollection, bson.M{"banned": false}},
		{&stats.AcceptedBids, bidsCollection, bson.M{"status": models.BidStatusAccepted}},
		{&stats.ActiveProducts, productsCollection, bson.M{"approved": true, "closed": false, "archived": false}},
		{&stats.PendingProducts, productsCollection, bson.M{"approved": false, "archived": false}},
		{&stats.PendingBids, bidsCollection, bson.M{"status": models.BidStatusPending}},
		{&stats.BannedUsers, usersCollection, bson.M{"banned": true}},
		{&stats.UsersToday, usersCollection, bson.M{"joined_at": bson.M{"$gte": startOfDay}}},
		{&stats.RejectedBids, bidsCollection, bson.M{"status": models.BidStatusRejected}},
	}

	for _, c := range counts {
		n, err := s.db.Collection(c.collection).CountDocuments(ctx, c.filter)
		if err != nil {
			return nil, fmt.Errorf("error counting %s: %w", c.collection, err)
		}
		*c.dest = n
	}
	return stats, nil
}

// Publish recounts and broadcasts. Failures are logged and swallowed so a
// stats hiccup never fails the mutation that triggered it.
func (s *statsService) Publish(ctx context.Context) {
	stats, err := s.Snapshot(ctx)
	if err != nil {
		log.Printf("Error recomputing marketplace stats: %v", err)
		return
	}
	s.bus.Publish(ctx, realtime.AdminStatsChannel, map[string]any{
		"type": "marketplace_stats",
		"data": stats,
	})
}
