package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Ilyes4CODE/Market-place-live/internal/apperr"
	"github.com/Ilyes4CODE/Market-place-live/internal/models"
	"github.com/Ilyes4CODE/Market-place-live/internal/utils"
)

const purchasesCollection = "purchases"

// BidDecision is the admin verdict on a pending bid.
type BidDecision string

const (
	BidDecisionAccept BidDecision = "accept"
	BidDecisionReject BidDecision = "reject"
)

// CreateProductInput carries the fields a seller submits for a new listing.
type CreateProductInput struct {
	Title         string
	Description   string
	SaleType      models.SaleType
	Price         float64 // fixed-price listings
	StartingPrice float64 // auctions
	BuyNowPrice   float64 // auctions, 0 = none
	DurationHours int     // auctions
}

// IAuctionService owns the auction state machine: bid placement and review,
// closing with exactly-once winner side effects, the periodic sweeps, and
// the fixed-price purchase path. All terminal transitions funnel through
// Close, which is guarded by a compare-and-set on the closed flag.
type IAuctionService interface {
	CreateProduct(ctx context.Context, sellerID utils.SixID, input CreateProductInput) (*models.Product, error)
	FindProduct(ctx context.Context, productID utils.SixID) (*models.Product, error)
	SetApproval(ctx context.Context, productID utils.SixID, approved bool) error
	PlaceBid(ctx context.Context, productID, bidderID utils.SixID, amount float64) (*models.Bid, error)
	DecideBid(ctx context.Context, bidID utils.SixID, decision BidDecision) (*models.Bid, error)
	Close(ctx context.Context, productID utils.SixID, trigger models.CloseTrigger, preferredBidID *utils.SixID) error
	CloseManual(ctx context.Context, productID utils.SixID, caller *models.User) error
	SweepExpired(ctx context.Context) (int, error)
	ArchiveExpiredHistory(ctx context.Context, retention time.Duration) (int64, error)
	Purchase(ctx context.Context, productID, buyerID utils.SixID) (*models.Purchase, error)
	BidsForProduct(ctx context.Context, productID utils.SixID) ([]models.Bid, error)
	ActiveAuctions(ctx context.Context) ([]models.Product, error)
	HistoryForSeller(ctx context.Context, sellerID utils.SixID) ([]models.Product, error)
}

type auctionService struct {
	db            *mongo.Database
	notifications INotificationService
	conversations IConversationService
	users         IUserService
	stats         IStatsService

	mu    sync.Mutex
	locks map[utils.SixID]*sync.Mutex
}

func NewAuctionService(
	database *mongo.Database,
	notifications INotificationService,
	conversations IConversationService,
	users IUserService,
	stats IStatsService,
) IAuctionService {
	return &auctionService{
		db:            database,
		notifications: notifications,
		conversations: conversations,
		users:         users,
		stats:         stats,
		locks:         make(map[utils.SixID]*sync.Mutex),
	}
}

// auctionLock returns the mutex serializing accept and close decisions for a
// single auction. Bid placement stays lock-free.
func (s *auctionService) auctionLock(productID utils.SixID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[productID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[productID] = l
	}
	return l
}

func (s *auctionService) CreateProduct(ctx context.Context, sellerID utils.SixID, input CreateProductInput) (*models.Product, error) {
	if input.Title == "" {
		return nil, apperr.Invalid("product title is required")
	}

	now := time.Now().UTC()
	product := &models.Product{
		Base:        models.NewBase(),
		SellerID:    sellerID,
		Title:       input.Title,
		Description: input.Description,
		SaleType:    input.SaleType,
		CreatedAt:   now,
	}

	switch input.SaleType {
	case models.SaleTypeFixed:
		if input.Price <= 0 {
			return nil, apperr.Invalid("price must be positive")
		}
		product.Price = input.Price
	case models.SaleTypeAuction:
		if input.StartingPrice <= 0 {
			return nil, apperr.Invalid("starting price must be positive")
		}
		if input.BuyNowPrice != 0 && input.BuyNowPrice <= input.StartingPrice {
			return nil, apperr.Invalid("buy-now price must exceed the starting price")
		}
		if input.DurationHours <= 0 {
			return nil, apperr.Invalid("auction duration must be positive")
		}
		product.StartingPrice = input.StartingPrice
		product.BuyNowPrice = input.BuyNowPrice
		product.DurationHours = input.DurationHours
		// End time is fixed at creation and never recomputed.
		product.EndTime = now.Add(time.Duration(input.DurationHours) * time.Hour)
	default:
		return nil, apperr.Invalid("invalid sale type %q", input.SaleType)
	}

	if _, err := s.db.Collection(productsCollection).InsertOne(ctx, product); err != nil {
		return nil, fmt.Errorf("error creating product: %w", err)
	}

	if err := s.notifications.NotifyAdmins(ctx,
		fmt.Sprintf("New product %q awaits approval", product.Title),
		NotificationRef{}); err != nil {
		log.Printf("Error notifying admins about product %s: %v", product.ID, err)
	}
	s.stats.Publish(ctx)
	return product, nil
}

func (s *auctionService) FindProduct(ctx context.Context, productID utils.SixID) (*models.Product, error) {
	var product models.Product
	err := s.db.Collection(productsCollection).FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("product %s not found", productID)
		}
		return nil, fmt.Errorf("error finding product %s: %w", productID, err)
	}
	return &product, nil
}

func (s *auctionService) SetApproval(ctx context.Context, productID utils.SixID, approved bool) error {
	product, err := s.FindProduct(ctx, productID)
	if err != nil {
		return err
	}

	result, err := s.db.Collection(productsCollection).UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{"approved": approved}})
	if err != nil {
		return fmt.Errorf("error setting approval for product %s: %w", productID, err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("product %s not found", productID)
	}

	verdict := "approved"
	if !approved {
		verdict = "rejected"
	}
	if _, err := s.notifications.Notify(ctx, product.SellerID,
		fmt.Sprintf("Your product %q was %s", product.Title, verdict),
		NotificationRef{}); err != nil {
		log.Printf("Error notifying seller %s about approval: %v", product.SellerID, err)
	}
	s.stats.Publish(ctx)
	return nil
}

// PlaceBid validates against the live auction state and records a pending
// bid. The amount floor is the highest accepted amount, or the starting
// price while nothing is accepted; pending bids do not raise the floor.
func (s *auctionService) PlaceBid(ctx context.Context, productID, bidderID utils.SixID, amount float64) (*models.Bid, error) {
	product, err := s.FindProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.SaleType != models.SaleTypeAuction || !product.Approved {
		return nil, apperr.NotFound("auction %s not found", productID)
	}
	if product.SellerID == bidderID {
		return nil, apperr.Forbidden("sellers may not bid on their own auction")
	}

	bidder, err := s.users.FindByID(ctx, bidderID)
	if err != nil {
		return nil, err
	}
	if !bidder.CanParticipate() {
		return nil, apperr.Forbidden("user %s may not bid", bidderID)
	}

	now := time.Now().UTC()
	if product.Closed {
		return nil, apperr.Conflict("auction %s is closed", productID)
	}
	if product.IsExpired(now) {
		// Opportunistic flag flip only; winner selection stays with Close,
		// which the sweep will invoke.
		if _, err := s.db.Collection(productsCollection).UpdateOne(ctx,
			bson.M{"_id": productID, "closed": false},
			bson.M{"$set": bson.M{"closed": true, "closed_at": now}}); err != nil {
			log.Printf("Error flipping expired auction %s closed: %v", productID, err)
		}
		return nil, apperr.Conflict("auction %s has ended", productID)
	}

	if amount <= 0 {
		return nil, apperr.Invalid("bid amount must be positive")
	}
	floor, err := s.acceptedFloor(ctx, product)
	if err != nil {
		return nil, err
	}
	if amount <= floor {
		return nil, apperr.Invalid("bid must exceed %.2f", floor)
	}

	bid := &models.Bid{
		Base:      models.NewBase(),
		ProductID: productID,
		BidderID:  bidderID,
		Amount:    amount,
		Status:    models.BidStatusPending,
		CreatedAt: now,
	}
	if _, err := s.db.Collection(bidsCollection).InsertOne(ctx, bid); err != nil {
		return nil, fmt.Errorf("error inserting bid: %w", err)
	}

	if _, err := s.notifications.Notify(ctx, bidderID,
		fmt.Sprintf("Your bid of %.2f on %q was submitted for review", amount, product.Title),
		NotificationRef{BidID: &bid.ID}); err != nil {
		log.Printf("Error notifying bidder %s: %v", bidderID, err)
	}
	if err := s.notifications.NotifyAdmins(ctx,
		fmt.Sprintf("Bid of %.2f on %q awaits review", amount, product.Title),
		NotificationRef{BidID: &bid.ID}); err != nil {
		log.Printf("Error notifying admins about bid %s: %v", bid.ID, err)
	}
	s.stats.Publish(ctx)
	return bid, nil
}

// acceptedFloor returns the amount a new bid must exceed.
func (s *auctionService) acceptedFloor(ctx context.Context, product *models.Product) (float64, error) {
	var top models.Bid
	err := s.db.Collection(bidsCollection).FindOne(ctx,
		bson.M{"product_id": product.ID, "status": models.BidStatusAccepted},
		options.FindOne().SetSort(bson.D{{Key: "amount", Value: -1}})).Decode(&top)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return product.StartingPrice, nil
		}
		return 0, fmt.Errorf("error finding top accepted bid: %w", err)
	}
	return top.Amount, nil
}

// DecideBid applies an admin verdict to a pending bid. The transition is
// guarded on status=pending, so concurrent or repeated decisions surface as
// Conflict instead of re-firing side effects. Accepting a bid at or above
// the buy-now price closes the auction with that bid as winner in the same
// operation.
func (s *auctionService) DecideBid(ctx context.Context, bidID utils.SixID, decision BidDecision) (*models.Bid, error) {
	if decision != BidDecisionAccept && decision != BidDecisionReject {
		return nil, apperr.Invalid("invalid bid decision %q", decision)
	}

	var bid models.Bid
	err := s.db.Collection(bidsCollection).FindOne(ctx, bson.M{"_id": bidID}).Decode(&bid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("bid %s not found", bidID)
		}
		return nil, fmt.Errorf("error finding bid %s: %w", bidID, err)
	}
	if bid.Status != models.BidStatusPending {
		return nil, apperr.Conflict("bid %s has already been decided", bidID)
	}

	if decision == BidDecisionAccept {
		// Accepting re-reads the product and the accepted floor before the
		// guarded update, so two concurrent accepts (or an accept racing a
		// close) must not interleave between those reads and the write.
		lock := s.auctionLock(bid.ProductID)
		lock.Lock()
		defer lock.Unlock()
	}

	product, err := s.FindProduct(ctx, bid.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Closed {
		return nil, apperr.Conflict("auction %s is closed", product.ID)
	}

	newStatus := models.BidStatusAccepted
	if decision == BidDecisionReject {
		newStatus = models.BidStatusRejected
	}
	if newStatus == models.BidStatusAccepted {
		floor, err := s.acceptedFloor(ctx, product)
		if err != nil {
			return nil, err
		}
		if bid.Amount <= floor {
			return nil, apperr.Conflict("bid %s no longer exceeds the accepted floor of %.2f", bidID, floor)
		}
	}

	result, err := s.db.Collection(bidsCollection).UpdateOne(ctx,
		bson.M{"_id": bidID, "status": models.BidStatusPending},
		bson.M{"$set": bson.M{"status": newStatus}})
	if err != nil {
		return nil, fmt.Errorf("error updating bid %s: %w", bidID, err)
	}
	if result.MatchedCount == 0 {
		// Another admin decided it between our read and the update.
		return nil, apperr.Conflict("bid %s has already been decided", bidID)
	}
	bid.Status = newStatus

	switch newStatus {
	case models.BidStatusAccepted:
		if product.BuyNowPrice > 0 && bid.Amount >= product.BuyNowPrice {
			// The close sends the sold/won pair; the acceptance pair would
			// be redundant noise on top of it.
			if err := s.closeLocked(ctx, product.ID, models.CloseTriggerBuyNow, &bid.ID); err != nil {
				log.Printf("Error closing auction %s after buy-now bid %s: %v", product.ID, bid.ID, err)
			}
		} else {
			if _, err := s.notifications.Notify(ctx, bid.BidderID,
				fmt.Sprintf("Your bid of %.2f on %q was accepted", bid.Amount, product.Title),
				NotificationRef{BidID: &bid.ID}); err != nil {
				log.Printf("Error notifying bidder %s: %v", bid.BidderID, err)
			}
			if _, err := s.notifications.Notify(ctx, product.SellerID,
				fmt.Sprintf("A bid of %.2f on %q was accepted", bid.Amount, product.Title),
				NotificationRef{BidID: &bid.ID}); err != nil {
				log.Printf("Error notifying seller %s: %v", product.SellerID, err)
			}
		}
	case models.BidStatusRejected:
		if _, err := s.notifications.Notify(ctx, bid.BidderID,
			fmt.Sprintf("Your bid of %.2f on %q was rejected", bid.Amount, product.Title),
			NotificationRef{BidID: &bid.ID}); err != nil {
			log.Printf("Error notifying bidder %s: %v", bid.BidderID, err)
		}
	}
	s.stats.Publish(ctx)
	return &bid, nil
}

// Close is the single choke point for terminal auction side effects. The
// guarded FindOneAndUpdate flips closed false→true; only the caller that
// wins the flip runs winner selection, so concurrent triggers (sweep,
// manual close, buy-now) cannot double-fire notifications or conversation
// creation.
func (s *auctionService) Close(ctx context.Context, productID utils.SixID, trigger models.CloseTrigger, preferredBidID *utils.SixID) error {
	lock := s.auctionLock(productID)
	lock.Lock()
	defer lock.Unlock()
	return s.closeLocked(ctx, productID, trigger, preferredBidID)
}

// closeLocked is Close without the per-auction lock; DecideBid's buy-now
// path calls it while already holding the lock.
func (s *auctionService) closeLocked(ctx context.Context, productID utils.SixID, trigger models.CloseTrigger, preferredBidID *utils.SixID) error {
	now := time.Now().UTC()
	var product models.Product
	err := s.db.Collection(productsCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": productID, "sale_type": models.SaleTypeAuction, "closed": false},
		bson.M{"$set": bson.M{"closed": true, "closed_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Either the auction does not exist or someone else already
			// closed it; diagnose which.
			if _, findErr := s.FindProduct(ctx, productID); findErr != nil {
				return findErr
			}
			return apperr.Conflict("auction %s is already closed", productID)
		}
		return fmt.Errorf("error closing auction %s: %w", productID, err)
	}

	log.Printf("Closed auction %s (trigger=%s)", productID, trigger)

	winner, err := s.selectWinner(ctx, &product, preferredBidID)
	if err != nil {
		// The flag is flipped; winner side effects are lost only if the
		// store is down, in which case everything else is too.
		return fmt.Errorf("error selecting winner for auction %s: %w", productID, err)
	}

	if winner == nil {
		if _, err := s.notifications.Notify(ctx, product.SellerID,
			fmt.Sprintf("Your auction %q ended without a winning bid", product.Title),
			NotificationRef{}); err != nil {
			log.Printf("Error notifying seller %s: %v", product.SellerID, err)
		}
		s.stats.Publish(ctx)
		return nil
	}

	if _, err := s.db.Collection(bidsCollection).UpdateOne(ctx,
		bson.M{"_id": winner.ID},
		bson.M{"$set": bson.M{"winner": true}}); err != nil {
		return fmt.Errorf("error marking winning bid %s: %w", winner.ID, err)
	}
	if _, err := s.db.Collection(productsCollection).UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{"sold": true}}); err != nil {
		return fmt.Errorf("error marking auction %s sold: %w", productID, err)
	}

	if _, err := s.notifications.Notify(ctx, product.SellerID,
		fmt.Sprintf("Your auction %q sold for %.2f", product.Title, winner.Amount),
		NotificationRef{BidID: &winner.ID}); err != nil {
		log.Printf("Error notifying seller %s: %v", product.SellerID, err)
	}
	if _, err := s.notifications.Notify(ctx, winner.BidderID,
		fmt.Sprintf("You won the auction %q with a bid of %.2f", product.Title, winner.Amount),
		NotificationRef{BidID: &winner.ID}); err != nil {
		log.Printf("Error notifying winner %s: %v", winner.BidderID, err)
	}

	if _, err := s.conversations.GetOrCreate(ctx, product.SellerID, winner.BidderID, product.ID); err != nil {
		log.Printf("Error creating post-sale conversation for auction %s: %v", productID, err)
	}
	s.stats.Publish(ctx)
	return nil
}

// selectWinner picks the highest accepted bid, ties broken by earliest
// placement. A preferred bid (the buy-now path) short-circuits the query.
func (s *auctionService) selectWinner(ctx context.Context, product *models.Product, preferredBidID *utils.SixID) (*models.Bid, error) {
	filter := bson.M{"product_id": product.ID, "status": models.BidStatusAccepted}
	if preferredBidID != nil {
		filter = bson.M{"_id": *preferredBidID, "status": models.BidStatusAccepted}
	}

	var winner models.Bid
	err := s.db.Collection(bidsCollection).FindOne(ctx, filter,
		options.FindOne().SetSort(bson.D{
			{Key: "amount", Value: -1},
			{Key: "created_at", Value: 1},
		})).Decode(&winner)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &winner, nil
}

// CloseManual lets the seller (or an admin) close an auction explicitly.
// Sellers must wait for the end time; admins may cut it short.
func (s *auctionService) CloseManual(ctx context.Context, productID utils.SixID, caller *models.User) error {
	product, err := s.FindProduct(ctx, productID)
	if err != nil {
		return err
	}
	if product.SaleType != models.SaleTypeAuction {
		return apperr.NotFound("auction %s not found", productID)
	}
	if !caller.IsAdmin && product.SellerID != caller.ID {
		return apperr.Forbidden("only the seller may close this auction")
	}
	if !caller.IsAdmin && time.Now().UTC().Before(product.EndTime) {
		return apperr.Conflict("auction %s has not ended yet", productID)
	}
	return s.Close(ctx, productID, models.CloseTriggerManual, nil)
}

// SweepExpired closes every auction whose end time has passed. Overlapping
// runs and races with live closes are safe: Close's guard makes the extra
// calls no-ops that surface as Conflict, which the sweep ignores.
func (s *auctionService) SweepExpired(ctx context.Context) (int, error) {
	cursor, err := s.db.Collection(productsCollection).Find(ctx, bson.M{
		"sale_type": models.SaleTypeAuction,
		"closed":    false,
		"end_time":  bson.M{"$lte": time.Now().UTC()},
	}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return 0, fmt.Errorf("error finding expired auctions: %w", err)
	}
	defer cursor.Close(ctx)

	var expired []struct {
		ID utils.SixID `bson:"_id"`
	}
	if err := cursor.All(ctx, &expired); err != nil {
		return 0, fmt.Errorf("error decoding expired auctions: %w", err)
	}

	closed := 0
	for _, doc := range expired {
		err := s.Close(ctx, doc.ID, models.CloseTriggerExpirySweep, nil)
		switch {
		case err == nil:
			closed++
		case errors.Is(err, apperr.ErrConflict):
			// Lost the race to another trigger; nothing to do.
		default:
			log.Printf("Error sweeping auction %s: %v", doc.ID, err)
		}
	}
	return closed, nil
}

// ArchiveExpiredHistory flips auctions closed longer than the retention
// period into the archive. Idempotent, no notification side effects.
func (s *auctionService) ArchiveExpiredHistory(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	result, err := s.db.Collection(productsCollection).UpdateMany(ctx,
		bson.M{"closed": true, "archived": false, "closed_at": bson.M{"$lte": cutoff}},
		bson.M{"$set": bson.M{"archived": true}})
	if err != nil {
		return 0, fmt.Errorf("error archiving closed auctions: %w", err)
	}
	if result.ModifiedCount > 0 {
		log.Printf("Archived %d closed auctions", result.ModifiedCount)
	}
	return result.ModifiedCount, nil
}

// Purchase records a fixed-price buy. Payment is out of scope; the guarded
// sold flip keeps the purchase exactly-once under concurrent buyers.
func (s *auctionService) Purchase(ctx context.Context, productID, buyerID utils.SixID) (*models.Purchase, error) {
	product, err := s.FindProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.SaleType != models.SaleTypeFixed || !product.Approved {
		return nil, apperr.NotFound("product %s not found", productID)
	}
	if product.SellerID == buyerID {
		return nil, apperr.Forbidden("sellers may not buy their own product")
	}

	buyer, err := s.users.FindByID(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if !buyer.CanParticipate() {
		return nil, apperr.Forbidden("user %s may not purchase", buyerID)
	}

	result, err := s.db.Collection(productsCollection).UpdateOne(ctx,
		bson.M{"_id": productID, "sold": false},
		bson.M{"$set": bson.M{"sold": true}})
	if err != nil {
		return nil, fmt.Errorf("error marking product %s sold: %w", productID, err)
	}
	if result.MatchedCount == 0 {
		return nil, apperr.Conflict("product %s is already sold", productID)
	}

	purchase := &models.Purchase{
		Base:      models.NewBase(),
		ProductID: productID,
		BuyerID:   buyerID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.db.Collection(purchasesCollection).InsertOne(ctx, purchase); err != nil {
		return nil, fmt.Errorf("error recording purchase: %w", err)
	}

	if _, err := s.notifications.Notify(ctx, product.SellerID,
		fmt.Sprintf("Your product %q was purchased", product.Title),
		NotificationRef{}); err != nil {
		log.Printf("Error notifying seller %s: %v", product.SellerID, err)
	}
	if _, err := s.conversations.GetOrCreate(ctx, product.SellerID, buyerID, product.ID); err != nil {
		log.Printf("Error creating purchase conversation for product %s: %v", productID, err)
	}
	s.stats.Publish(ctx)
	return purchase, nil
}

func (s *auctionService) BidsForProduct(ctx context.Context, productID utils.SixID) ([]models.Bid, error) {
	cursor, err := s.db.Collection(bidsCollection).Find(ctx,
		bson.M{"product_id": productID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("error listing bids for product %s: %w", productID, err)
	}
	defer cursor.Close(ctx)

	var bids []models.Bid
	if err := cursor.All(ctx, &bids); err != nil {
		return nil, fmt.Errorf("error decoding bids: %w", err)
	}
	return bids, nil
}

// ActiveAuctions lists approved open auctions; archived listings never
// appear here.
func (s *auctionService) ActiveAuctions(ctx context.Context) ([]models.Product, error) {
	cursor, err := s.db.Collection(productsCollection).Find(ctx, bson.M{
		"sale_type": models.SaleTypeAuction,
		"approved":  true,
		"closed":    false,
		"archived":  false,
	}, options.Find().SetSort(bson.D{{Key: "end_time", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error listing active auctions: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("error decoding products: %w", err)
	}
	return products, nil
}

// HistoryForSeller lists the seller's closed listings, archived included.
func (s *auctionService) HistoryForSeller(ctx context.Context, sellerID utils.SixID) ([]models.Product, error) {
	cursor, err := s.db.Collection(productsCollection).Find(ctx, bson.M{
		"seller_id": sellerID,
		"closed":    true,
	}, options.Find().SetSort(bson.D{{Key: "closed_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("error listing history for seller %s: %w", sellerID, err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("error decoding products: %w", err)
	}
	return products, nil
}
