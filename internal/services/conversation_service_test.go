package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Ilyes4CODE/Market-place-live/internal/apperr"
	"github.com/Ilyes4CODE/Market-place-live/internal/utils"
)

func TestGetOrCreateIsIdempotent(t *testing.T) {
	env := newTestEnv(t, "test_conversation_idempotent")
	ctx := context.Background()
	seller := utils.NewSixID()
	buyer := utils.NewSixID()
	product := utils.NewSixID()

	first, err := env.conversations.GetOrCreate(ctx, seller, buyer, product)
	require.NoError(t, err)
	second, err := env.conversations.GetOrCreate(ctx, seller, buyer, product)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	count, err := env.db.Collection(conversationsCollection).CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestGetOrCreateConcurrentCallersShareOneRow(t *testing.T) {
	env := newTestEnv(t, "test_conversation_concurrent")
	ctx := context.Background()
	seller := utils.NewSixID()
	buyer := utils.NewSixID()
	product := utils.NewSixID()

	const callers = 16
	ids := make(chan utils.SixID, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conv, err := env.conversations.GetOrCreate(ctx, seller, buyer, product)
			assert.NoError(t, err)
			if conv != nil {
				ids <- conv.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	var unique map[utils.SixID]struct{} = map[utils.SixID]struct{}{}
	got := 0
	for id := range ids {
		unique[id] = struct{}{}
		got++
	}
	assert.Equal(t, callers, got)
	assert.Len(t, unique, 1, "all concurrent callers see the same conversation")

	count, err := env.db.Collection(conversationsCollection).CountDocuments(ctx,
		bson.M{"seller_id": seller, "buyer_id": buyer, "product_id": product})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestGetOrCreateDistinguishesTriples(t *testing.T) {
	env := newTestEnv(t, "test_conversation_triples")
	ctx := context.Background()
	seller := utils.NewSixID()
	buyer := utils.NewSixID()

	a, err := env.conversations.GetOrCreate(ctx, seller, buyer, utils.NewSixID())
	require.NoError(t, err)
	b, err := env.conversations.GetOrCreate(ctx, seller, buyer, utils.NewSixID())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestGetOrCreateRejectsSelfConversation(t *testing.T) {
	env := newTestEnv(t, "test_conversation_self")
	user := utils.NewSixID()
	_, err := env.conversations.GetOrCreate(context.Background(), user, user, utils.NewSixID())
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestConversationLookups(t *testing.T) {
	env := newTestEnv(t, "test_conversation_lookups")
	ctx := context.Background()
	seller := utils.NewSixID()
	buyer := utils.NewSixID()

	conv, err := env.conversations.GetOrCreate(ctx, seller, buyer, utils.NewSixID())
	require.NoError(t, err)

	found, err := env.conversations.FindByID(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, found.ID)

	_, err = env.conversations.FindByID(ctx, utils.NewSixID())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	forSeller, err := env.conversations.ListForUser(ctx, seller)
	require.NoError(t, err)
	assert.Len(t, forSeller, 1)
	forBuyer, err := env.conversations.ListForUser(ctx, buyer)
	require.NoError(t, err)
	assert.Len(t, forBuyer, 1)
	forStranger, err := env.conversations.ListForUser(ctx, utils.NewSixID())
	require.NoError(t, err)
	assert.Empty(t, forStranger)
}
