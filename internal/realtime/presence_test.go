package realtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ilyes4CODE/Market-place-live/internal/utils"
)

func TestMemoryPresenceMarkClear(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPresence()
	conv := utils.NewSixID()
	user := utils.NewSixID()

	present, err := p.IsPresent(ctx, conv, user)
	require.NoError(t, err)
	assert.False(t, present)

	require.NoError(t, p.Mark(ctx, conv, user))
	present, err = p.IsPresent(ctx, conv, user)
	require.NoError(t, err)
	assert.True(t, present)

	require.NoError(t, p.Clear(ctx, conv, user))
	present, err = p.IsPresent(ctx, conv, user)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestMemoryPresenceScopedByConversation(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPresence()
	user := utils.NewSixID()
	convA := utils.NewSixID()
	convB := utils.NewSixID()

	require.NoError(t, p.Mark(ctx, convA, user))

	present, err := p.IsPresent(ctx, convB, user)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestMemoryPresenceClearUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPresence()
	assert.NoError(t, p.Clear(ctx, utils.NewSixID(), utils.NewSixID()))
}
