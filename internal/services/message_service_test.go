package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ilyes4CODE/Market-place-live/internal/apperr"
	"github.com/Ilyes4CODE/Market-place-live/internal/realtime"
	"github.com/Ilyes4CODE/Market-place-live/internal/utils"
)

func conversationTarget(id utils.SixID) MessageTarget {
	return MessageTarget{ConversationID: &id}
}

func ticketTarget(id utils.SixID) MessageTarget {
	return MessageTarget{TicketID: &id}
}

func TestPostMessageValidation(t *testing.T) {
	env := newTestEnv(t, "test_message_validation")
	ctx := context.Background()
	seller := env.createUser(t, "seller", false)
	buyer := env.createUser(t, "buyer", false)
	conv, err := env.conversations.GetOrCreate(ctx, seller.ID, buyer.ID, utils.NewSixID())
	require.NoError(t, err)

	t.Run("empty text and attachment", func(t *testing.T) {
		_, err := env.messages.PostMessage(ctx, conversationTarget(conv.ID), buyer.ID, "", "")
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	})

	t.Run("attachment only is accepted", func(t *testing.T) {
		msg, err := env.messages.PostMessage(ctx, conversationTarget(conv.ID), buyer.ID, "", "data:image/png;base64,ZmFrZQ==")
		require.NoError(t, err)
		assert.Empty(t, msg.Content)
		assert.NotEmpty(t, msg.Picture)
	})

	t.Run("both targets set", func(t *testing.T) {
		tid := utils.NewSixID()
		_, err := env.messages.PostMessage(ctx, MessageTarget{ConversationID: &conv.ID, TicketID: &tid}, buyer.ID, "hi", "")
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	})

	t.Run("no target set", func(t *testing.T) {
		_, err := env.messages.PostMessage(ctx, MessageTarget{}, buyer.ID, "hi", "")
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	})

	t.Run("non-participant forbidden", func(t *testing.T) {
		stranger := env.createUser(t, "stranger", false)
		_, err := env.messages.PostMessage(ctx, conversationTarget(conv.ID), stranger.ID, "hi", "")
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("unknown conversation", func(t *testing.T) {
		_, err := env.messages.PostMessage(ctx, conversationTarget(utils.NewSixID()), buyer.ID, "hi", "")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestPostMessageBroadcastsAndNotifiesAbsentRecipient(t *testing.T) {
	env := newTestEnv(t, "test_message_absent")
	ctx := context.Background()
	seller := env.createUser(t, "seller", false)
	buyer := env.createUser(t, "buyer", false)
	conv, err := env.conversations.GetOrCreate(ctx, seller.ID, buyer.ID, utils.NewSixID())
	require.NoError(t, err)

	// Seller is not viewing the conversation, so the post raises exactly one
	// notification for them.
	msg, err := env.messages.PostMessage(ctx, conversationTarget(conv.ID), buyer.ID, "hello", "")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)

	broadcasts := env.bus.onChannel(realtime.ChatChannel(conv.ID))
	require.Len(t, broadcasts, 1)
	assert.Equal(t, 1, env.notificationCount(t, seller.ID))

	// The chat_notification frame went to the seller's personal feed.
	feed := env.bus.onChannel(realtime.NotifChannel(seller.ID))
	assert.Len(t, feed, 2) // generic notification + chat_notification
}

func TestPostMessageSuppressesNotificationWhenRecipientPresent(t *testing.T) {
	env := newTestEnv(t, "test_message_present")
	ctx := context.Background()
	seller := env.createUser(t, "seller", false)
	buyer := env.createUser(t, "buyer", false)
	conv, err := env.conversations.GetOrCreate(ctx, seller.ID, buyer.ID, utils.NewSixID())
	require.NoError(t, err)

	require.NoError(t, env.presence.Mark(ctx, conv.ID, seller.ID))
	_, err = env.messages.PostMessage(ctx, conversationTarget(conv.ID), buyer.ID, "hello", "")
	require.NoError(t, err)
	assert.Zero(t, env.notificationCount(t, seller.ID))

	// After the seller leaves, the next message notifies again.
	require.NoError(t, env.presence.Clear(ctx, conv.ID, seller.ID))
	_, err = env.messages.PostMessage(ctx, conversationTarget(conv.ID), buyer.ID, "still there?", "")
	require.NoError(t, err)
	assert.Equal(t, 1, env.notificationCount(t, seller.ID))
}

func TestTicketMessagesRestrictedToOwnerAndAdmins(t *testing.T) {
	env := newTestEnv(t, "test_message_ticket")
	ctx := context.Background()
	owner := env.createUser(t, "owner", false)
	admin := env.createUser(t, "admin", true)
	stranger := env.createUser(t, "stranger", false)

	ticket, err := env.tickets.Create(ctx, owner.ID, "Payment issue")
	require.NoError(t, err)

	_, err = env.messages.PostMessage(ctx, ticketTarget(ticket.ID), owner.ID, "help", "")
	assert.NoError(t, err)
	_, err = env.messages.PostMessage(ctx, ticketTarget(ticket.ID), admin.ID, "looking into it", "")
	assert.NoError(t, err)
	_, err = env.messages.PostMessage(ctx, ticketTarget(ticket.ID), stranger.ID, "me too", "")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	history, err := env.messages.History(ctx, ticketTarget(ticket.ID))
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestHistoryOrderAndMarkSeen(t *testing.T) {
	env := newTestEnv(t, "test_message_history")
	ctx := context.Background()
	seller := env.createUser(t, "seller", false)
	buyer := env.createUser(t, "buyer", false)
	conv, err := env.conversations.GetOrCreate(ctx, seller.ID, buyer.ID, utils.NewSixID())
	require.NoError(t, err)

	for _, text := range []string{"one", "two", "three"} {
		_, err := env.messages.PostMessage(ctx, conversationTarget(conv.ID), buyer.ID, text, "")
		require.NoError(t, err)
	}

	history, err := env.messages.History(ctx, conversationTarget(conv.ID))
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "one", history[0].Content)
	assert.Equal(t, "three", history[2].Content)
	for _, m := range history {
		assert.False(t, m.Seen)
	}

	// The sender marking seen is a no-op on their own messages.
	require.NoError(t, env.messages.MarkSeen(ctx, conversationTarget(conv.ID), buyer.ID))
	history, err = env.messages.History(ctx, conversationTarget(conv.ID))
	require.NoError(t, err)
	for _, m := range history {
		assert.False(t, m.Seen)
	}

	require.NoError(t, env.messages.MarkSeen(ctx, conversationTarget(conv.ID), seller.ID))
	history, err = env.messages.History(ctx, conversationTarget(conv.ID))
	require.NoError(t, err)
	for _, m := range history {
		assert.True(t, m.Seen)
	}
}
