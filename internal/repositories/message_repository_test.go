package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMessageRepo(poolMock pgxmock.PgxPoolIface) *MessageRepository {
	return NewMessageRepository(poolMock, NewUserRepository(poolMock))
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("RejectsSelfMessaging", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newMessageRepo(poolMock)
		userID := uuid.New()

		_, err := repo.SendMessage(ctx, userID, userID, "hi me", nil)

		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
		assert.Equal(t, "receiverId", FieldOf(err))
	})

	t.Run("RequiresExistingReceiver", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newMessageRepo(poolMock)
		sender := verifiedUser("alice")
		receiverID := uuid.New()

		poolMock.ExpectQuery("FROM spilled_schema.users WHERE user_id").
			WithArgs(sender.ID).
			WillReturnRows(userRows(sender))
		poolMock.ExpectQuery("FROM spilled_schema.users WHERE user_id").
			WithArgs(receiverID).
			WillReturnRows(userRows())

		_, err := repo.SendMessage(ctx, sender.ID, receiverID, "hello", nil)

		require.Error(t, err)
		assert.Equal(t, KindNotFound, KindOf(err))
		expectationsMet(t, poolMock)
	})

	t.Run("AppliesDefaultExpiry", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newMessageRepo(poolMock)
		sender := verifiedUser("alice")
		receiver := verifiedUser("bob")
		stored := testMessage(sender.ID, receiver.ID)

		poolMock.ExpectQuery("FROM spilled_schema.users WHERE user_id").
			WithArgs(sender.ID).
			WillReturnRows(userRows(sender))
		poolMock.ExpectQuery("FROM spilled_schema.users WHERE user_id").
			WithArgs(receiver.ID).
			WillReturnRows(userRows(receiver))
		poolMock.ExpectQuery("INSERT INTO spilled_schema.messages").
			WithArgs(pgxmock.AnyArg(), sender.ID, receiver.ID, stored.Content, pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(messageRows(stored))

		message, err := repo.SendMessage(ctx, sender.ID, receiver.ID, stored.Content, nil)

		require.NoError(t, err)
		require.NotNil(t, message.ExpiresAt)
		assert.WithinDuration(t, time.Now().Add(DefaultMessageTTL), *message.ExpiresAt, time.Hour)
		expectationsMet(t, poolMock)
	})
}

func TestFetchChatHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("ExcludesExpiredByDefault", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newMessageRepo(poolMock)
		userA, userB := uuid.New(), uuid.New()
		stored := testMessage(userA, userB)

		poolMock.ExpectQuery("expires_at IS NULL OR expires_at").
			WithArgs(userA, userB).
			WillReturnRows(countRows(1))
		poolMock.ExpectQuery("ORDER BY created_at DESC").
			WithArgs(userA, userB).
			WillReturnRows(messageRows(stored))

		page, err := repo.FetchChatHistory(ctx, userA, userB, ChatHistoryFilter{})

		require.NoError(t, err)
		require.Len(t, page.Records, 1)
		assert.Equal(t, stored.Content, page.Records[0].Content)
		expectationsMet(t, poolMock)
	})

	t.Run("IncludesExpiredAndDateRangeOnRequest", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newMessageRepo(poolMock)
		userA, userB := uuid.New(), uuid.New()
		from := time.Now().Add(-48 * time.Hour)

		poolMock.ExpectQuery("SELECT COUNT").
			WithArgs(userA, userB, from).
			WillReturnRows(countRows(0))
		poolMock.ExpectQuery("ORDER BY created_at DESC").
			WithArgs(userA, userB, from).
			WillReturnRows(messageRows())

		page, err := repo.FetchChatHistory(ctx, userA, userB, ChatHistoryFilter{IncludeExpired: true, From: &from})

		require.NoError(t, err)
		assert.Empty(t, page.Records)
		expectationsMet(t, poolMock)
	})
}

func TestFetchConversations(t *testing.T) {
	ctx := context.Background()
	poolMock := newMockPool(t)
	repo := newMessageRepo(poolMock)
	userID := uuid.New()
	quietOther := uuid.New()
	activeOther := uuid.New()
	older := time.Now().Add(-2 * time.Hour)
	newer := time.Now().Add(-5 * time.Minute)

	poolMock.ExpectQuery("SELECT COUNT.DISTINCT CASE").
		WithArgs(userID).
		WillReturnRows(countRows(2))
	poolMock.ExpectQuery("SELECT DISTINCT CASE").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"other_user_id", "nickname"}).
			AddRow(quietOther, "quiet").
			AddRow(activeOther, "active"))

	// Counterparties are summarized in page order, quiet first.
	poolMock.ExpectQuery("SELECT content, created_at, sender_id").
		WithArgs(userID, quietOther).
		WillReturnRows(pgxmock.NewRows([]string{"content", "created_at", "sender_id"}).
			AddRow("see you then", older, userID))
	poolMock.ExpectQuery("SELECT COUNT").
		WithArgs(userID, quietOther).
		WillReturnRows(countRows(4))
	poolMock.ExpectQuery("SELECT COUNT").
		WithArgs(quietOther, userID).
		WillReturnRows(countRows(2))

	poolMock.ExpectQuery("SELECT content, created_at, sender_id").
		WithArgs(userID, activeOther).
		WillReturnRows(pgxmock.NewRows([]string{"content", "created_at", "sender_id"}).
			AddRow("on my way", newer, activeOther))
	poolMock.ExpectQuery("SELECT COUNT").
		WithArgs(userID, activeOther).
		WillReturnRows(countRows(9))
	poolMock.ExpectQuery("SELECT COUNT").
		WithArgs(activeOther, userID).
		WillReturnRows(countRows(1))

	page, err := repo.FetchConversations(ctx, userID, ConversationFilter{})

	require.NoError(t, err)
	require.Len(t, page.Records, 2)
	assert.Equal(t, 2, page.Pagination.Records)

	// Most recently active conversation comes first regardless of page order.
	first, second := page.Records[0], page.Records[1]
	assert.Equal(t, activeOther, first.OtherUserID)
	assert.Equal(t, "on my way", first.LastMessage)
	assert.False(t, first.LastMessageSent)
	assert.Equal(t, 9, first.TotalMessages)
	assert.Equal(t, 1, first.UnreadCount)

	assert.Equal(t, quietOther, second.OtherUserID)
	assert.True(t, second.LastMessageSent)
	assert.Equal(t, 2, second.UnreadCount)
	expectationsMet(t, poolMock)
}

func TestCleanupExpiredMessages(t *testing.T) {
	ctx := context.Background()
	poolMock := newMockPool(t)
	repo := newMessageRepo(poolMock)

	poolMock.ExpectExec("DELETE FROM spilled_schema.messages WHERE expires_at IS NOT NULL").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	deleted, err := repo.CleanupExpiredMessages(ctx)

	require.NoError(t, err)
	assert.Equal(t, 3, deleted)
	expectationsMet(t, poolMock)
}

func TestDeleteMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("RemovesOwnMessage", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newMessageRepo(poolMock)
		messageID, senderID := uuid.New(), uuid.New()

		poolMock.ExpectExec("DELETE FROM spilled_schema.messages WHERE message_id").
			WithArgs(messageID, senderID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		removed, err := repo.DeleteMessage(ctx, messageID, senderID)

		require.NoError(t, err)
		assert.True(t, removed)
		expectationsMet(t, poolMock)
	})

	t.Run("ReportsFalseForSomeoneElsesMessage", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newMessageRepo(poolMock)
		messageID, senderID := uuid.New(), uuid.New()

		poolMock.ExpectExec("DELETE FROM spilled_schema.messages WHERE message_id").
			WithArgs(messageID, senderID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		removed, err := repo.DeleteMessage(ctx, messageID, senderID)

		require.NoError(t, err)
		assert.False(t, removed)
		expectationsMet(t, poolMock)
	})
}

func TestGetMessageStats(t *testing.T) {
	ctx := context.Background()
	poolMock := newMockPool(t)
	poolMock.MatchExpectationsInOrder(false)
	repo := newMessageRepo(poolMock)

	poolMock.ExpectQuery(`FROM spilled_schema.messages$`).
		WillReturnRows(countRows(100))
	poolMock.ExpectQuery("WHERE created_at").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(countRows(10))
	poolMock.ExpectQuery("expires_at IS NOT NULL").
		WillReturnRows(countRows(20))
	poolMock.ExpectQuery("LEAST").
		WillReturnRows(countRows(8))
	poolMock.ExpectQuery(`COUNT\(\*\) FROM spilled_schema.messages WHERE \(expires_at IS NULL OR`).
		WillReturnRows(countRows(80))

	stats, err := repo.GetMessageStats(ctx)

	require.NoError(t, err)
	assert.Equal(t, 100, stats.TotalMessages)
	assert.Equal(t, 10, stats.MessagesToday)
	assert.Equal(t, 20, stats.ExpiredMessages)
	assert.Equal(t, 8, stats.ActiveConversations)
	assert.InDelta(t, 10.0, stats.AvgMessagesPerConversat, 0.001)
	expectationsMet(t, poolMock)
}
