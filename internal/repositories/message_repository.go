package repositories

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"spilled-server/internal/interfaces"
	"spilled-server/internal/schemas"
)

const messagesTable = "spilled_schema.messages"

var messageColumns = []string{
	"message_id", "sender_id", "receiver_id", "content", "expires_at", "created_at",
}

// DefaultMessageTTL is applied when a message is sent without an explicit
// expiry.
const DefaultMessageTTL = 7 * 24 * time.Hour

// activeMessages is the predicate for messages that have not expired yet.
const activeMessages = "(expires_at IS NULL OR expires_at > NOW())"

// ChatHistoryFilter narrows FetchChatHistory.
type ChatHistoryFilter struct {
	IncludeExpired bool
	From           *time.Time
	To             *time.Time
	Page           int
	Limit          int
}

// ConversationFilter narrows FetchConversations. Search matches the
// counterparty nickname; Page and Limit paginate the conversation list, not
// the messages.
type ConversationFilter struct {
	Search string
	Page   int
	Limit  int
}

// MessageRepository persists direct messages and computes the conversation
// summaries.
type MessageRepository struct {
	base  *BaseRepository[schemas.Message]
	users *UserRepository
	pool  interfaces.PgxPoolIface
}

func NewMessageRepository(pool interfaces.PgxPoolIface, users *UserRepository) *MessageRepository {
	return &MessageRepository{
		base:  NewBaseRepository[schemas.Message](pool, messagesTable, "message_id", messageColumns),
		users: users,
		pool:  pool,
	}
}

// SendMessage inserts a message. Self-messaging is rejected, both parties
// must exist, and the expiry defaults to DefaultMessageTTL from now when
// unset.
func (r *MessageRepository) SendMessage(ctx context.Context, senderID, receiverID uuid.UUID, content string, expiresAt *time.Time) (*schemas.Message, error) {
	op := messagesTable + ".sendMessage"
	if senderID == receiverID {
		return nil, validationError("receiverId", "cannot send a message to yourself")
	}
	if err := requireNonEmpty("content", content); err != nil {
		return nil, err
	}
	if err := requireMaxLength("content", content, 1000); err != nil {
		return nil, err
	}

	for _, party := range []struct {
		id    uuid.UUID
		label string
	}{{senderID, "sender"}, {receiverID, "receiver"}} {
		user, err := r.users.FindByID(ctx, party.id)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, notFoundError(op, party.label+" does not exist")
		}
	}

	if expiresAt == nil {
		expiry := time.Now().Add(DefaultMessageTTL)
		expiresAt = &expiry
	}
	return r.base.Create(ctx,
		[]string{"message_id", "sender_id", "receiver_id", "content", "expires_at", "created_at"},
		[]any{uuid.New(), senderID, receiverID, content, expiresAt, time.Now()},
	)
}

// FetchChatHistory lists the messages between two users, newest first.
// Expired messages are excluded unless the filter asks for them.
func (r *MessageRepository) FetchChatHistory(ctx context.Context, userA, userB uuid.UUID, filter ChatHistoryFilter) (Paginated[schemas.Message], error) {
	params := NormalizePage(filter.Page, filter.Limit, DefaultPageLimit)

	builder := &QueryBuilder{}
	a := builder.Bind(userA)
	b := builder.Bind(userB)
	pair := CombineOr(
		"(sender_id = "+a+" AND receiver_id = "+b+")",
		"(sender_id = "+b+" AND receiver_id = "+a+")",
	)
	fragments := []string{pair}
	if !filter.IncludeExpired {
		fragments = append(fragments, activeMessages)
	}
	fragments = append(fragments, builder.DateRange("created_at", filter.From, filter.To))
	predicate := CombineAnd(fragments...)

	total, err := r.base.Count(ctx, predicate, builder.Args())
	if err != nil {
		return Paginated[schemas.Message]{}, err
	}
	messages, err := r.base.FindMany(ctx, predicate, builder.Args(), "created_at DESC", params)
	if err != nil {
		return Paginated[schemas.Message]{}, err
	}
	return NewPaginated(messages, params, total), nil
}

// FetchConversations assembles the per-conversation summaries for a user.
// The distinct counterparties over all active messages are paginated (total,
// offset and limit apply to conversations, not messages), then each
// counterparty on the page is resolved with its last message, total count
// and unread count, and the page is sorted by last-message time descending.
// Unread means "received from them"; there is no read-receipt tracking.
func (r *MessageRepository) FetchConversations(ctx context.Context, userID uuid.UUID, filter ConversationFilter) (Paginated[schemas.ConversationDTO], error) {
	op := messagesTable + ".fetchConversations"
	params := NormalizePage(filter.Page, filter.Limit, DefaultPageLimit)

	builder := &QueryBuilder{}
	self := builder.Bind(userID)
	counterparty := "CASE WHEN m.sender_id = " + self + " THEN m.receiver_id ELSE m.sender_id END"
	base := ` FROM ` + messagesTable + ` m
		INNER JOIN ` + usersTable + ` u ON u.user_id = ` + counterparty + `
		WHERE (m.sender_id = ` + self + ` OR m.receiver_id = ` + self + `) AND ` + activeMessages
	if search := builder.TextSearch(filter.Search, "u.nickname"); search != "" {
		base += " AND " + search
	}

	var total int
	countQueryString := "SELECT COUNT(DISTINCT " + counterparty + ")" + base
	if err := r.pool.QueryRow(ctx, countQueryString, builder.Args()...).Scan(&total); err != nil {
		return Paginated[schemas.ConversationDTO]{}, translateError(op, err)
	}

	// The distinct-counterparty set has no inherent order; order by id so
	// pagination stays stable across requests.
	pageQueryString := "SELECT DISTINCT " + counterparty + " AS other_user_id, u.nickname" + base + `
		ORDER BY other_user_id
		LIMIT ` + strconv.Itoa(params.Limit) + ` OFFSET ` + strconv.Itoa(params.Offset())

	rows, err := r.pool.Query(ctx, pageQueryString, builder.Args()...)
	if err != nil {
		return Paginated[schemas.ConversationDTO]{}, translateError(op, err)
	}

	type counterpartyRow struct {
		id       uuid.UUID
		nickname string
	}
	counterparties := make([]counterpartyRow, 0, params.Limit)
	for rows.Next() {
		var row counterpartyRow
		if err := rows.Scan(&row.id, &row.nickname); err != nil {
			rows.Close()
			return Paginated[schemas.ConversationDTO]{}, translateError(op, err)
		}
		counterparties = append(counterparties, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Paginated[schemas.ConversationDTO]{}, translateError(op, err)
	}

	conversations := make([]schemas.ConversationDTO, 0, len(counterparties))
	lastTimes := make(map[uuid.UUID]time.Time, len(counterparties))
	for _, other := range counterparties {
		summary, lastTime, err := r.summarizeConversation(ctx, userID, other.id, other.nickname)
		if err != nil {
			return Paginated[schemas.ConversationDTO]{}, err
		}
		conversations = append(conversations, summary)
		lastTimes[other.id] = lastTime
	}

	// Client-visible order is always most-recently-active first.
	sort.SliceStable(conversations, func(i, j int) bool {
		return lastTimes[conversations[i].OtherUserID].After(lastTimes[conversations[j].OtherUserID])
	})
	return NewPaginated(conversations, params, total), nil
}

// summarizeConversation resolves one conversation: the last active message,
// the total active message count and the unread count.
func (r *MessageRepository) summarizeConversation(ctx context.Context, userID, otherID uuid.UUID, nickname string) (schemas.ConversationDTO, time.Time, error) {
	op := messagesTable + ".summarizeConversation"
	summary := schemas.ConversationDTO{OtherUserID: otherID, OtherNickname: nickname}

	pair := "((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))"

	queryString := "SELECT content, created_at, sender_id FROM " + messagesTable +
		" WHERE " + pair + " AND " + activeMessages + " ORDER BY created_at DESC LIMIT 1"
	var lastContent string
	var lastTime time.Time
	var lastSender uuid.UUID
	err := r.pool.QueryRow(ctx, queryString, userID, otherID).Scan(&lastContent, &lastTime, &lastSender)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// Counterparty came from the same active set, so this only happens
		// when the last message expired between the two queries.
	case err != nil:
		return summary, time.Time{}, translateError(op, err)
	default:
		summary.LastMessage = lastContent
		summary.LastMessageTime = lastTime.Format(time.RFC3339)
		summary.LastMessageSent = lastSender == userID
	}

	queryString = "SELECT COUNT(*) FROM " + messagesTable + " WHERE " + pair + " AND " + activeMessages
	if err := r.pool.QueryRow(ctx, queryString, userID, otherID).Scan(&summary.TotalMessages); err != nil {
		return summary, time.Time{}, translateError(op, err)
	}

	queryString = "SELECT COUNT(*) FROM " + messagesTable +
		" WHERE sender_id = $1 AND receiver_id = $2 AND " + activeMessages
	if err := r.pool.QueryRow(ctx, queryString, otherID, userID).Scan(&summary.UnreadCount); err != nil {
		return summary, time.Time{}, translateError(op, err)
	}

	return summary, lastTime, nil
}

// CleanupExpiredMessages deletes every message whose expiry has passed and
// returns the number removed. Running it twice in a row deletes nothing the
// second time.
func (r *MessageRepository) CleanupExpiredMessages(ctx context.Context) (int, error) {
	op := messagesTable + ".cleanupExpiredMessages"
	tag, err := r.pool.Exec(ctx, "DELETE FROM "+messagesTable+" WHERE expires_at IS NOT NULL AND expires_at <= NOW()")
	if err != nil {
		return 0, translateError(op, err)
	}
	return int(tag.RowsAffected()), nil
}

// DeleteMessage removes a message when the caller sent it. Returns false
// without an error when the message is absent or the caller is not the
// sender.
func (r *MessageRepository) DeleteMessage(ctx context.Context, id, senderID uuid.UUID) (bool, error) {
	op := messagesTable + ".deleteMessage"
	tag, err := r.pool.Exec(ctx, "DELETE FROM "+messagesTable+" WHERE message_id = $1 AND sender_id = $2", id, senderID)
	if err != nil {
		return false, translateError(op, err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetMessageStats aggregates message counts. Conversations are identified
// by the unordered sender/receiver pair via least/greatest. The counts run
// concurrently and are not a transactional snapshot.
func (r *MessageRepository) GetMessageStats(ctx context.Context) (*schemas.MessageStatsDTO, error) {
	op := messagesTable + ".getMessageStats"
	stats := &schemas.MessageStatsDTO{}
	var activeCount int
	startOfToday := time.Now().Truncate(24 * time.Hour)

	group, groupCtx := errgroup.WithContext(ctx)
	count := func(target *int, queryString string, args ...any) {
		group.Go(func() error {
			if err := r.pool.QueryRow(groupCtx, queryString, args...).Scan(target); err != nil {
				return translateError(op, err)
			}
			return nil
		})
	}

	count(&stats.TotalMessages, "SELECT COUNT(*) FROM "+messagesTable)
	count(&stats.MessagesToday, "SELECT COUNT(*) FROM "+messagesTable+" WHERE created_at >= $1", startOfToday)
	count(&stats.ExpiredMessages, "SELECT COUNT(*) FROM "+messagesTable+" WHERE expires_at IS NOT NULL AND expires_at <= NOW()")
	count(&stats.ActiveConversations, "SELECT COUNT(DISTINCT (LEAST(sender_id::text, receiver_id::text) || ':' || GREATEST(sender_id::text, receiver_id::text))) FROM "+messagesTable+" WHERE "+activeMessages)
	count(&activeCount, "SELECT COUNT(*) FROM "+messagesTable+" WHERE "+activeMessages)

	if err := group.Wait(); err != nil {
		return nil, err
	}
	if stats.ActiveConversations > 0 {
		stats.AvgMessagesPerConversat = float64(activeCount) / float64(stats.ActiveConversations)
	}
	return stats, nil
}
