package repositories

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"spilled-server/internal/interfaces"
	"spilled-server/internal/schemas"
)

const commentsTable = "spilled_schema.comments"

var commentColumns = []string{
	"comment_id", "story_id", "user_id", "content", "anonymous", "nickname", "created_at",
}

// CreateCommentParams carries the fields of a new comment.
type CreateCommentParams struct {
	StoryID   uuid.UUID
	UserID    uuid.UUID
	Content   string
	Anonymous bool
}

// CommentFilter narrows FindByStoryID. Search matches comment content and
// author nickname.
type CommentFilter struct {
	Search string
	Page   int
	Limit  int
}

// CommentWithAuthor is a comment row joined with its live author nickname.
type CommentWithAuthor struct {
	schemas.Comment
	AuthorNickname string `db:"author_nickname"`
}

// CommentRepository persists comments.
type CommentRepository struct {
	base    *BaseRepository[schemas.Comment]
	users   *UserRepository
	stories *StoryRepository
	pool    interfaces.PgxPoolIface
}

func NewCommentRepository(pool interfaces.PgxPoolIface, users *UserRepository, stories *StoryRepository) *CommentRepository {
	return &CommentRepository{
		base:    NewBaseRepository[schemas.Comment](pool, commentsTable, "comment_id", commentColumns),
		users:   users,
		stories: stories,
		pool:    pool,
	}
}

// Create inserts a comment on an existing story, snapshotting the author's
// nickname.
func (r *CommentRepository) Create(ctx context.Context, params CreateCommentParams) (*schemas.Comment, error) {
	op := commentsTable + ".create"
	if err := requireNonEmpty("content", params.Content); err != nil {
		return nil, err
	}
	if err := requireMaxLength("content", params.Content, 500); err != nil {
		return nil, err
	}

	story, err := r.stories.FindByID(ctx, params.StoryID)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, notFoundError(op, "story does not exist")
	}

	author, err := r.users.FindByID(ctx, params.UserID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, notFoundError(op, "author does not exist")
	}

	return r.base.Create(ctx,
		[]string{"comment_id", "story_id", "user_id", "content", "anonymous", "nickname", "created_at"},
		[]any{uuid.New(), params.StoryID, params.UserID, params.Content, params.Anonymous, author.Nickname, time.Now()},
	)
}

// FindByID returns the comment, or nil when absent.
func (r *CommentRepository) FindByID(ctx context.Context, id uuid.UUID) (*schemas.Comment, error) {
	return r.base.FindByID(ctx, id)
}

// FindByStoryID lists the comments of a story in chronological order, the
// natural reading order for a thread. Comments whose author or story no
// longer resolves are excluded by the inner joins.
func (r *CommentRepository) FindByStoryID(ctx context.Context, storyID uuid.UUID, filter CommentFilter) (Paginated[CommentWithAuthor], error) {
	op := commentsTable + ".findByStoryId"
	params := NormalizePage(filter.Page, filter.Limit, DefaultPageLimit)

	joins := ` FROM ` + commentsTable + ` c
		INNER JOIN ` + usersTable + ` u ON u.user_id = c.user_id
		INNER JOIN ` + storiesTable + ` s ON s.story_id = c.story_id`

	builder := &QueryBuilder{}
	predicate := CombineAnd(
		builder.Exact("c.story_id", storyID),
		builder.TextSearch(filter.Search, "c.content", "u.nickname"),
	)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*)"+joins+WhereClause(predicate), builder.Args()...).Scan(&total); err != nil {
		return Paginated[CommentWithAuthor]{}, translateError(op, err)
	}

	queryString := `SELECT c.comment_id, c.story_id, c.user_id, c.content, c.anonymous, c.nickname, c.created_at,
			u.nickname AS author_nickname` +
		joins + WhereClause(predicate) + `
		ORDER BY c.created_at ASC
		LIMIT ` + strconv.Itoa(params.Limit) + ` OFFSET ` + strconv.Itoa(params.Offset())

	rows, err := r.pool.Query(ctx, queryString, builder.Args()...)
	if err != nil {
		return Paginated[CommentWithAuthor]{}, translateError(op, err)
	}
	comments, err := pgx.CollectRows(rows, pgx.RowToStructByName[CommentWithAuthor])
	if err != nil {
		return Paginated[CommentWithAuthor]{}, translateError(op, err)
	}
	return NewPaginated(comments, params, total), nil
}

// GetCommentCountsByStoryIDs returns the comment count for every requested
// story id. Stories without comments map to 0; no requested key is omitted.
func (r *CommentRepository) GetCommentCountsByStoryIDs(ctx context.Context, storyIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	op := commentsTable + ".getCommentCountsByStoryIds"
	counts := make(map[uuid.UUID]int, len(storyIDs))
	for _, storyID := range storyIDs {
		counts[storyID] = 0
	}
	if len(storyIDs) == 0 {
		return counts, nil
	}

	queryString := "SELECT story_id, COUNT(*) FROM " + commentsTable + " WHERE story_id = ANY($1) GROUP BY story_id"
	rows, err := r.pool.Query(ctx, queryString, storyIDs)
	if err != nil {
		return nil, translateError(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var storyID uuid.UUID
		var count int
		if err := rows.Scan(&storyID, &count); err != nil {
			return nil, translateError(op, err)
		}
		counts[storyID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(op, err)
	}
	return counts, nil
}

// Delete removes a comment when the caller owns it. Returns false without an
// error when the comment is absent or owned by someone else.
func (r *CommentRepository) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	op := commentsTable + ".delete"
	tag, err := r.pool.Exec(ctx, "DELETE FROM "+commentsTable+" WHERE comment_id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return false, translateError(op, err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetCommentStats aggregates comment counts; not a transactional snapshot.
func (r *CommentRepository) GetCommentStats(ctx context.Context) (*schemas.CommentStatsDTO, error) {
	op := commentsTable + ".getCommentStats"
	stats := &schemas.CommentStatsDTO{}
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

	count(&stats.TotalComments, "SELECT COUNT(*) FROM "+commentsTable)
	count(&stats.CommentsToday, "SELECT COUNT(*) FROM "+commentsTable+" WHERE created_at >= $1", startOfToday)

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
