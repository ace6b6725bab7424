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

const storiesTable = "spilled_schema.stories"

var storyColumns = []string{
	"story_id", "guy_id", "user_id", "content", "tags", "image_url",
	"anonymous", "nickname", "created_at",
}

var validTags = map[string]bool{
	schemas.TagRedFlag:   true,
	schemas.TagGoodVibes: true,
	schemas.TagUnsure:    true,
}

// CreateStoryParams carries the fields of a new story.
type CreateStoryParams struct {
	GuyID     uuid.UUID
	UserID    uuid.UUID
	Content   string
	Tags      []string
	ImageURL  *string
	Anonymous bool
}

// StoryFeedFilter narrows FetchStoriesFeed. Search matches story content,
// guy name and author nickname; Tag restricts to stories carrying the tag;
// the remaining fields are exact or range constraints. SortAscending flips
// the default newest-first order.
type StoryFeedFilter struct {
	Search        string
	Tag           string
	GuyID         *uuid.UUID
	UserID        *uuid.UUID
	From          *time.Time
	To            *time.Time
	SortAscending bool
	Page          int
	Limit         int
}

// StoryFeedItem is a story row joined with its guy name, author nickname and
// comment count, as shown in the feed.
type StoryFeedItem struct {
	schemas.Story
	GuyName        string `db:"guy_name"`
	AuthorNickname string `db:"author_nickname"`
	CommentCount   int    `db:"comment_count"`
}

// StoryRepository persists stories and serves the feed queries.
type StoryRepository struct {
	base  *BaseRepository[schemas.Story]
	users *UserRepository
	guys  *GuyRepository
	pool  interfaces.PgxPoolIface
}

func NewStoryRepository(pool interfaces.PgxPoolIface, users *UserRepository, guys *GuyRepository) *StoryRepository {
	return &StoryRepository{
		base:  NewBaseRepository[schemas.Story](pool, storiesTable, "story_id", storyColumns),
		users: users,
		guys:  guys,
		pool:  pool,
	}
}

// Create inserts a story. The guy and the author must exist, the author
// must have passed verification, and the author's nickname is snapshotted
// onto the story.
func (r *StoryRepository) Create(ctx context.Context, params CreateStoryParams) (*schemas.Story, error) {
	op := storiesTable + ".create"
	if err := requireNonEmpty("content", params.Content); err != nil {
		return nil, err
	}
	if err := requireMaxLength("content", params.Content, 1000); err != nil {
		return nil, err
	}
	for _, tag := range params.Tags {
		if !validTags[tag] {
			return nil, validationError("tags", "unknown tag "+tag)
		}
	}

	guy, err := r.guys.FindByID(ctx, params.GuyID)
	if err != nil {
		return nil, err
	}
	if guy == nil {
		return nil, notFoundError(op, "guy does not exist")
	}

	author, err := r.users.FindByID(ctx, params.UserID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, notFoundError(op, "author does not exist")
	}
	if !author.Verified {
		return nil, validationError("userId", "author has not passed verification")
	}

	tags := params.Tags
	if tags == nil {
		tags = []string{}
	}
	return r.base.Create(ctx,
		[]string{"story_id", "guy_id", "user_id", "content", "tags", "image_url", "anonymous", "nickname", "created_at"},
		[]any{uuid.New(), params.GuyID, params.UserID, params.Content, tags, params.ImageURL, params.Anonymous, author.Nickname, time.Now()},
	)
}

// FindByID returns the story, or nil when absent.
func (r *StoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*schemas.Story, error) {
	return r.base.FindByID(ctx, id)
}

const storyFeedJoins = ` FROM ` + storiesTable + ` s
	INNER JOIN ` + guysTable + ` g ON g.guy_id = s.guy_id
	INNER JOIN ` + usersTable + ` u ON u.user_id = s.user_id`

// FetchStoriesFeed is the primary read path. Stories whose guy or author no
// longer resolves are excluded by the inner joins; each story carries its
// comment count via a correlated subquery, and the page is accompanied by
// the total match count.
func (r *StoryRepository) FetchStoriesFeed(ctx context.Context, filter StoryFeedFilter) (Paginated[StoryFeedItem], error) {
	op := storiesTable + ".fetchStoriesFeed"
	params := NormalizePage(filter.Page, filter.Limit, DefaultPageLimit)

	builder := &QueryBuilder{}
	fragments := []string{
		builder.TextSearch(filter.Search, "s.content", "g.name", "u.nickname"),
		builder.TagContains("s.tags", filter.Tag),
	}
	if filter.GuyID != nil {
		fragments = append(fragments, builder.Exact("s.guy_id", *filter.GuyID))
	}
	if filter.UserID != nil {
		fragments = append(fragments, builder.Exact("s.user_id", *filter.UserID))
	}
	fragments = append(fragments, builder.DateRange("s.created_at", filter.From, filter.To))
	predicate := CombineAnd(fragments...)

	countQueryString := "SELECT COUNT(*)" + storyFeedJoins + WhereClause(predicate)
	var total int
	if err := r.pool.QueryRow(ctx, countQueryString, builder.Args()...).Scan(&total); err != nil {
		return Paginated[StoryFeedItem]{}, translateError(op, err)
	}

	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}
	dataQueryString := `SELECT s.story_id, s.guy_id, s.user_id, s.content, s.tags, s.image_url, s.anonymous, s.nickname, s.created_at,
			g.name AS guy_name, u.nickname AS author_nickname,
			(SELECT COUNT(*) FROM ` + commentsTable + ` c WHERE c.story_id = s.story_id) AS comment_count` +
		storyFeedJoins + WhereClause(predicate) + `
		ORDER BY s.created_at ` + direction + `
		LIMIT ` + strconv.Itoa(params.Limit) + ` OFFSET ` + strconv.Itoa(params.Offset())

	rows, err := r.pool.Query(ctx, dataQueryString, builder.Args()...)
	if err != nil {
		return Paginated[StoryFeedItem]{}, translateError(op, err)
	}
	stories, err := pgx.CollectRows(rows, pgx.RowToStructByName[StoryFeedItem])
	if err != nil {
		return Paginated[StoryFeedItem]{}, translateError(op, err)
	}
	return NewPaginated(stories, params, total), nil
}

// GetTrendingStories lists the stories of the last seven days with the most
// comments first. The limit is clamped to [1, 50].
func (r *StoryRepository) GetTrendingStories(ctx context.Context, limit int) ([]StoryFeedItem, error) {
	op := storiesTable + ".getTrendingStories"
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}

	queryString := `SELECT s.story_id, s.guy_id, s.user_id, s.content, s.tags, s.image_url, s.anonymous, s.nickname, s.created_at,
			g.name AS guy_name, u.nickname AS author_nickname,
			(SELECT COUNT(*) FROM ` + commentsTable + ` c WHERE c.story_id = s.story_id) AS comment_count` +
		storyFeedJoins + `
		WHERE s.created_at >= $1
		ORDER BY comment_count DESC, s.created_at DESC
		LIMIT ` + strconv.Itoa(limit)

	rows, err := r.pool.Query(ctx, queryString, time.Now().AddDate(0, 0, -7))
	if err != nil {
		return nil, translateError(op, err)
	}
	stories, err := pgx.CollectRows(rows, pgx.RowToStructByName[StoryFeedItem])
	if err != nil {
		return nil, translateError(op, err)
	}
	return stories, nil
}

// DeleteWithComments removes a story and its comments in one transaction.
// Reports whether the story row was removed.
func (r *StoryRepository) DeleteWithComments(ctx context.Context, id uuid.UUID) (bool, error) {
	op := storiesTable + ".deleteWithComments"
	removed := false

	err := runInTransaction(ctx, r.pool, op, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM "+commentsTable+" WHERE story_id = $1", id); err != nil {
			return translateError(op, err)
		}
		tag, err := tx.Exec(ctx, "DELETE FROM "+storiesTable+" WHERE story_id = $1", id)
		if err != nil {
			return translateError(op, err)
		}
		removed = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// BulkDelete removes a set of stories and their comments in one transaction
// and returns the number of stories removed.
func (r *StoryRepository) BulkDelete(ctx context.Context, ids []uuid.UUID) (int, error) {
	op := storiesTable + ".bulkDelete"
	if len(ids) == 0 {
		return 0, nil
	}
	deleted := 0

	err := runInTransaction(ctx, r.pool, op, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM "+commentsTable+" WHERE story_id = ANY($1)", ids); err != nil {
			return translateError(op, err)
		}
		tag, err := tx.Exec(ctx, "DELETE FROM "+storiesTable+" WHERE story_id = ANY($1)", ids)
		if err != nil {
			return translateError(op, err)
		}
		deleted = int(tag.RowsAffected())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// GetStoryStats aggregates story counts; the counts run concurrently and
// are not a transactional snapshot.
func (r *StoryRepository) GetStoryStats(ctx context.Context) (*schemas.StoryStatsDTO, error) {
	op := storiesTable + ".getStoryStats"
	stats := &schemas.StoryStatsDTO{}
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

	count(&stats.TotalStories, "SELECT COUNT(*) FROM "+storiesTable)
	count(&stats.StoriesToday, "SELECT COUNT(*) FROM "+storiesTable+" WHERE created_at >= $1", startOfToday)
	count(&stats.TotalGuys, "SELECT COUNT(*) FROM "+guysTable)

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
