package repositories

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spilled-server/internal/schemas"
)

func newCommentRepo(poolMock pgxmock.PgxPoolIface) *CommentRepository {
	users := NewUserRepository(poolMock)
	stories := NewStoryRepository(poolMock, users, NewGuyRepository(poolMock, users))
	return NewCommentRepository(poolMock, users, stories)
}

func testComment(storyID, userID uuid.UUID) schemas.Comment {
	return schemas.Comment{
		ID:        uuid.New(),
		StoryID:   storyID,
		UserID:    userID,
		Content:   "same thing happened to me",
		Anonymous: false,
		Nickname:  "alice",
		CreatedAt: time.Now().Add(-time.Minute),
	}
}

func commentRows(comments ...schemas.Comment) *pgxmock.Rows {
	rows := pgxmock.NewRows(commentColumns)
	for _, c := range comments {
		rows.AddRow(c.ID, c.StoryID, c.UserID, c.Content, c.Anonymous, c.Nickname, c.CreatedAt)
	}
	return rows
}

func TestCommentRepositoryCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("RejectsEmptyContent", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newCommentRepo(poolMock)

		_, err := repo.Create(ctx, CreateCommentParams{StoryID: uuid.New(), UserID: uuid.New(), Content: "  "})

		require.Error(t, err)
		assert.Equal(t, "content", FieldOf(err))
	})

	t.Run("RejectsOverlongContent", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newCommentRepo(poolMock)

		_, err := repo.Create(ctx, CreateCommentParams{StoryID: uuid.New(), UserID: uuid.New(), Content: strings.Repeat("x", 501)})

		require.Error(t, err)
		assert.Equal(t, "content", FieldOf(err))
	})

	t.Run("RequiresExistingStory", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newCommentRepo(poolMock)
		storyID := uuid.New()

		poolMock.ExpectQuery("FROM spilled_schema.stories WHERE story_id").
			WithArgs(storyID).
			WillReturnRows(storyRows())

		_, err := repo.Create(ctx, CreateCommentParams{StoryID: storyID, UserID: uuid.New(), Content: "oh no"})

		require.Error(t, err)
		assert.Equal(t, KindNotFound, KindOf(err))
		expectationsMet(t, poolMock)
	})

	t.Run("RequiresExistingAuthor", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newCommentRepo(poolMock)
		story := testStory(uuid.New(), uuid.New())
		userID := uuid.New()

		poolMock.ExpectQuery("FROM spilled_schema.stories WHERE story_id").
			WithArgs(story.ID).
			WillReturnRows(storyRows(story))
		poolMock.ExpectQuery("FROM spilled_schema.users WHERE user_id").
			WithArgs(userID).
			WillReturnRows(userRows())

		_, err := repo.Create(ctx, CreateCommentParams{StoryID: story.ID, UserID: userID, Content: "oh no"})

		require.Error(t, err)
		assert.Equal(t, KindNotFound, KindOf(err))
		expectationsMet(t, poolMock)
	})

	t.Run("SnapshotsAuthorNickname", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newCommentRepo(poolMock)
		story := testStory(uuid.New(), uuid.New())
		author := verifiedUser("carol")
		stored := testComment(story.ID, author.ID)
		stored.Nickname = author.Nickname

		poolMock.ExpectQuery("FROM spilled_schema.stories WHERE story_id").
			WithArgs(story.ID).
			WillReturnRows(storyRows(story))
		poolMock.ExpectQuery("FROM spilled_schema.users WHERE user_id").
			WithArgs(author.ID).
			WillReturnRows(userRows(author))
		poolMock.ExpectQuery("INSERT INTO spilled_schema.comments").
			WithArgs(pgxmock.AnyArg(), story.ID, author.ID, stored.Content, false, author.Nickname, pgxmock.AnyArg()).
			WillReturnRows(commentRows(stored))

		comment, err := repo.Create(ctx, CreateCommentParams{StoryID: story.ID, UserID: author.ID, Content: stored.Content})

		require.NoError(t, err)
		assert.Equal(t, author.Nickname, comment.Nickname)
		expectationsMet(t, poolMock)
	})
}

func TestFindByStoryID(t *testing.T) {
	ctx := context.Background()
	poolMock := newMockPool(t)
	repo := newCommentRepo(poolMock)
	storyID := uuid.New()
	stored := testComment(storyID, uuid.New())

	rows := pgxmock.NewRows(append(append([]string{}, commentColumns...), "author_nickname")).
		AddRow(stored.ID, stored.StoryID, stored.UserID, stored.Content, stored.Anonymous, stored.Nickname, stored.CreatedAt, "alice")

	poolMock.ExpectQuery("SELECT COUNT").
		WithArgs(storyID, "%same%").
		WillReturnRows(countRows(1))
	poolMock.ExpectQuery("ORDER BY c.created_at ASC").
		WithArgs(storyID, "%same%").
		WillReturnRows(rows)

	page, err := repo.FindByStoryID(ctx, storyID, CommentFilter{Search: "same"})

	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "alice", page.Records[0].AuthorNickname)
	assert.Equal(t, 1, page.Pagination.Records)
	expectationsMet(t, poolMock)
}

func TestGetCommentCountsByStoryIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyInputSkipsTheDatabase", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newCommentRepo(poolMock)

		counts, err := repo.GetCommentCountsByStoryIDs(ctx, nil)

		require.NoError(t, err)
		assert.Empty(t, counts)
		expectationsMet(t, poolMock)
	})

	t.Run("StoriesWithoutCommentsMapToZero", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newCommentRepo(poolMock)
		withComments := uuid.New()
		without := uuid.New()
		ids := []uuid.UUID{withComments, without}

		rows := pgxmock.NewRows([]string{"story_id", "count"}).AddRow(withComments, 3)
		poolMock.ExpectQuery("GROUP BY story_id").
			WithArgs(ids).
			WillReturnRows(rows)

		counts, err := repo.GetCommentCountsByStoryIDs(ctx, ids)

		require.NoError(t, err)
		assert.Equal(t, 3, counts[withComments])
		assert.Equal(t, 0, counts[without])
		expectationsMet(t, poolMock)
	})
}

func TestCommentDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("RemovesOwnComment", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newCommentRepo(poolMock)
		commentID, userID := uuid.New(), uuid.New()

		poolMock.ExpectExec("DELETE FROM spilled_schema.comments WHERE comment_id").
			WithArgs(commentID, userID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		removed, err := repo.Delete(ctx, commentID, userID)

		require.NoError(t, err)
		assert.True(t, removed)
		expectationsMet(t, poolMock)
	})

	t.Run("ReportsFalseForSomeoneElsesComment", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newCommentRepo(poolMock)
		commentID, userID := uuid.New(), uuid.New()

		poolMock.ExpectExec("DELETE FROM spilled_schema.comments WHERE comment_id").
			WithArgs(commentID, userID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		removed, err := repo.Delete(ctx, commentID, userID)

		require.NoError(t, err)
		assert.False(t, removed)
		expectationsMet(t, poolMock)
	})
}

func TestGetCommentStats(t *testing.T) {
	ctx := context.Background()
	poolMock := newMockPool(t)
	poolMock.MatchExpectationsInOrder(false)
	repo := newCommentRepo(poolMock)

	poolMock.ExpectQuery(`FROM spilled_schema.comments$`).
		WillReturnRows(countRows(25))
	poolMock.ExpectQuery("WHERE created_at").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(countRows(5))

	stats, err := repo.GetCommentStats(ctx)

	require.NoError(t, err)
	assert.Equal(t, 25, stats.TotalComments)
	assert.Equal(t, 5, stats.CommentsToday)
	expectationsMet(t, poolMock)
}
