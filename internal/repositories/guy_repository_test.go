package repositories

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuyRepo(poolMock pgxmock.PgxPoolIface) *GuyRepository {
	return NewGuyRepository(poolMock, NewUserRepository(poolMock))
}

func TestGuyRepositoryCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("RejectsEmptyName", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newGuyRepo(poolMock)

		_, err := repo.Create(ctx, CreateGuyParams{Name: "  ", CreatedByUserID: uuid.New()})

		require.Error(t, err)
		assert.Equal(t, "name", FieldOf(err))
	})

	t.Run("RejectsOverlongName", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newGuyRepo(poolMock)

		_, err := repo.Create(ctx, CreateGuyParams{Name: strings.Repeat("x", 101), CreatedByUserID: uuid.New()})

		require.Error(t, err)
		assert.Equal(t, "name", FieldOf(err))
	})

	t.Run("AgeBoundsAreInclusive", func(t *testing.T) {
		for _, age := range []int{-1, 151} {
			poolMock := newMockPool(t)
			repo := newGuyRepo(poolMock)
			badAge := age

			_, err := repo.Create(ctx, CreateGuyParams{Name: "Max", Age: &badAge, CreatedByUserID: uuid.New()})

			require.Error(t, err)
			assert.Equal(t, "age", FieldOf(err))
		}
	})

	t.Run("RequiresExistingCreator", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newGuyRepo(poolMock)
		creatorID := uuid.New()

		poolMock.ExpectQuery("FROM spilled_schema.users WHERE user_id").
			WithArgs(creatorID).
			WillReturnRows(userRows())

		_, err := repo.Create(ctx, CreateGuyParams{Name: "Max", CreatedByUserID: creatorID})

		require.Error(t, err)
		assert.Equal(t, KindNotFound, KindOf(err))
		expectationsMet(t, poolMock)
	})

	t.Run("InsertsGuy", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newGuyRepo(poolMock)
		creator := verifiedUser("alice")
		age := 150
		stored := testGuy("Max")
		stored.Age = &age
		stored.CreatedByUserID = creator.ID

		poolMock.ExpectQuery("FROM spilled_schema.users WHERE user_id").
			WithArgs(creator.ID).
			WillReturnRows(userRows(creator))
		poolMock.ExpectQuery("INSERT INTO spilled_schema.guys").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(guyRows(stored))

		guy, err := repo.Create(ctx, CreateGuyParams{Name: "Max", Age: &age, CreatedByUserID: creator.ID})

		require.NoError(t, err)
		assert.Equal(t, "Max", guy.Name)
		assert.Equal(t, creator.ID, guy.CreatedByUserID)
		expectationsMet(t, poolMock)
	})
}

func TestSearchGuys(t *testing.T) {
	ctx := context.Background()
	poolMock := newMockPool(t)
	repo := newGuyRepo(poolMock)
	stored := testGuy("Max Mustermann")

	poolMock.ExpectQuery("SELECT COUNT").
		WithArgs("%max%").
		WillReturnRows(countRows(1))
	poolMock.ExpectQuery("FROM spilled_schema.guys WHERE").
		WithArgs("%max%").
		WillReturnRows(guyRows(stored))

	page, err := repo.SearchGuys(ctx, GuySearchFilter{Search: "max"})

	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "Max Mustermann", page.Records[0].Name)
	assert.Equal(t, 1, page.Pagination.Records)
	expectationsMet(t, poolMock)
}

func TestFindWithStoryCounts(t *testing.T) {
	ctx := context.Background()
	poolMock := newMockPool(t)
	repo := newGuyRepo(poolMock)
	quiet := testGuy("Quiet Guy")
	busy := testGuy("Busy Guy")

	rows := pgxmock.NewRows(append(append([]string{}, guyColumns...), "story_count")).
		AddRow(busy.ID, busy.Name, busy.Phone, busy.Socials, busy.Location, busy.Age, busy.CreatedByUserID, busy.CreatedAt, 7).
		AddRow(quiet.ID, quiet.Name, quiet.Phone, quiet.Socials, quiet.Location, quiet.Age, quiet.CreatedByUserID, quiet.CreatedAt, 0)

	poolMock.ExpectQuery("SELECT COUNT").
		WillReturnRows(countRows(2))
	poolMock.ExpectQuery("LEFT JOIN spilled_schema.stories").
		WillReturnRows(rows)

	page, err := repo.FindWithStoryCounts(ctx, GuySearchFilter{})

	require.NoError(t, err)
	require.Len(t, page.Records, 2)
	assert.Equal(t, 7, page.Records[0].StoryCount)
	assert.Equal(t, 0, page.Records[1].StoryCount)
	expectationsMet(t, poolMock)
}

func TestFindPopularGuys(t *testing.T) {
	ctx := context.Background()

	t.Run("ClampsLimit", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newGuyRepo(poolMock)

		poolMock.ExpectQuery("LIMIT 50").
			WillReturnRows(pgxmock.NewRows(append(append([]string{}, guyColumns...), "story_count")))

		_, err := repo.FindPopularGuys(ctx, 500)

		require.NoError(t, err)
		expectationsMet(t, poolMock)
	})

	t.Run("ReturnsGuysWithCounts", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newGuyRepo(poolMock)
		busy := testGuy("Busy Guy")

		rows := pgxmock.NewRows(append(append([]string{}, guyColumns...), "story_count")).
			AddRow(busy.ID, busy.Name, busy.Phone, busy.Socials, busy.Location, busy.Age, busy.CreatedByUserID, busy.CreatedAt, 3)

		poolMock.ExpectQuery("INNER JOIN spilled_schema.stories").
			WillReturnRows(rows)

		guys, err := repo.FindPopularGuys(ctx, 10)

		require.NoError(t, err)
		require.Len(t, guys, 1)
		assert.Equal(t, 3, guys[0].StoryCount)
		expectationsMet(t, poolMock)
	})
}

func TestDeleteWithStories(t *testing.T) {
	ctx := context.Background()

	t.Run("DeletesCommentsStoriesAndGuyInOneTransaction", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newGuyRepo(poolMock)
		guyID := uuid.New()

		poolMock.ExpectBegin()
		poolMock.ExpectExec("DELETE FROM spilled_schema.comments WHERE story_id IN").
			WithArgs(guyID).
			WillReturnResult(pgxmock.NewResult("DELETE", 4))
		poolMock.ExpectExec("DELETE FROM spilled_schema.stories WHERE guy_id").
			WithArgs(guyID).
			WillReturnResult(pgxmock.NewResult("DELETE", 2))
		poolMock.ExpectExec("DELETE FROM spilled_schema.guys WHERE guy_id").
			WithArgs(guyID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		poolMock.ExpectCommit()

		removed, err := repo.DeleteWithStories(ctx, guyID)

		require.NoError(t, err)
		assert.True(t, removed)
		expectationsMet(t, poolMock)
	})

	t.Run("RollsBackWhenAStepFails", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newGuyRepo(poolMock)
		guyID := uuid.New()

		poolMock.ExpectBegin()
		poolMock.ExpectExec("DELETE FROM spilled_schema.comments WHERE story_id IN").
			WithArgs(guyID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		poolMock.ExpectExec("DELETE FROM spilled_schema.stories WHERE guy_id").
			WithArgs(guyID).
			WillReturnError(assert.AnError)
		poolMock.ExpectRollback()

		removed, err := repo.DeleteWithStories(ctx, guyID)

		require.Error(t, err)
		assert.False(t, removed)
		expectationsMet(t, poolMock)
	})

	t.Run("ReportsFalseWhenGuyAbsent", func(t *testing.T) {
		poolMock := newMockPool(t)
		repo := newGuyRepo(poolMock)
		guyID := uuid.New()

		poolMock.ExpectBegin()
		poolMock.ExpectExec("DELETE FROM spilled_schema.comments WHERE story_id IN").
			WithArgs(guyID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		poolMock.ExpectExec("DELETE FROM spilled_schema.stories WHERE guy_id").
			WithArgs(guyID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		poolMock.ExpectExec("DELETE FROM spilled_schema.guys WHERE guy_id").
			WithArgs(guyID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		poolMock.ExpectCommit()

		removed, err := repo.DeleteWithStories(ctx, guyID)

		require.NoError(t, err)
		assert.False(t, removed)
		expectationsMet(t, poolMock)
	})
}
