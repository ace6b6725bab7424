package repositories

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"spilled-server/internal/interfaces"
	"spilled-server/internal/schemas"
)

const guysTable = "spilled_schema.guys"

var guyColumns = []string{
	"guy_id", "name", "phone", "socials", "location", "age",
	"created_by_user_id", "created_at",
}

// CreateGuyParams carries the fields of a new guy profile.
type CreateGuyParams struct {
	Name            string
	Phone           *string
	Socials         *string
	Location        *string
	Age             *int
	CreatedByUserID uuid.UUID
}

// GuySearchFilter narrows SearchGuys and FindWithStoryCounts.
type GuySearchFilter struct {
	Search string
	Page   int
	Limit  int
}

// GuyWithStoryCount is a guy row joined with the number of stories about it.
type GuyWithStoryCount struct {
	schemas.Guy
	StoryCount int `db:"story_count"`
}

// GuyRepository persists guy profiles and their story aggregates.
type GuyRepository struct {
	base  *BaseRepository[schemas.Guy]
	users *UserRepository
	pool  interfaces.PgxPoolIface
}

func NewGuyRepository(pool interfaces.PgxPoolIface, users *UserRepository) *GuyRepository {
	return &GuyRepository{
		base:  NewBaseRepository[schemas.Guy](pool, guysTable, "guy_id", guyColumns),
		users: users,
		pool:  pool,
	}
}

// Create inserts a guy profile. The age bounds are inclusive on both ends
// and the creating user must exist.
func (r *GuyRepository) Create(ctx context.Context, params CreateGuyParams) (*schemas.Guy, error) {
	if err := requireNonEmpty("name", params.Name); err != nil {
		return nil, err
	}
	if err := requireMaxLength("name", params.Name, 100); err != nil {
		return nil, err
	}
	if params.Age != nil && (*params.Age < 0 || *params.Age > 150) {
		return nil, validationError("age", "age must be between 0 and 150")
	}

	creator, err := r.users.FindByID(ctx, params.CreatedByUserID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, notFoundError(guysTable+".create", "creating user does not exist")
	}

	return r.base.Create(ctx,
		[]string{"guy_id", "name", "phone", "socials", "location", "age", "created_by_user_id", "created_at"},
		[]any{uuid.New(), params.Name, params.Phone, params.Socials, params.Location, params.Age, params.CreatedByUserID, time.Now()},
	)
}

// FindByID returns the guy, or nil when absent.
func (r *GuyRepository) FindByID(ctx context.Context, id uuid.UUID) (*schemas.Guy, error) {
	return r.base.FindByID(ctx, id)
}

// SearchGuys matches the term case-insensitively against name, phone,
// location and socials, newest profiles first.
func (r *GuyRepository) SearchGuys(ctx context.Context, filter GuySearchFilter) (Paginated[schemas.Guy], error) {
	params := NormalizePage(filter.Page, filter.Limit, DefaultPageLimit)

	builder := &QueryBuilder{}
	predicate := builder.TextSearch(filter.Search, "name", "phone", "location", "socials")

	total, err := r.base.Count(ctx, predicate, builder.Args())
	if err != nil {
		return Paginated[schemas.Guy]{}, err
	}
	guys, err := r.base.FindMany(ctx, predicate, builder.Args(), "created_at DESC", params)
	if err != nil {
		return Paginated[schemas.Guy]{}, err
	}
	return NewPaginated(guys, params, total), nil
}

// FindWithStoryCounts lists guys together with the number of stories about
// each, including guys with none.
func (r *GuyRepository) FindWithStoryCounts(ctx context.Context, filter GuySearchFilter) (Paginated[GuyWithStoryCount], error) {
	op := guysTable + ".findWithStoryCounts"
	params := NormalizePage(filter.Page, filter.Limit, DefaultPageLimit)

	countBuilder := &QueryBuilder{}
	total, err := r.base.Count(ctx, countBuilder.TextSearch(filter.Search, "name", "phone", "location", "socials"), countBuilder.Args())
	if err != nil {
		return Paginated[GuyWithStoryCount]{}, err
	}

	builder := &QueryBuilder{}
	predicate := builder.TextSearch(filter.Search, "g.name", "g.phone", "g.location", "g.socials")

	queryString := `SELECT g.guy_id, g.name, g.phone, g.socials, g.location, g.age, g.created_by_user_id, g.created_at,
			COUNT(s.story_id) AS story_count
		FROM ` + guysTable + ` g
		LEFT JOIN ` + storiesTable + ` s ON s.guy_id = g.guy_id` +
		WhereClause(predicate) + `
		GROUP BY g.guy_id
		ORDER BY g.created_at DESC
		LIMIT ` + strconv.Itoa(params.Limit) + ` OFFSET ` + strconv.Itoa(params.Offset())

	rows, err := r.pool.Query(ctx, queryString, builder.Args()...)
	if err != nil {
		return Paginated[GuyWithStoryCount]{}, translateError(op, err)
	}
	guys, err := pgx.CollectRows(rows, pgx.RowToStructByName[GuyWithStoryCount])
	if err != nil {
		return Paginated[GuyWithStoryCount]{}, translateError(op, err)
	}
	return NewPaginated(guys, params, total), nil
}

// FindPopularGuys lists the guys with at least one story, most stories
// first. The limit is clamped to [1, 50].
func (r *GuyRepository) FindPopularGuys(ctx context.Context, limit int) ([]GuyWithStoryCount, error) {
	op := guysTable + ".findPopularGuys"
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}

	queryString := `SELECT g.guy_id, g.name, g.phone, g.socials, g.location, g.age, g.created_by_user_id, g.created_at,
			COUNT(s.story_id) AS story_count
		FROM ` + guysTable + ` g
		INNER JOIN ` + storiesTable + ` s ON s.guy_id = g.guy_id
		GROUP BY g.guy_id
		HAVING COUNT(s.story_id) >= 1
		ORDER BY story_count DESC
		LIMIT ` + strconv.Itoa(limit)

	rows, err := r.pool.Query(ctx, queryString)
	if err != nil {
		return nil, translateError(op, err)
	}
	guys, err := pgx.CollectRows(rows, pgx.RowToStructByName[GuyWithStoryCount])
	if err != nil {
		return nil, translateError(op, err)
	}
	return guys, nil
}

// DeleteWithStories removes a guy together with its stories and their
// comments in one transaction, so a failure partway leaves everything in
// place. Reports whether the guy row was removed.
func (r *GuyRepository) DeleteWithStories(ctx context.Context, id uuid.UUID) (bool, error) {
	op := guysTable + ".deleteWithStories"
	removed := false

	err := runInTransaction(ctx, r.pool, op, func(tx pgx.Tx) error {
		queryString := "DELETE FROM " + commentsTable + " WHERE story_id IN (SELECT story_id FROM " + storiesTable + " WHERE guy_id = $1)"
		if _, err := tx.Exec(ctx, queryString, id); err != nil {
			return translateError(op, err)
		}

		queryString = "DELETE FROM " + storiesTable + " WHERE guy_id = $1"
		if _, err := tx.Exec(ctx, queryString, id); err != nil {
			return translateError(op, err)
		}

		queryString = "DELETE FROM " + guysTable + " WHERE guy_id = $1"
		tag, err := tx.Exec(ctx, queryString, id)
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
