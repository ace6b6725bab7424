package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"spilled-server/internal/interfaces"
	"spilled-server/internal/schemas"
)

const usersTable = "spilled_schema.users"

var userColumns = []string{
	"user_id", "email", "phone", "nickname", "password", "verified",
	"verification_status", "id_image_url", "id_type", "rejection_reason",
	"verified_at", "created_at",
}

// CreateUserParams carries the fields of a new user. Either Email or Phone
// must be set; the password is the bcrypt hash, not the plaintext.
type CreateUserParams struct {
	Email        *string
	Phone        *string
	Nickname     string
	PasswordHash string
}

// UserSearchFilter narrows FindByVerificationStatus. Search matches
// case-insensitively against nickname, email and phone.
type UserSearchFilter struct {
	Search string
	Page   int
	Limit  int
}

// UserRepository persists users and drives the verification workflow.
type UserRepository struct {
	base *BaseRepository[schemas.User]
	pool interfaces.PgxPoolIface
}

func NewUserRepository(pool interfaces.PgxPoolIface) *UserRepository {
	return &UserRepository{
		base: NewBaseRepository[schemas.User](pool, usersTable, "user_id", userColumns),
		pool: pool,
	}
}

// Create inserts a new user in the pending verification state. Email and
// phone uniqueness is checked up front so the caller gets a field-level
// validation error; the unique constraints remain as the backstop against
// races.
func (r *UserRepository) Create(ctx context.Context, params CreateUserParams) (*schemas.User, error) {
	if params.Email == nil && params.Phone == nil {
		return nil, validationError("email", "either email or phone is required")
	}
	if err := requireNonEmpty("nickname", params.Nickname); err != nil {
		return nil, err
	}
	if params.Email != nil {
		if err := validateEmailFormat("email", *params.Email); err != nil {
			return nil, err
		}
		existing, err := r.FindByEmail(ctx, *params.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, validationError("email", "email is already registered")
		}
	}
	if params.Phone != nil {
		if err := validatePhoneFormat("phone", *params.Phone); err != nil {
			return nil, err
		}
		existing, err := r.FindByPhone(ctx, *params.Phone)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, validationError("phone", "phone is already registered")
		}
	}

	return r.base.Create(ctx,
		[]string{"user_id", "email", "phone", "nickname", "password", "verified", "verification_status", "created_at"},
		[]any{uuid.New(), params.Email, params.Phone, params.Nickname, params.PasswordHash, false, schemas.VerificationPending, time.Now()},
	)
}

// FindByID returns the user, or nil when absent.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*schemas.User, error) {
	return r.base.FindByID(ctx, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*schemas.User, error) {
	return r.findByColumn(ctx, "email", email)
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*schemas.User, error) {
	return r.findByColumn(ctx, "phone", phone)
}

func (r *UserRepository) findByColumn(ctx context.Context, column, value string) (*schemas.User, error) {
	builder := &QueryBuilder{}
	predicate := builder.Exact(column, value)
	users, err := r.base.FindMany(ctx, predicate, builder.Args(), "created_at ASC", PageParams{Page: 1, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// SubmitVerification attaches an identity document to the user and resets
// the workflow to pending, clearing any previous decision.
func (r *UserRepository) SubmitVerification(ctx context.Context, id uuid.UUID, idImageURL, idType string) (*schemas.User, error) {
	if err := requireNonEmpty("idImageUrl", idImageURL); err != nil {
		return nil, err
	}
	if idType != schemas.IDTypeSchoolID && idType != schemas.IDTypeNationalID {
		return nil, validationError("idType", "idType must be school_id or national_id")
	}
	return r.base.Update(ctx, id, map[string]any{
		"id_image_url":        idImageURL,
		"id_type":             idType,
		"verification_status": schemas.VerificationPending,
		"verified":            false,
		"verified_at":         nil,
		"rejection_reason":    nil,
	})
}

// UpdateVerificationStatus applies an admin decision in one atomic update.
// The derived columns follow the workflow invariant: verified and verifiedAt
// are set only on approval, rejectionReason only on rejection. Returns nil
// when no user matched.
func (r *UserRepository) UpdateVerificationStatus(ctx context.Context, id uuid.UUID, status, reason string) (*schemas.User, error) {
	patch, err := verificationPatch(status, reason)
	if err != nil {
		return nil, err
	}
	return r.base.Update(ctx, id, patch)
}

// BulkUpdateVerificationStatus applies one decision to a set of users in a
// single statement and returns the number of users updated.
func (r *UserRepository) BulkUpdateVerificationStatus(ctx context.Context, ids []uuid.UUID, status, reason string) (int, error) {
	op := usersTable + ".bulkUpdateVerificationStatus"
	if len(ids) == 0 {
		return 0, nil
	}
	patch, err := verificationPatch(status, reason)
	if err != nil {
		return 0, err
	}

	builder := &QueryBuilder{}
	queryString := "UPDATE " + usersTable + " SET " +
		"verification_status = " + builder.Bind(patch["verification_status"]) +
		", verified = " + builder.Bind(patch["verified"]) +
		", verified_at = " + builder.Bind(patch["verified_at"]) +
		", rejection_reason = " + builder.Bind(patch["rejection_reason"]) +
		" WHERE user_id = ANY(" + builder.Bind(ids) + ")"

	tag, err := r.pool.Exec(ctx, queryString, builder.Args()...)
	if err != nil {
		return 0, translateError(op, err)
	}
	return int(tag.RowsAffected()), nil
}

func verificationPatch(status, reason string) (map[string]any, error) {
	patch := map[string]any{
		"verification_status": status,
		"verified":            false,
		"verified_at":         nil,
		"rejection_reason":    nil,
	}
	switch status {
	case schemas.VerificationApproved:
		patch["verified"] = true
		patch["verified_at"] = time.Now()
	case schemas.VerificationRejected:
		if reason == "" {
			return nil, validationError("reason", "a reason is required when rejecting")
		}
		patch["rejection_reason"] = reason
	case schemas.VerificationPending:
	default:
		return nil, validationError("status", "status must be pending, approved or rejected")
	}
	return patch, nil
}

// FindByVerificationStatus lists users in one workflow state, optionally
// filtered by a text search, ordered oldest first so reviewers work through
// the queue in submission order.
func (r *UserRepository) FindByVerificationStatus(ctx context.Context, status string, filter UserSearchFilter) (Paginated[schemas.User], error) {
	params := NormalizePage(filter.Page, filter.Limit, DefaultPageLimit)

	builder := &QueryBuilder{}
	predicate := CombineAnd(
		builder.Exact("verification_status", status),
		builder.TextSearch(filter.Search, "nickname", "email", "phone"),
	)

	total, err := r.base.Count(ctx, predicate, builder.Args())
	if err != nil {
		return Paginated[schemas.User]{}, err
	}
	users, err := r.base.FindMany(ctx, predicate, builder.Args(), "created_at ASC", params)
	if err != nil {
		return Paginated[schemas.User]{}, err
	}
	return NewPaginated(users, params, total), nil
}

// GetUserStats aggregates user counts. The counts run concurrently against
// the pool and are not a transactional snapshot; the numbers feed a
// dashboard, not correctness-critical logic.
func (r *UserRepository) GetUserStats(ctx context.Context) (*schemas.UserStatsDTO, error) {
	op := usersTable + ".getUserStats"
	stats := &schemas.UserStatsDTO{}

	group, groupCtx := errgroup.WithContext(ctx)
	count := func(target *int, queryString string, args ...any) {
		group.Go(func() error {
			if err := r.pool.QueryRow(groupCtx, queryString, args...).Scan(target); err != nil {
				return translateError(op, err)
			}
			return nil
		})
	}

	count(&stats.TotalUsers, "SELECT COUNT(*) FROM "+usersTable)
	count(&stats.VerifiedUsers, "SELECT COUNT(*) FROM "+usersTable+" WHERE verification_status = $1", schemas.VerificationApproved)
	count(&stats.PendingUsers, "SELECT COUNT(*) FROM "+usersTable+" WHERE verification_status = $1", schemas.VerificationPending)
	count(&stats.RejectedUsers, "SELECT COUNT(*) FROM "+usersTable+" WHERE verification_status = $1", schemas.VerificationRejected)

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
