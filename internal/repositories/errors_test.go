package repositories

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslateError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{"UniqueViolation", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}, KindDuplicate},
		{"ForeignKeyViolation", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "stories_guy_id_fkey"}, KindForeignKey},
		{"NotNullViolation", &pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "nickname"}, KindValidation},
		{"CheckViolation", &pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "guys_age_check"}, KindValidation},
		{"UnknownPgError", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, KindInternal},
		{"PlainError", errors.New("connection reset"), KindInternal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			translated := translateError("users.create", tc.err)

			assert.Equal(t, tc.expected, translated.Kind)
			assert.Equal(t, "users.create", translated.Op)
			assert.ErrorIs(t, translated, tc.err)
		})
	}
}

func TestTranslateErrorKeepsColumnForNotNull(t *testing.T) {
	translated := translateError("op", &pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "content"})

	assert.Equal(t, "content", translated.Field)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(validationError("age", "out of range")))
	assert.Equal(t, KindNotFound, KindOf(notFoundError("guys.create", "creator not found")))
	assert.Equal(t, KindInternal, KindOf(errors.New("not a repository error")))
}

func TestFieldOf(t *testing.T) {
	assert.Equal(t, "age", FieldOf(validationError("age", "out of range")))
	assert.Equal(t, "", FieldOf(errors.New("not a repository error")))
}

func TestErrorMessageFormat(t *testing.T) {
	withOp := notFoundError("stories.create", "guy not found")
	assert.Equal(t, "stories.create: guy not found", withOp.Error())

	withoutOp := validationError("content", "content must not be empty")
	assert.Equal(t, "content must not be empty", withoutOp.Error())

	cause := errors.New("boom")
	wrapped := translateError("users.count", cause)
	assert.Contains(t, wrapped.Error(), "users.count")
	assert.Contains(t, wrapped.Error(), "boom")
}
