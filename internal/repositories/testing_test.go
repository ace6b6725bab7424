package repositories

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"spilled-server/internal/schemas"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	poolMock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(poolMock.Close)
	return poolMock
}

func expectationsMet(t *testing.T, poolMock pgxmock.PgxPoolIface) {
	t.Helper()
	if err := poolMock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func testUser(nickname string) schemas.User {
	email := nickname + "@example.com"
	return schemas.User{
		ID:                 uuid.New(),
		Email:              &email,
		Nickname:           nickname,
		Password:           "$2a$10$hash",
		Verified:           false,
		VerificationStatus: schemas.VerificationPending,
		CreatedAt:          time.Now().Add(-time.Hour),
	}
}

func verifiedUser(nickname string) schemas.User {
	user := testUser(nickname)
	user.Verified = true
	user.VerificationStatus = schemas.VerificationApproved
	verifiedAt := time.Now().Add(-time.Minute)
	user.VerifiedAt = &verifiedAt
	return user
}

func userRows(users ...schemas.User) *pgxmock.Rows {
	rows := pgxmock.NewRows(userColumns)
	for _, u := range users {
		rows.AddRow(u.ID, u.Email, u.Phone, u.Nickname, u.Password, u.Verified,
			u.VerificationStatus, u.IDImageURL, u.IDType, u.RejectionReason, u.VerifiedAt, u.CreatedAt)
	}
	return rows
}

func testGuy(name string) schemas.Guy {
	return schemas.Guy{
		ID:              uuid.New(),
		Name:            name,
		CreatedByUserID: uuid.New(),
		CreatedAt:       time.Now().Add(-time.Hour),
	}
}

func guyRows(guys ...schemas.Guy) *pgxmock.Rows {
	rows := pgxmock.NewRows(guyColumns)
	for _, g := range guys {
		rows.AddRow(g.ID, g.Name, g.Phone, g.Socials, g.Location, g.Age, g.CreatedByUserID, g.CreatedAt)
	}
	return rows
}

func testStory(guyID, userID uuid.UUID) schemas.Story {
	return schemas.Story{
		ID:        uuid.New(),
		GuyID:     guyID,
		UserID:    userID,
		Content:   "he showed up two hours late and lied about it",
		Tags:      []string{schemas.TagRedFlag},
		Anonymous: false,
		Nickname:  "alice",
		CreatedAt: time.Now().Add(-time.Minute),
	}
}

func storyRows(stories ...schemas.Story) *pgxmock.Rows {
	rows := pgxmock.NewRows(storyColumns)
	for _, s := range stories {
		rows.AddRow(s.ID, s.GuyID, s.UserID, s.Content, s.Tags, s.ImageURL, s.Anonymous, s.Nickname, s.CreatedAt)
	}
	return rows
}

func testMessage(senderID, receiverID uuid.UUID) schemas.Message {
	expiresAt := time.Now().Add(DefaultMessageTTL)
	return schemas.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    "hey, did you also match with him?",
		ExpiresAt:  &expiresAt,
		CreatedAt:  time.Now().Add(-time.Minute),
	}
}

func messageRows(messages ...schemas.Message) *pgxmock.Rows {
	rows := pgxmock.NewRows(messageColumns)
	for _, m := range messages {
		rows.AddRow(m.ID, m.SenderID, m.ReceiverID, m.Content, m.ExpiresAt, m.CreatedAt)
	}
	return rows
}

func countRows(count int) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"count"}).AddRow(count)
}
