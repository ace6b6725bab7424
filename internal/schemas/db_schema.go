// Package schemas defines the data structures
package schemas

import (
	"time"

	"github.com/google/uuid"
)

// Verification workflow states for a user. A user may only create stories
// once the workflow reaches VerificationApproved.
const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

// Accepted identity document types for the verification workflow.
const (
	IDTypeSchoolID   = "school_id"
	IDTypeNationalID = "national_id"
)

// Story tag values.
const (
	TagRedFlag   = "red_flag"
	TagGoodVibes = "good_vibes"
	TagUnsure    = "unsure"
)

// User represents the data model for a user in the system.
type User struct {
	ID                 uuid.UUID  `db:"user_id" json:"id"`
	Email              *string    `db:"email" json:"email"`                            // Optional, unique when set.
	Phone              *string    `db:"phone" json:"phone"`                            // Optional, unique when set.
	Nickname           string     `db:"nickname" json:"nickname"`                      // Display name of the user.
	Password           string     `db:"password" json:"-"`                             // Password hash of the user.
	Verified           bool       `db:"verified" json:"verified"`                      // Derived: true iff status is approved.
	VerificationStatus string     `db:"verification_status" json:"verificationStatus"` // pending, approved or rejected.
	IDImageURL         *string    `db:"id_image_url" json:"idImageUrl"`                // Uploaded identity document.
	IDType             *string    `db:"id_type" json:"idType"`                         // school_id or national_id.
	RejectionReason    *string    `db:"rejection_reason" json:"rejectionReason"`       // Set only when rejected.
	VerifiedAt         *time.Time `db:"verified_at" json:"verifiedAt"`                 // Set only when approved.
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
}

// Guy represents a profile of a third party being discussed.
type Guy struct {
	ID              uuid.UUID `db:"guy_id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Phone           *string   `db:"phone" json:"phone"`
	Socials         *string   `db:"socials" json:"socials"`
	Location        *string   `db:"location" json:"location"`
	Age             *int      `db:"age" json:"age"` // Must lie in [0, 150] when set.
	CreatedByUserID uuid.UUID `db:"created_by_user_id" json:"createdByUserId"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

// Story is a post about a guy. Deleting a story cascades to its comments.
type Story struct {
	ID        uuid.UUID `db:"story_id" json:"id"`
	GuyID     uuid.UUID `db:"guy_id" json:"guyId"`
	UserID    uuid.UUID `db:"user_id" json:"userId"`
	Content   string    `db:"content" json:"content"` // At most 1000 characters, non-empty.
	Tags      []string  `db:"tags" json:"tags"`
	ImageURL  *string   `db:"image_url" json:"imageUrl"`
	Anonymous bool      `db:"anonymous" json:"anonymous"`
	Nickname  string    `db:"nickname" json:"nickname"` // Author nickname snapshot at posting time.
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Comment is attached to a story.
type Comment struct {
	ID        uuid.UUID `db:"comment_id" json:"id"`
	StoryID   uuid.UUID `db:"story_id" json:"storyId"`
	UserID    uuid.UUID `db:"user_id" json:"userId"`
	Content   string    `db:"content" json:"content"` // At most 500 characters, non-empty.
	Anonymous bool      `db:"anonymous" json:"anonymous"`
	Nickname  string    `db:"nickname" json:"nickname"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Message is a direct message between two users. A message is active iff
// ExpiresAt is null or in the future; expired messages are excluded from
// reads and removed by the periodic cleanup.
type Message struct {
	ID         uuid.UUID  `db:"message_id" json:"id"`
	SenderID   uuid.UUID  `db:"sender_id" json:"senderId"`
	ReceiverID uuid.UUID  `db:"receiver_id" json:"receiverId"`
	Content    string     `db:"content" json:"content"` // At most 1000 characters, non-empty.
	ExpiresAt  *time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}
