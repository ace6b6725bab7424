package schemas

import (
	"time"

	"github.com/google/uuid"
)

// ErrorDTO is a struct that represents an error response
// Error is the custom error, see CustomError
type ErrorDTO struct {
	Error CustomError `json:"error"`
}

// MetadataDTO is a struct that represents the version metadata of the API
type MetadataDTO struct {
	ApiVersion string `json:"apiVersion"`
	ApiName    string `json:"apiName"`
}

// UserDTO is a struct that represents a user response without sensitive fields
type UserDTO struct {
	ID                 uuid.UUID `json:"id"`
	Email              *string   `json:"email"`
	Phone              *string   `json:"phone"`
	Nickname           string    `json:"nickname"`
	Verified           bool      `json:"verified"`
	VerificationStatus string    `json:"verificationStatus"`
	CreatedAt          string    `json:"createdAt"`
}

// TokenPairDTO is a struct that represents a token response
// Token is the main JWT token used for auth
// RefreshToken is the refresh token used to get a new token
type TokenPairDTO struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// AuthorDTO is a struct that represents the author of a story or comment.
// For anonymous posts the nickname snapshot is replaced by "Anonymous".
type AuthorDTO struct {
	UserID   uuid.UUID `json:"userId"`
	Nickname string    `json:"nickname"`
}

// GuyDTO is a guy profile response, optionally carrying the story count
// when the query computed one.
type GuyDTO struct {
	GuyID      uuid.UUID `json:"guyId"`
	Name       string    `json:"name"`
	Phone      *string   `json:"phone"`
	Socials    *string   `json:"socials"`
	Location   *string   `json:"location"`
	Age        *int      `json:"age"`
	StoryCount *int      `json:"storyCount,omitempty"`
	CreatedAt  string    `json:"createdAt"`
}

// StoryDTO is a story response as it appears in the feed: the story itself,
// the guy it refers to, the author and the comment count.
type StoryDTO struct {
	StoryID      uuid.UUID `json:"storyId"`
	GuyID        uuid.UUID `json:"guyId"`
	GuyName      string    `json:"guyName"`
	Author       AuthorDTO `json:"author"`
	Content      string    `json:"content"`
	Tags         []string  `json:"tags"`
	ImageURL     *string   `json:"imageUrl"`
	Anonymous    bool      `json:"anonymous"`
	CommentCount int       `json:"commentCount"`
	CreationDate string    `json:"creationDate"`
}

// CommentDTO is a comment response.
type CommentDTO struct {
	CommentID    uuid.UUID `json:"commentId"`
	StoryID      uuid.UUID `json:"storyId"`
	Author       AuthorDTO `json:"author"`
	Content      string    `json:"content"`
	Anonymous    bool      `json:"anonymous"`
	CreationDate string    `json:"creationDate"`
}

// MessageDTO is a direct message response.
type MessageDTO struct {
	MessageID    uuid.UUID  `json:"messageId"`
	SenderID     uuid.UUID  `json:"senderId"`
	ReceiverID   uuid.UUID  `json:"receiverId"`
	Content      string     `json:"content"`
	ExpiresAt    *time.Time `json:"expiresAt"`
	CreationDate string     `json:"creationDate"`
}

// ConversationDTO is a per-conversation summary: the counterparty, the last
// active message between the pair, and the message counts. UnreadCount counts
// messages received from the counterparty; there is no read-receipt tracking.
type ConversationDTO struct {
	OtherUserID     uuid.UUID `json:"otherUserId"`
	OtherNickname   string    `json:"otherNickname"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime string    `json:"lastMessageTime"`
	LastMessageSent bool      `json:"lastMessageSent"` // True when the requesting user sent the last message.
	UnreadCount     int       `json:"unreadCount"`
	TotalMessages   int       `json:"totalMessages"`
}

// UserStatsDTO aggregates user counts for the admin dashboard.
type UserStatsDTO struct {
	TotalUsers    int `json:"totalUsers"`
	VerifiedUsers int `json:"verifiedUsers"`
	PendingUsers  int `json:"pendingUsers"`
	RejectedUsers int `json:"rejectedUsers"`
}

// StoryStatsDTO aggregates story counts.
type StoryStatsDTO struct {
	TotalStories int `json:"totalStories"`
	StoriesToday int `json:"storiesToday"`
	TotalGuys    int `json:"totalGuys"`
}

// CommentStatsDTO aggregates comment counts.
type CommentStatsDTO struct {
	TotalComments int `json:"totalComments"`
	CommentsToday int `json:"commentsToday"`
}

// MessageStatsDTO aggregates message counts. ActiveConversations counts
// distinct unordered sender/receiver pairs among active messages.
type MessageStatsDTO struct {
	TotalMessages           int     `json:"totalMessages"`
	MessagesToday           int     `json:"messagesToday"`
	ActiveConversations     int     `json:"activeConversations"`
	ExpiredMessages         int     `json:"expiredMessages"`
	AvgMessagesPerConversat float64 `json:"avgMessagesPerConversation"`
}

// CleanupResultDTO reports how many expired messages a cleanup run removed.
type CleanupResultDTO struct {
	DeletedCount int `json:"deletedCount"`
}

// PaginatedResponse is a struct that represents a paginated response
// Records is the records of the response
// Pagination is the pagination of the response
type PaginatedResponse struct {
	Records    interface{} `json:"records"`
	Pagination interface{} `json:"pagination"`
}

// Pagination is a struct that represents a pagination
// Page is the requested page, Limit the clamped page size and Records the
// total number of matching records.
type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Records int  `json:"records"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}
