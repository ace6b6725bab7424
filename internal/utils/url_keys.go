package utils

const (
	// UserIdKey is the key for user ID used in routing parameters.
	UserIdKey = "userId"

	// GuyIdKey is the key for guy ID used in routing parameters.
	GuyIdKey = "guyId"

	// StoryIdKey is the key for story ID used in routing parameters.
	StoryIdKey = "storyId"

	// CommentIdKey is the key for comment ID used in routing parameters.
	CommentIdKey = "commentId"

	// MessageIdKey is the key for message ID used in routing parameters.
	MessageIdKey = "messageId"

	// PageParamKey is the key for page used in pagination query parameters.
	PageParamKey = "page"

	// LimitParamKey is the key for limit used in pagination query parameters.
	LimitParamKey = "limit"

	// QueryParamKey is the key for a generic search query used in query parameters.
	QueryParamKey = "q"

	// StatusParamKey is the key for verification status used in query parameters.
	StatusParamKey = "status"

	// CountsParamKey is the key that toggles story counts on guy listings.
	CountsParamKey = "counts"

	// TagParamKey is the key for story tag used in query parameters.
	TagParamKey = "tag"

	// SortParamKey is the key for sort direction used in query parameters.
	SortParamKey = "sort"

	// IncludeExpiredParamKey is the key for including expired messages in chat history.
	IncludeExpiredParamKey = "includeExpired"
)
