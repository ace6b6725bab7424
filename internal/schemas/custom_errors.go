package schemas

// CustomError is the wire representation of an error, sent to the client
// inside an ErrorDTO. The code is stable across releases; the message is
// allowed to change.
type CustomError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	BadRequest          = &CustomError{"ERR-001", "The request body is invalid. Please check the request body and try again."}
	EmailTaken          = &CustomError{"ERR-002", "The email is already registered. Please log in instead."}
	PhoneTaken          = &CustomError{"ERR-003", "The phone number is already registered. Please log in instead."}
	UserNotFound        = &CustomError{"ERR-004", "The user was not found. Please check the given id and try again."}
	InvalidCredentials  = &CustomError{"ERR-005", "The credentials are invalid. Please check them and try again."}
	Unauthorized        = &CustomError{"ERR-006", "The request is unauthorized. Please log in and try again."}
	InvalidToken        = &CustomError{"ERR-007", "The token is invalid. Please log in again."}
	UserNotVerified     = &CustomError{"ERR-008", "Your identity is not verified yet. Please complete verification before posting."}
	NotAdmin            = &CustomError{"ERR-009", "This action requires administrator rights."}
	GuyNotFound         = &CustomError{"ERR-010", "The guy profile was not found. Please check the given id and try again."}
	StoryNotFound       = &CustomError{"ERR-011", "The story was not found. Please check the given id and try again."}
	CommentNotFound     = &CustomError{"ERR-012", "The comment was not found. Please check the given id and try again."}
	MessageNotFound     = &CustomError{"ERR-013", "The message was not found. Please check the given id and try again."}
	Forbidden           = &CustomError{"ERR-014", "You are not allowed to perform this action on this resource."}
	SelfMessaging       = &CustomError{"ERR-015", "You cannot send a message to yourself."}
	DuplicateResource   = &CustomError{"ERR-016", "The resource already exists. Please check the request and try again."}
	DanglingReference   = &CustomError{"ERR-017", "A referenced resource does not exist. Please check the request and try again."}
	DatabaseError       = &CustomError{"ERR-018", "A database error occurred. Please try again later."}
	InternalServerError = &CustomError{"ERR-019", "An internal server error occurred. Please try again later."}
)
