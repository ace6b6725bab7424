package schemas

/** 				**/
/** Request Objects **/
/** 				**/

// RegistrationRequest is a struct that represents a registration request
// Either Email or Phone must be given; the handler enforces that rule since
// it spans two fields.
type RegistrationRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,phone_validation"`
	Nickname string `json:"nickname" validate:"required,max=25"`
	Password string `json:"password" validate:"required,min=8,password_validation"`
}

// LoginRequest is a struct that represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,phone_validation"`
	Password string `json:"password" validate:"required,min=8"`
}

// RefreshTokenRequest is a struct that represents a token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// SubmitVerificationRequest starts the identity verification workflow by
// attaching a document image to the calling user.
type SubmitVerificationRequest struct {
	IDImageURL string `json:"idImageUrl" validate:"required,url,max=512"`
	IDType     string `json:"idType" validate:"required,oneof=school_id national_id"`
}

// ReviewVerificationRequest is the admin decision on a pending verification.
// Reason is required when the status is rejected; the handler enforces that.
type ReviewVerificationRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
	Reason string `json:"reason" validate:"max=500"`
}

// BulkReviewVerificationRequest applies one decision to a set of users.
type BulkReviewVerificationRequest struct {
	UserIDs []string `json:"userIds" validate:"required,min=1,max=100,dive,uuid4"`
	Status  string   `json:"status" validate:"required,oneof=approved rejected"`
	Reason  string   `json:"reason" validate:"max=500"`
}

// CreateGuyRequest is a struct that represents a create guy request
// Age must lie in [0, 150]; both bounds are inclusive.
type CreateGuyRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"omitempty,phone_validation"`
	Socials  string `json:"socials" validate:"max=200"`
	Location string `json:"location" validate:"max=100"`
	Age      *int   `json:"age" validate:"omitempty,min=0,max=150"`
}

// CreateStoryRequest is a struct that represents a create story request
type CreateStoryRequest struct {
	GuyID     string   `json:"guyId" validate:"required,uuid4"`
	Content   string   `json:"content" validate:"required,max=1000"`
	Tags      []string `json:"tags" validate:"omitempty,dive,oneof=red_flag good_vibes unsure"`
	ImageURL  string   `json:"imageUrl" validate:"omitempty,url,max=512"`
	Anonymous bool     `json:"anonymous"`
}

// CreateCommentRequest is a struct that represents a create comment request
type CreateCommentRequest struct {
	Content   string `json:"content" validate:"required,max=500"`
	Anonymous bool   `json:"anonymous"`
}

// SendMessageRequest is a struct that represents a send message request
type SendMessageRequest struct {
	ReceiverID string `json:"receiverId" validate:"required,uuid4"`
	Content    string `json:"content" validate:"required,max=1000"`
}
