// Package handlers contains the HTTP handlers of the API. The handlers stay
// thin: they translate requests into repository calls and repository results
// into DTOs, all data access lives in the repositories package.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"spilled-server/internal/repositories"
	"spilled-server/internal/schemas"
	"spilled-server/internal/utils"
)

const anonymousNickname = "Anonymous"

var errMissingClaims = errors.New("no claims in context")

// requestorID extracts the authenticated user's id from the JWT claims the
// middleware stored in the context.
func requestorID(ctx *gin.Context) (uuid.UUID, error) {
	claims, ok := ctx.Value(utils.ClaimsKey.String()).(jwt.Claims)
	if !ok {
		return uuid.Nil, errMissingClaims
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, err
	}

	return uuid.Parse(subject)
}

// sanitizedPayload returns the request payload stored by the validation
// middleware.
func sanitizedPayload[T any](ctx *gin.Context) (*T, bool) {
	payload, ok := ctx.Value(utils.SanitizedPayloadKey.String()).(*T)
	return payload, ok
}

// pathUUID parses a UUID path parameter, writing a 400 response on failure.
func pathUUID(ctx *gin.Context, key string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(key))
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, err)
		return uuid.Nil, false
	}

	return id, true
}

func paginatedResponse[T any, D any](page repositories.Paginated[T], mapper func(T) D) *schemas.PaginatedResponse {
	records := make([]D, 0, len(page.Records))
	for _, record := range page.Records {
		records = append(records, mapper(record))
	}

	return &schemas.PaginatedResponse{
		Records:    records,
		Pagination: page.Pagination,
	}
}

func userToDTO(user *schemas.User) *schemas.UserDTO {
	return &schemas.UserDTO{
		ID:                 user.ID,
		Email:              user.Email,
		Phone:              user.Phone,
		Nickname:           user.Nickname,
		Verified:           user.Verified,
		VerificationStatus: user.VerificationStatus,
		CreatedAt:          user.CreatedAt.Format(time.RFC3339),
	}
}

func guyToDTO(guy *schemas.Guy) *schemas.GuyDTO {
	return &schemas.GuyDTO{
		GuyID:     guy.ID,
		Name:      guy.Name,
		Phone:     guy.Phone,
		Socials:   guy.Socials,
		Location:  guy.Location,
		Age:       guy.Age,
		CreatedAt: guy.CreatedAt.Format(time.RFC3339),
	}
}

func guyWithCountToDTO(guy repositories.GuyWithStoryCount) *schemas.GuyDTO {
	dto := guyToDTO(&guy.Guy)
	count := guy.StoryCount
	dto.StoryCount = &count
	return dto
}

// authorOf masks the author of anonymous content.
func authorOf(userID uuid.UUID, nickname string, anonymous bool) schemas.AuthorDTO {
	if anonymous {
		return schemas.AuthorDTO{UserID: uuid.Nil, Nickname: anonymousNickname}
	}

	return schemas.AuthorDTO{UserID: userID, Nickname: nickname}
}

func storyToDTO(story *schemas.Story, guyName string, commentCount int) *schemas.StoryDTO {
	return &schemas.StoryDTO{
		StoryID:      story.ID,
		GuyID:        story.GuyID,
		GuyName:      guyName,
		Author:       authorOf(story.UserID, story.Nickname, story.Anonymous),
		Content:      story.Content,
		Tags:         story.Tags,
		ImageURL:     story.ImageURL,
		Anonymous:    story.Anonymous,
		CommentCount: commentCount,
		CreationDate: story.CreatedAt.Format(time.RFC3339),
	}
}

func feedItemToDTO(item repositories.StoryFeedItem) *schemas.StoryDTO {
	dto := storyToDTO(&item.Story, item.GuyName, item.CommentCount)
	return dto
}

func commentToDTO(comment *schemas.Comment, nickname string) *schemas.CommentDTO {
	return &schemas.CommentDTO{
		CommentID:    comment.ID,
		StoryID:      comment.StoryID,
		Author:       authorOf(comment.UserID, nickname, comment.Anonymous),
		Content:      comment.Content,
		Anonymous:    comment.Anonymous,
		CreationDate: comment.CreatedAt.Format(time.RFC3339),
	}
}

func messageToDTO(message *schemas.Message) *schemas.MessageDTO {
	return &schemas.MessageDTO{
		MessageID:    message.ID,
		SenderID:     message.SenderID,
		ReceiverID:   message.ReceiverID,
		Content:      message.Content,
		ExpiresAt:    message.ExpiresAt,
		CreationDate: message.CreatedAt.Format(time.RFC3339),
	}
}
