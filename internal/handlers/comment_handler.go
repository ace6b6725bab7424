package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"spilled-server/internal/managers"
	"spilled-server/internal/repositories"
	"spilled-server/internal/schemas"
	"spilled-server/internal/utils"
)

type CommentHdl interface {
	CreateComment(ctx *gin.Context)
	GetCommentsByStory(ctx *gin.Context)
	DeleteComment(ctx *gin.Context)
	GetCommentStats(ctx *gin.Context)
}

type CommentHandler struct {
	CommentRepo *repositories.CommentRepository
}

func NewCommentHandler(databaseManager *managers.DatabaseMgr) CommentHdl {
	pool := (*databaseManager).GetPool()
	userRepo := repositories.NewUserRepository(pool)
	guyRepo := repositories.NewGuyRepository(pool, userRepo)
	storyRepo := repositories.NewStoryRepository(pool, userRepo, guyRepo)

	return &CommentHandler{
		CommentRepo: repositories.NewCommentRepository(pool, userRepo, storyRepo),
	}
}

// CreateComment attaches a comment to the story in the path.
func (handler *CommentHandler) CreateComment(ctx *gin.Context) {
	userID, err := requestorID(ctx)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.Unauthorized, http.StatusUnauthorized, err)
		return
	}

	storyID, ok := pathUUID(ctx, utils.StoryIdKey)
	if !ok {
		return
	}

	createRequest, ok := sanitizedPayload[schemas.CreateCommentRequest](ctx)
	if !ok {
		utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, errors.New("missing payload"))
		return
	}

	comment, err := handler.CommentRepo.Create(ctx, repositories.CreateCommentParams{
		StoryID:   storyID,
		UserID:    userID,
		Content:   createRequest.Content,
		Anonymous: createRequest.Anonymous,
	})
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.StoryNotFound)
		return
	}

	utils.WriteAndLogResponse(ctx, commentToDTO(comment, comment.Nickname), http.StatusCreated)
}

// GetCommentsByStory returns the comments of a story, oldest first.
func (handler *CommentHandler) GetCommentsByStory(ctx *gin.Context) {
	storyID, ok := pathUUID(ctx, utils.StoryIdKey)
	if !ok {
		return
	}

	params := utils.ParsePaginationParams(ctx)
	filter := repositories.CommentFilter{
		Search: ctx.Query(utils.QueryParamKey),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	page, err := handler.CommentRepo.FindByStoryID(ctx, storyID, filter)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.StoryNotFound)
		return
	}

	response := paginatedResponse(page, func(comment repositories.CommentWithAuthor) *schemas.CommentDTO {
		return commentToDTO(&comment.Comment, comment.AuthorNickname)
	})
	utils.WriteAndLogResponse(ctx, response, http.StatusOK)
}

// DeleteComment removes a comment. Only the author may delete it.
func (handler *CommentHandler) DeleteComment(ctx *gin.Context) {
	userID, err := requestorID(ctx)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.Unauthorized, http.StatusUnauthorized, err)
		return
	}

	commentID, ok := pathUUID(ctx, utils.CommentIdKey)
	if !ok {
		return
	}

	deleted, err := handler.CommentRepo.Delete(ctx, commentID, userID)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.CommentNotFound)
		return
	}
	if !deleted {
		utils.WriteAndLogError(ctx, schemas.CommentNotFound, http.StatusNotFound, errors.New("comment not found or not owned"))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// GetCommentStats returns the comment counts.
func (handler *CommentHandler) GetCommentStats(ctx *gin.Context) {
	stats, err := handler.CommentRepo.GetCommentStats(ctx)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.CommentNotFound)
		return
	}

	utils.WriteAndLogResponse(ctx, stats, http.StatusOK)
}
