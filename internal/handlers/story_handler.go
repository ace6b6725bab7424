package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"spilled-server/internal/managers"
	"spilled-server/internal/repositories"
	"spilled-server/internal/schemas"
	"spilled-server/internal/utils"
)

type StoryHdl interface {
	CreateStory(ctx *gin.Context)
	GetStory(ctx *gin.Context)
	GetStoriesFeed(ctx *gin.Context)
	GetTrendingStories(ctx *gin.Context)
	DeleteStory(ctx *gin.Context)
	GetStoryStats(ctx *gin.Context)
}

type StoryHandler struct {
	StoryRepo   *repositories.StoryRepository
	CommentRepo *repositories.CommentRepository
	GuyRepo     *repositories.GuyRepository
}

func NewStoryHandler(databaseManager *managers.DatabaseMgr) StoryHdl {
	pool := (*databaseManager).GetPool()
	userRepo := repositories.NewUserRepository(pool)
	guyRepo := repositories.NewGuyRepository(pool, userRepo)
	storyRepo := repositories.NewStoryRepository(pool, userRepo, guyRepo)

	return &StoryHandler{
		StoryRepo:   storyRepo,
		CommentRepo: repositories.NewCommentRepository(pool, userRepo, storyRepo),
		GuyRepo:     guyRepo,
	}
}

// CreateStory creates a story about a guy. Only verified users may post;
// the repository enforces that rule.
func (handler *StoryHandler) CreateStory(ctx *gin.Context) {
	userID, err := requestorID(ctx)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.Unauthorized, http.StatusUnauthorized, err)
		return
	}

	createRequest, ok := sanitizedPayload[schemas.CreateStoryRequest](ctx)
	if !ok {
		utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, errors.New("missing payload"))
		return
	}

	guyID, err := uuid.Parse(createRequest.GuyID)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	params := repositories.CreateStoryParams{
		GuyID:     guyID,
		UserID:    userID,
		Content:   createRequest.Content,
		Tags:      createRequest.Tags,
		Anonymous: createRequest.Anonymous,
	}
	if createRequest.ImageURL != "" {
		params.ImageURL = &createRequest.ImageURL
	}

	story, err := handler.StoryRepo.Create(ctx, params)
	if err != nil {
		if repositories.FieldOf(err) == "userId" {
			utils.WriteAndLogError(ctx, schemas.UserNotVerified, http.StatusForbidden, err)
			return
		}
		utils.WriteRepositoryError(ctx, err, schemas.GuyNotFound)
		return
	}

	guy, err := handler.GuyRepo.FindByID(ctx, story.GuyID)
	if err != nil || guy == nil {
		utils.WriteAndLogResponse(ctx, storyToDTO(story, "", 0), http.StatusCreated)
		return
	}

	utils.WriteAndLogResponse(ctx, storyToDTO(story, guy.Name, 0), http.StatusCreated)
}

// GetStory returns a single story with its guy name and comment count.
func (handler *StoryHandler) GetStory(ctx *gin.Context) {
	storyID, ok := pathUUID(ctx, utils.StoryIdKey)
	if !ok {
		return
	}

	story, err := handler.StoryRepo.FindByID(ctx, storyID)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.StoryNotFound)
		return
	}
	if story == nil {
		utils.WriteAndLogError(ctx, schemas.StoryNotFound, http.StatusNotFound, errors.New("story not found"))
		return
	}

	guyName := ""
	if guy, guyErr := handler.GuyRepo.FindByID(ctx, story.GuyID); guyErr == nil && guy != nil {
		guyName = guy.Name
	}

	commentCount := 0
	if counts, countErr := handler.CommentRepo.GetCommentCountsByStoryIDs(ctx, []uuid.UUID{storyID}); countErr == nil {
		commentCount = counts[storyID]
	}

	utils.WriteAndLogResponse(ctx, storyToDTO(story, guyName, commentCount), http.StatusOK)
}

// GetStoriesFeed returns the filtered, paginated story feed.
func (handler *StoryHandler) GetStoriesFeed(ctx *gin.Context) {
	params := utils.ParsePaginationParams(ctx)
	filter := repositories.StoryFeedFilter{
		Search:        ctx.Query(utils.QueryParamKey),
		Tag:           ctx.Query(utils.TagParamKey),
		SortAscending: ctx.Query(utils.SortParamKey) == "asc",
		Page:          params.Page,
		Limit:         params.Limit,
	}

	if rawGuyID := ctx.Query(utils.GuyIdKey); rawGuyID != "" {
		guyID, err := uuid.Parse(rawGuyID)
		if err != nil {
			utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, err)
			return
		}
		filter.GuyID = &guyID
	}
	if rawUserID := ctx.Query(utils.UserIdKey); rawUserID != "" {
		userID, err := uuid.Parse(rawUserID)
		if err != nil {
			utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, err)
			return
		}
		filter.UserID = &userID
	}
	if rawFrom := ctx.Query("from"); rawFrom != "" {
		from, err := time.Parse(time.RFC3339, rawFrom)
		if err != nil {
			utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, err)
			return
		}
		filter.From = &from
	}
	if rawTo := ctx.Query("to"); rawTo != "" {
		to, err := time.Parse(time.RFC3339, rawTo)
		if err != nil {
			utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, err)
			return
		}
		filter.To = &to
	}

	page, err := handler.StoryRepo.FetchStoriesFeed(ctx, filter)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.StoryNotFound)
		return
	}

	response := paginatedResponse(page, func(item repositories.StoryFeedItem) *schemas.StoryDTO {
		return feedItemToDTO(item)
	})
	utils.WriteAndLogResponse(ctx, response, http.StatusOK)
}

// GetTrendingStories returns the stories with the most comments from the
// last seven days.
func (handler *StoryHandler) GetTrendingStories(ctx *gin.Context) {
	limit, err := strconv.Atoi(ctx.Query(utils.LimitParamKey))
	if err != nil {
		limit = 10
	}

	stories, err := handler.StoryRepo.GetTrendingStories(ctx, limit)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.StoryNotFound)
		return
	}

	records := make([]*schemas.StoryDTO, 0, len(stories))
	for _, item := range stories {
		records = append(records, feedItemToDTO(item))
	}
	utils.WriteAndLogResponse(ctx, records, http.StatusOK)
}

// DeleteStory removes a story and its comments. Only the author may delete
// a story.
func (handler *StoryHandler) DeleteStory(ctx *gin.Context) {
	userID, err := requestorID(ctx)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.Unauthorized, http.StatusUnauthorized, err)
		return
	}

	storyID, ok := pathUUID(ctx, utils.StoryIdKey)
	if !ok {
		return
	}

	story, err := handler.StoryRepo.FindByID(ctx, storyID)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.StoryNotFound)
		return
	}
	if story == nil {
		utils.WriteAndLogError(ctx, schemas.StoryNotFound, http.StatusNotFound, errors.New("story not found"))
		return
	}
	if story.UserID != userID {
		utils.WriteAndLogError(ctx, schemas.Forbidden, http.StatusForbidden, errors.New("not the author"))
		return
	}

	deleted, err := handler.StoryRepo.DeleteWithComments(ctx, storyID)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.StoryNotFound)
		return
	}
	if !deleted {
		utils.WriteAndLogError(ctx, schemas.StoryNotFound, http.StatusNotFound, errors.New("story not found"))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// GetStoryStats returns the story counts.
func (handler *StoryHandler) GetStoryStats(ctx *gin.Context) {
	stats, err := handler.StoryRepo.GetStoryStats(ctx)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.StoryNotFound)
		return
	}

	utils.WriteAndLogResponse(ctx, stats, http.StatusOK)
}
