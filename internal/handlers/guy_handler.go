package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"spilled-server/internal/managers"
	"spilled-server/internal/repositories"
	"spilled-server/internal/schemas"
	"spilled-server/internal/utils"
)

type GuyHdl interface {
	CreateGuy(ctx *gin.Context)
	GetGuy(ctx *gin.Context)
	SearchGuys(ctx *gin.Context)
	GetPopularGuys(ctx *gin.Context)
	DeleteGuy(ctx *gin.Context)
}

type GuyHandler struct {
	GuyRepo  *repositories.GuyRepository
	UserRepo *repositories.UserRepository
}

func NewGuyHandler(databaseManager *managers.DatabaseMgr) GuyHdl {
	pool := (*databaseManager).GetPool()
	userRepo := repositories.NewUserRepository(pool)

	return &GuyHandler{
		GuyRepo:  repositories.NewGuyRepository(pool, userRepo),
		UserRepo: userRepo,
	}
}

// CreateGuy creates a new guy profile owned by the calling user.
func (handler *GuyHandler) CreateGuy(ctx *gin.Context) {
	userID, err := requestorID(ctx)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.Unauthorized, http.StatusUnauthorized, err)
		return
	}

	createRequest, ok := sanitizedPayload[schemas.CreateGuyRequest](ctx)
	if !ok {
		utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, errors.New("missing payload"))
		return
	}

	params := repositories.CreateGuyParams{
		Name:            createRequest.Name,
		Age:             createRequest.Age,
		CreatedByUserID: userID,
	}
	if createRequest.Phone != "" {
		params.Phone = &createRequest.Phone
	}
	if createRequest.Socials != "" {
		params.Socials = &createRequest.Socials
	}
	if createRequest.Location != "" {
		params.Location = &createRequest.Location
	}

	guy, err := handler.GuyRepo.Create(ctx, params)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.UserNotFound)
		return
	}

	utils.WriteAndLogResponse(ctx, guyToDTO(guy), http.StatusCreated)
}

// GetGuy returns the guy profile specified in the path.
func (handler *GuyHandler) GetGuy(ctx *gin.Context) {
	guyID, ok := pathUUID(ctx, utils.GuyIdKey)
	if !ok {
		return
	}

	guy, err := handler.GuyRepo.FindByID(ctx, guyID)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.GuyNotFound)
		return
	}
	if guy == nil {
		utils.WriteAndLogError(ctx, schemas.GuyNotFound, http.StatusNotFound, errors.New("guy not found"))
		return
	}

	utils.WriteAndLogResponse(ctx, guyToDTO(guy), http.StatusOK)
}

// SearchGuys returns a paginated guy list matching the search term, each
// carrying its story count. counts=false skips the story join for clients
// that only need the profiles, such as typeahead lookups.
func (handler *GuyHandler) SearchGuys(ctx *gin.Context) {
	params := utils.ParsePaginationParams(ctx)
	filter := repositories.GuySearchFilter{
		Search: ctx.Query(utils.QueryParamKey),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	if ctx.Query(utils.CountsParamKey) == "false" {
		page, err := handler.GuyRepo.SearchGuys(ctx, filter)
		if err != nil {
			utils.WriteRepositoryError(ctx, err, schemas.GuyNotFound)
			return
		}

		response := paginatedResponse(page, func(guy schemas.Guy) *schemas.GuyDTO {
			return guyToDTO(&guy)
		})
		utils.WriteAndLogResponse(ctx, response, http.StatusOK)
		return
	}

	page, err := handler.GuyRepo.FindWithStoryCounts(ctx, filter)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.GuyNotFound)
		return
	}

	response := paginatedResponse(page, func(guy repositories.GuyWithStoryCount) *schemas.GuyDTO {
		return guyWithCountToDTO(guy)
	})
	utils.WriteAndLogResponse(ctx, response, http.StatusOK)
}

// GetPopularGuys returns the guys with the most stories.
func (handler *GuyHandler) GetPopularGuys(ctx *gin.Context) {
	limit, err := strconv.Atoi(ctx.Query(utils.LimitParamKey))
	if err != nil {
		limit = 10
	}

	guys, err := handler.GuyRepo.FindPopularGuys(ctx, limit)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.GuyNotFound)
		return
	}

	records := make([]*schemas.GuyDTO, 0, len(guys))
	for _, guy := range guys {
		records = append(records, guyWithCountToDTO(guy))
	}
	utils.WriteAndLogResponse(ctx, records, http.StatusOK)
}

// DeleteGuy removes a guy profile together with its stories and their
// comments. Only the creator may delete a profile.
func (handler *GuyHandler) DeleteGuy(ctx *gin.Context) {
	userID, err := requestorID(ctx)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.Unauthorized, http.StatusUnauthorized, err)
		return
	}

	guyID, ok := pathUUID(ctx, utils.GuyIdKey)
	if !ok {
		return
	}

	guy, err := handler.GuyRepo.FindByID(ctx, guyID)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.GuyNotFound)
		return
	}
	if guy == nil {
		utils.WriteAndLogError(ctx, schemas.GuyNotFound, http.StatusNotFound, errors.New("guy not found"))
		return
	}
	if guy.CreatedByUserID != userID {
		utils.WriteAndLogError(ctx, schemas.Forbidden, http.StatusForbidden, errors.New("not the creator"))
		return
	}

	deleted, err := handler.GuyRepo.DeleteWithStories(ctx, guyID)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.GuyNotFound)
		return
	}
	if !deleted {
		utils.WriteAndLogError(ctx, schemas.GuyNotFound, http.StatusNotFound, errors.New("guy not found"))
		return
	}

	ctx.Status(http.StatusNoContent)
}
