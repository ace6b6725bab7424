package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"spilled-server/internal/managers"
	"spilled-server/internal/repositories"
	"spilled-server/internal/schemas"
	"spilled-server/internal/utils"
)

type MessageHdl interface {
	SendMessage(ctx *gin.Context)
	GetChatHistory(ctx *gin.Context)
	GetConversations(ctx *gin.Context)
	DeleteMessage(ctx *gin.Context)
	CleanupExpiredMessages(ctx *gin.Context)
	GetMessageStats(ctx *gin.Context)
}

type MessageHandler struct {
	MessageRepo *repositories.MessageRepository
}

func NewMessageHandler(databaseManager *managers.DatabaseMgr) MessageHdl {
	pool := (*databaseManager).GetPool()
	userRepo := repositories.NewUserRepository(pool)

	return &MessageHandler{
		MessageRepo: repositories.NewMessageRepository(pool, userRepo),
	}
}

// SendMessage sends a direct message from the calling user.
func (handler *MessageHandler) SendMessage(ctx *gin.Context) {
	senderID, err := requestorID(ctx)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.Unauthorized, http.StatusUnauthorized, err)
		return
	}

	sendRequest, ok := sanitizedPayload[schemas.SendMessageRequest](ctx)
	if !ok {
		utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, errors.New("missing payload"))
		return
	}

	receiverID, err := uuid.Parse(sendRequest.ReceiverID)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	message, err := handler.MessageRepo.SendMessage(ctx, senderID, receiverID, sendRequest.Content, nil)
	if err != nil {
		if repositories.FieldOf(err) == "receiverId" {
			utils.WriteAndLogError(ctx, schemas.SelfMessaging, http.StatusBadRequest, err)
			return
		}
		utils.WriteRepositoryError(ctx, err, schemas.UserNotFound)
		return
	}

	utils.WriteAndLogResponse(ctx, messageToDTO(message), http.StatusCreated)
}

// GetChatHistory returns the messages between the calling user and the user
// in the path, newest first. Expired messages are excluded unless the
// includeExpired query parameter is set.
func (handler *MessageHandler) GetChatHistory(ctx *gin.Context) {
	userID, err := requestorID(ctx)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.Unauthorized, http.StatusUnauthorized, err)
		return
	}

	otherID, ok := pathUUID(ctx, utils.UserIdKey)
	if !ok {
		return
	}

	params := utils.ParsePaginationParams(ctx)
	filter := repositories.ChatHistoryFilter{
		IncludeExpired: ctx.Query(utils.IncludeExpiredParamKey) == "true",
		Page:           params.Page,
		Limit:          params.Limit,
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

	page, err := handler.MessageRepo.FetchChatHistory(ctx, userID, otherID, filter)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.UserNotFound)
		return
	}

	response := paginatedResponse(page, func(message schemas.Message) *schemas.MessageDTO {
		return messageToDTO(&message)
	})
	utils.WriteAndLogResponse(ctx, response, http.StatusOK)
}

// GetConversations returns the calling user's conversation summaries,
// ordered by the time of the last message.
func (handler *MessageHandler) GetConversations(ctx *gin.Context) {
	userID, err := requestorID(ctx)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.Unauthorized, http.StatusUnauthorized, err)
		return
	}

	params := utils.ParsePaginationParams(ctx)
	filter := repositories.ConversationFilter{
		Search: ctx.Query(utils.QueryParamKey),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	page, err := handler.MessageRepo.FetchConversations(ctx, userID, filter)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.UserNotFound)
		return
	}

	response := paginatedResponse(page, func(conversation schemas.ConversationDTO) schemas.ConversationDTO {
		return conversation
	})
	utils.WriteAndLogResponse(ctx, response, http.StatusOK)
}

// DeleteMessage removes a message. Only the sender may delete it.
func (handler *MessageHandler) DeleteMessage(ctx *gin.Context) {
	userID, err := requestorID(ctx)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.Unauthorized, http.StatusUnauthorized, err)
		return
	}

	messageID, ok := pathUUID(ctx, utils.MessageIdKey)
	if !ok {
		return
	}

	deleted, err := handler.MessageRepo.DeleteMessage(ctx, messageID, userID)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.MessageNotFound)
		return
	}
	if !deleted {
		utils.WriteAndLogError(ctx, schemas.MessageNotFound, http.StatusNotFound, errors.New("message not found or not owned"))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// CleanupExpiredMessages removes all expired messages and reports the count.
func (handler *MessageHandler) CleanupExpiredMessages(ctx *gin.Context) {
	deleted, err := handler.MessageRepo.CleanupExpiredMessages(ctx)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.MessageNotFound)
		return
	}

	utils.WriteAndLogResponse(ctx, &schemas.CleanupResultDTO{DeletedCount: deleted}, http.StatusOK)
}

// GetMessageStats returns the message counts.
func (handler *MessageHandler) GetMessageStats(ctx *gin.Context) {
	stats, err := handler.MessageRepo.GetMessageStats(ctx)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.MessageNotFound)
		return
	}

	utils.WriteAndLogResponse(ctx, stats, http.StatusOK)
}
