package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"spilled-server/internal/managers"
	"spilled-server/internal/repositories"
	"spilled-server/internal/schemas"
	"spilled-server/internal/utils"
)

type UserHdl interface {
	RegisterUser(ctx *gin.Context)
	LoginUser(ctx *gin.Context)
	RefreshToken(ctx *gin.Context)
	HandleGetUserRequest(ctx *gin.Context)
	SubmitVerification(ctx *gin.Context)
	ReviewVerification(ctx *gin.Context)
	BulkReviewVerification(ctx *gin.Context)
	ListPendingVerifications(ctx *gin.Context)
	GetUserStats(ctx *gin.Context)
}

type UserHandler struct {
	JWTManager  managers.JWTMgr
	MailManager managers.MailMgr
	UserRepo    *repositories.UserRepository
	adminEmails map[string]struct{}
}

// NewUserHandler wires the user routes. adminEmails is an immutable snapshot
// taken at startup; changing the environment requires a restart.
func NewUserHandler(databaseManager *managers.DatabaseMgr, jwtManager *managers.JWTMgr, mailManager *managers.MailMgr, adminEmails []string) UserHdl {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			admins[email] = struct{}{}
		}
	}

	return &UserHandler{
		JWTManager:  *jwtManager,
		MailManager: *mailManager,
		UserRepo:    repositories.NewUserRepository((*databaseManager).GetPool()),
		adminEmails: admins,
	}
}

// RegisterUser registers a new user. The account starts unverified, a
// welcome mail points the user at the verification flow.
func (handler *UserHandler) RegisterUser(ctx *gin.Context) {
	registrationRequest, ok := sanitizedPayload[schemas.RegistrationRequest](ctx)
	if !ok {
		utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, errors.New("missing payload"))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registrationRequest.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	params := repositories.CreateUserParams{
		Nickname:     registrationRequest.Nickname,
		PasswordHash: string(hashedPassword),
	}
	if registrationRequest.Email != "" {
		email := strings.ToLower(registrationRequest.Email)
		params.Email = &email
	}
	if registrationRequest.Phone != "" {
		phone := registrationRequest.Phone
		params.Phone = &phone
	}

	user, err := handler.UserRepo.Create(ctx, params)
	if err != nil {
		switch repositories.FieldOf(err) {
		case "email":
			utils.WriteAndLogError(ctx, schemas.EmailTaken, http.StatusConflict, err)
		case "phone":
			utils.WriteAndLogError(ctx, schemas.PhoneTaken, http.StatusConflict, err)
		default:
			utils.WriteRepositoryError(ctx, err, schemas.UserNotFound)
		}
		return
	}

	if user.Email != nil {
		if mailErr := handler.MailManager.SendWelcomeMail(*user.Email, user.Nickname); mailErr != nil {
			utils.LogMessageWithFieldsAndError(ctx, "warn", "Could not send welcome mail", mailErr)
		}
	}

	utils.WriteAndLogResponse(ctx, userToDTO(user), http.StatusCreated)
}

// LoginUser verifies the credentials and returns a token pair.
func (handler *UserHandler) LoginUser(ctx *gin.Context) {
	loginRequest, ok := sanitizedPayload[schemas.LoginRequest](ctx)
	if !ok {
		utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, errors.New("missing payload"))
		return
	}

	var user *schemas.User
	var err error
	switch {
	case loginRequest.Email != "":
		user, err = handler.UserRepo.FindByEmail(ctx, strings.ToLower(loginRequest.Email))
	case loginRequest.Phone != "":
		user, err = handler.UserRepo.FindByPhone(ctx, loginRequest.Phone)
	default:
		utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, errors.New("either email or phone is required"))
		return
	}

	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.UserNotFound)
		return
	}
	if user == nil {
		utils.WriteAndLogError(ctx, schemas.InvalidCredentials, http.StatusUnauthorized, errors.New("unknown user"))
		return
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(loginRequest.Password)); err != nil {
		utils.WriteAndLogError(ctx, schemas.InvalidCredentials, http.StatusUnauthorized, err)
		return
	}

	handler.writeTokenPair(ctx, user.ID)
}

// RefreshToken exchanges a valid refresh token for a new token pair.
func (handler *UserHandler) RefreshToken(ctx *gin.Context) {
	refreshRequest, ok := sanitizedPayload[schemas.RefreshTokenRequest](ctx)
	if !ok {
		utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, errors.New("missing payload"))
		return
	}

	claims, err := handler.JWTManager.ValidateJWT(refreshRequest.RefreshToken)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.InvalidToken, http.StatusUnauthorized, err)
		return
	}

	mapClaims, ok := claims.(jwt.MapClaims)
	if !ok {
		utils.WriteAndLogError(ctx, schemas.InvalidToken, http.StatusUnauthorized, errors.New("unexpected claims type"))
		return
	}
	if refresh, ok := mapClaims["refresh"].(bool); !ok || !refresh {
		utils.WriteAndLogError(ctx, schemas.InvalidToken, http.StatusUnauthorized, errors.New("not a refresh token"))
		return
	}

	subject, err := claims.GetSubject()
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.InvalidToken, http.StatusUnauthorized, err)
		return
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.InvalidToken, http.StatusUnauthorized, err)
		return
	}

	handler.writeTokenPair(ctx, userID)
}

func (handler *UserHandler) writeTokenPair(ctx *gin.Context, userID uuid.UUID) {
	token, err := handler.JWTManager.GenerateJWT(handler.JWTManager.GenerateClaims(userID.String()))
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	refreshToken, err := handler.JWTManager.GenerateJWT(handler.JWTManager.GenerateRefreshClaims(userID.String()))
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	tokenPair := &schemas.TokenPairDTO{
		Token:        token,
		RefreshToken: refreshToken,
	}
	utils.WriteAndLogResponse(ctx, tokenPair, http.StatusOK)
}

// HandleGetUserRequest returns the user specified in the path.
func (handler *UserHandler) HandleGetUserRequest(ctx *gin.Context) {
	userID, ok := pathUUID(ctx, utils.UserIdKey)
	if !ok {
		return
	}

	user, err := handler.UserRepo.FindByID(ctx, userID)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.UserNotFound)
		return
	}
	if user == nil {
		utils.WriteAndLogError(ctx, schemas.UserNotFound, http.StatusNotFound, errors.New("user not found"))
		return
	}

	utils.WriteAndLogResponse(ctx, userToDTO(user), http.StatusOK)
}

// SubmitVerification attaches a document to the calling user and resets the
// workflow to pending.
func (handler *UserHandler) SubmitVerification(ctx *gin.Context) {
	userID, err := requestorID(ctx)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.Unauthorized, http.StatusUnauthorized, err)
		return
	}

	verificationRequest, ok := sanitizedPayload[schemas.SubmitVerificationRequest](ctx)
	if !ok {
		utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, errors.New("missing payload"))
		return
	}

	user, err := handler.UserRepo.SubmitVerification(ctx, userID, verificationRequest.IDImageURL, verificationRequest.IDType)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.UserNotFound)
		return
	}
	if user == nil {
		utils.WriteAndLogError(ctx, schemas.UserNotFound, http.StatusNotFound, errors.New("user not found"))
		return
	}

	utils.WriteAndLogResponse(ctx, userToDTO(user), http.StatusOK)
}

// ReviewVerification applies an admin decision to the user in the path.
func (handler *UserHandler) ReviewVerification(ctx *gin.Context) {
	if !handler.requireAdmin(ctx) {
		return
	}

	userID, ok := pathUUID(ctx, utils.UserIdKey)
	if !ok {
		return
	}

	reviewRequest, ok := sanitizedPayload[schemas.ReviewVerificationRequest](ctx)
	if !ok {
		utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, errors.New("missing payload"))
		return
	}

	user, err := handler.UserRepo.UpdateVerificationStatus(ctx, userID, reviewRequest.Status, reviewRequest.Reason)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.UserNotFound)
		return
	}
	if user == nil {
		utils.WriteAndLogError(ctx, schemas.UserNotFound, http.StatusNotFound, errors.New("user not found"))
		return
	}

	handler.sendDecisionMail(ctx, user, reviewRequest.Status, reviewRequest.Reason)
	utils.WriteAndLogResponse(ctx, userToDTO(user), http.StatusOK)
}

// BulkReviewVerification applies one admin decision to a set of users.
func (handler *UserHandler) BulkReviewVerification(ctx *gin.Context) {
	if !handler.requireAdmin(ctx) {
		return
	}

	bulkRequest, ok := sanitizedPayload[schemas.BulkReviewVerificationRequest](ctx)
	if !ok {
		utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, errors.New("missing payload"))
		return
	}

	userIDs := make([]uuid.UUID, 0, len(bulkRequest.UserIDs))
	for _, rawID := range bulkRequest.UserIDs {
		userID, err := uuid.Parse(rawID)
		if err != nil {
			utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, err)
			return
		}
		userIDs = append(userIDs, userID)
	}

	updated, err := handler.UserRepo.BulkUpdateVerificationStatus(ctx, userIDs, bulkRequest.Status, bulkRequest.Reason)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.UserNotFound)
		return
	}

	utils.WriteAndLogResponse(ctx, gin.H{"updatedCount": updated}, http.StatusOK)
}

// ListPendingVerifications returns the review queue, oldest first. It serves
// the users awaiting review by default; the status query parameter lets an
// admin revisit already decided verifications.
func (handler *UserHandler) ListPendingVerifications(ctx *gin.Context) {
	if !handler.requireAdmin(ctx) {
		return
	}

	status := ctx.DefaultQuery(utils.StatusParamKey, schemas.VerificationPending)
	switch status {
	case schemas.VerificationPending, schemas.VerificationApproved, schemas.VerificationRejected:
	default:
		utils.WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, errors.New("unknown verification status"))
		return
	}

	params := utils.ParsePaginationParams(ctx)
	filter := repositories.UserSearchFilter{
		Search: ctx.Query(utils.QueryParamKey),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	page, err := handler.UserRepo.FindByVerificationStatus(ctx, status, filter)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.UserNotFound)
		return
	}

	response := paginatedResponse(page, func(user schemas.User) *schemas.UserDTO {
		return userToDTO(&user)
	})
	utils.WriteAndLogResponse(ctx, response, http.StatusOK)
}

// GetUserStats returns the user counts for the admin dashboard.
func (handler *UserHandler) GetUserStats(ctx *gin.Context) {
	if !handler.requireAdmin(ctx) {
		return
	}

	stats, err := handler.UserRepo.GetUserStats(ctx)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.UserNotFound)
		return
	}

	utils.WriteAndLogResponse(ctx, stats, http.StatusOK)
}

// requireAdmin resolves the calling user and checks their email against the
// admin snapshot. Writes the error response itself on failure.
func (handler *UserHandler) requireAdmin(ctx *gin.Context) bool {
	userID, err := requestorID(ctx)
	if err != nil {
		utils.WriteAndLogError(ctx, schemas.Unauthorized, http.StatusUnauthorized, err)
		return false
	}

	user, err := handler.UserRepo.FindByID(ctx, userID)
	if err != nil {
		utils.WriteRepositoryError(ctx, err, schemas.UserNotFound)
		return false
	}
	if user == nil || user.Email == nil {
		utils.WriteAndLogError(ctx, schemas.NotAdmin, http.StatusForbidden, errors.New("not an admin"))
		return false
	}

	if _, isAdmin := handler.adminEmails[strings.ToLower(*user.Email)]; !isAdmin {
		utils.WriteAndLogError(ctx, schemas.NotAdmin, http.StatusForbidden, errors.New("not an admin"))
		return false
	}

	return true
}

func (handler *UserHandler) sendDecisionMail(ctx *gin.Context, user *schemas.User, status, reason string) {
	if user.Email == nil {
		return
	}

	var err error
	switch status {
	case schemas.VerificationApproved:
		err = handler.MailManager.SendVerificationApprovedMail(*user.Email, user.Nickname)
	case schemas.VerificationRejected:
		err = handler.MailManager.SendVerificationRejectedMail(*user.Email, user.Nickname, reason)
	}

	if err != nil {
		utils.LogMessageWithFieldsAndError(ctx, "warn", "Could not send verification decision mail", err)
	}
}
