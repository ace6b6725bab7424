package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spilled-server/internal/repositories"
	"spilled-server/internal/schemas"
)

// WriteAndLogResponse encodes the response object to JSON and writes it to the HTTP response.
// It also sets the provided status code.
func WriteAndLogResponse(ctx *gin.Context, response interface{}, statusCode int) {
	LogMessageWithFields(ctx, "info", "Returning response")
	ctx.JSON(statusCode, response)
}

// WriteAndLogError logs the provided error and sends an error response with the specified status code and error details.
func WriteAndLogError(ctx *gin.Context, customErr *schemas.CustomError, statusCode int, err error) {
	LogMessageWithFieldsAndError(ctx, "error", "Error occurred", err)
	LogMessageWithFields(ctx, "error", "Returning "+customErr.Code+" / "+customErr.Message)
	errorDto := &schemas.ErrorDTO{
		Error: *customErr,
	}
	ctx.JSON(statusCode, errorDto)
}

// WriteRepositoryError maps a classified repository error onto the HTTP
// boundary: validation to 400, not-found to 404, duplicate and foreign-key
// conflicts to 409 and everything else to 500. notFound names the error
// body for the 404 case, since it depends on which entity the handler was
// resolving.
func WriteRepositoryError(ctx *gin.Context, err error, notFound *schemas.CustomError) {
	switch repositories.KindOf(err) {
	case repositories.KindValidation:
		WriteAndLogError(ctx, schemas.BadRequest, http.StatusBadRequest, err)
	case repositories.KindNotFound:
		WriteAndLogError(ctx, notFound, http.StatusNotFound, err)
	case repositories.KindDuplicate:
		WriteAndLogError(ctx, schemas.DuplicateResource, http.StatusConflict, err)
	case repositories.KindForeignKey:
		WriteAndLogError(ctx, schemas.DanglingReference, http.StatusConflict, err)
	default:
		WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
	}
}
