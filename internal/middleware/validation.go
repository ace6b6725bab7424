package middleware

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	"spilled-server/internal/schemas"
	"spilled-server/internal/utils"
	"spilled-server/internal/validators"
)

// ValidateAndSanitizeStruct binds the JSON body into a fresh instance of the
// given struct type, sanitizes all string fields and validates it. The
// sanitized payload is stored in the context for the handler.
func ValidateAndSanitizeStruct(obj interface{}) gin.HandlerFunc {
	payloadType := reflect.TypeOf(obj).Elem()

	return func(c *gin.Context) {
		payload := reflect.New(payloadType).Interface()

		if err := c.ShouldBindJSON(payload); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, &schemas.ErrorDTO{Error: *schemas.BadRequest})
			return
		}

		validator := validators.GetValidator()
		if err := validator.SanitizeData(payload); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, &schemas.ErrorDTO{Error: *schemas.BadRequest})
			return
		}

		if err := validator.Validate.Struct(payload); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, &schemas.ErrorDTO{Error: *schemas.BadRequest})
			return
		}

		c.Set(utils.SanitizedPayloadKey.String(), payload)
		c.Next()
	}
}
