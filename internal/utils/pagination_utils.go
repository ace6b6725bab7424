package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"spilled-server/internal/repositories"
)

// ParsePaginationParams extracts the 'page' and 'limit' parameters from the
// request's query parameters. Missing or malformed values fall back to the
// defaults, out-of-range values are clamped by NormalizePage.
func ParsePaginationParams(ctx *gin.Context) repositories.PageParams {
	pageString := ctx.Query(PageParamKey)
	page, err := strconv.Atoi(pageString)
	if err != nil {
		page = 1
	}

	limitString := ctx.Query(LimitParamKey)
	limit, err := strconv.Atoi(limitString)
	if err != nil {
		limit = repositories.DefaultPageLimit
	}

	return repositories.NormalizePage(page, limit, repositories.DefaultPageLimit)
}
