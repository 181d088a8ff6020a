package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskz/internal/constants"
	"github.com/yukikurage/taskz/internal/repository"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
	// Requested is false when the client sent neither page nor limit.
	Requested bool
}

// GetPaginationParams extracts and validates pagination parameters from the request
func GetPaginationParams(c *gin.Context) PaginationParams {
	_, hasPage := c.GetQuery("page")
	_, hasLimit := c.GetQuery("limit")

	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPageSize)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))

	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	offset := (page - 1) * limit

	return PaginationParams{
		Page:      page,
		Limit:     limit,
		Offset:    offset,
		Requested: hasPage || hasLimit,
	}
}

// ListPage returns the repository page for the request. Without pagination
// parameters the whole scoped list is returned.
func ListPage(c *gin.Context) repository.Page {
	p := GetPaginationParams(c)
	if !p.Requested {
		return repository.Page{}
	}
	return repository.Page{Offset: p.Offset, Limit: p.Limit}
}
