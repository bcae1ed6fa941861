package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

type PaginationParams struct {
	Limit  int
	Offset int
}

type PageResponse struct {
	Data   interface{} `json:"data"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// queryInt reads an optional integer query parameter and checks it lies in
// [min, max].
func queryInt(c *gin.Context, name string, fallback, min, max int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter, must be an integer", name)
	}
	if n < min || n > max {
		return 0, fmt.Errorf("invalid %s parameter, must be between %d and %d", name, min, max)
	}
	return n, nil
}

// ParsePagination reads limit and offset. maxLimit caps the limit.
func ParsePagination(c *gin.Context, defaultLimit, maxLimit int) (PaginationParams, error) {
	limit, err := queryInt(c, "limit", defaultLimit, 1, maxLimit)
	if err != nil {
		return PaginationParams{}, err
	}
	offset, err := queryInt(c, "offset", 0, 0, int(^uint32(0)>>1))
	if err != nil {
		return PaginationParams{}, err
	}
	return PaginationParams{Limit: limit, Offset: offset}, nil
}
