package dto

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const maxPageSize = 100

// ListQuery holds the common listing parameters. PageSize 0 means unpaginated.
type ListQuery struct {
	Statuses []string
	Page     int
	PageSize int
}

// ParseListQuery reads status (comma separated or repeated), page and page_size.
func ParseListQuery(c *fiber.Ctx) ListQuery {
	q := ListQuery{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 0),
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 0 {
		q.PageSize = 0
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	for _, raw := range strings.Split(c.Query("status"), ",") {
		if s := strings.TrimSpace(raw); s != "" {
			q.Statuses = append(q.Statuses, s)
		}
	}
	return q
}

// LimitOffset converts page numbering to repository limit/offset.
func (q ListQuery) LimitOffset() (int, int) {
	if q.PageSize == 0 {
		return 0, 0
	}
	return q.PageSize, (q.Page - 1) * q.PageSize
}
