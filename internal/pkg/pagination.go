package pkg

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/pagination"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageRequest holds the pagination parameters of a list request.
type PageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// ParsePageRequest reads page and page_size from the query string, clamping
// them to sane bounds. Pages past the last one are clamped by PaginateSlice.
func ParsePageRequest(c *gin.Context) PageRequest {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if page < 1 {
		page = defaultPage
	}

	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return PageRequest{Page: page, PageSize: pageSize}
}

// PaginateSlice returns the page of items selected by req. A page beyond the
// last one yields the last page. The returned items never alias items.
func PaginateSlice[T any](ctx context.Context, items []T, req PageRequest) (*pagination.Pagination[T], error) {
	if req.Page < 1 {
		req.Page = defaultPage
	}
	if req.PageSize < 1 {
		req.PageSize = defaultPageSize
	}

	p := pagination.NewPaginator(
		pagination.WithItemsPerPage[T](req.PageSize),
		pagination.WithKnownTotal[T](int64(len(items))),
		pagination.WithSliceCallback(func(_ context.Context, offset, limit int) ([]T, error) {
			start := min(offset, len(items))
			end := start + min(limit, len(items)-start)
			page := make([]T, end-start)
			copy(page, items[start:end])
			return page, nil
		}),
	)
	return p.Paginate(ctx, req.Page)
}
