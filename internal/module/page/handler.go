package page

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/pageshell/internal/domain"
	"github.com/simp-lee/pageshell/internal/pkg"
	"github.com/simp-lee/pageshell/internal/route"
)

// RouteHandler serves the read-only route table API.
type RouteHandler struct {
	resolver *route.Resolver
}

// NewRouteHandler creates a RouteHandler over resolver.
func NewRouteHandler(resolver *route.Resolver) *RouteHandler {
	return &RouteHandler{resolver: resolver}
}

// List handles GET /api/v1/routes?layout=&page=&page_size=. The layout
// filter is case-insensitive.
func (h *RouteHandler) List(c *gin.Context) {
	var q ListRoutesQuery
	if !pkg.BindQuery(c, &q) {
		return
	}

	entries := h.resolver.Table().Entries()
	if q.Layout != "" {
		layout, err := route.ParseLayout(q.Layout)
		if err != nil {
			pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), err))
			return
		}
		entries = h.resolver.Table().ByLayout(layout)
	}

	items := make([]RouteResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, toRouteResponse(e))
	}
	result, err := pkg.PaginateSlice(c.Request.Context(), items, pkg.ParsePageRequest(c))
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeInternal, "internal error", err))
		return
	}
	pkg.List(c, result)
}

// Resolve handles GET /api/v1/routes/resolve?path=.
func (h *RouteHandler) Resolve(c *gin.Context) {
	var q ResolveQuery
	if !pkg.BindQuery(c, &q) {
		return
	}

	tree, err := h.resolver.Resolve(q.Path)
	if err != nil {
		pkg.Error(c, domain.FromRouteError(err))
		return
	}
	pkg.Success(c, toTreeResponse(tree))
}
