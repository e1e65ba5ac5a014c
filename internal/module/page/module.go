package page

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PageModule implements app.Module for the route table pages and API.
type PageModule struct {
	routes *RouteHandler
	pages  *PageHandler
}

// NewModule creates a PageModule. Panics if either handler is nil.
func NewModule(rh *RouteHandler, ph *PageHandler) *PageModule {
	if rh == nil {
		panic("page.NewModule: route handler must not be nil")
	}
	if ph == nil {
		panic("page.NewModule: page handler must not be nil")
	}
	return &PageModule{routes: rh, pages: ph}
}

// RegisterRoutes registers the route API and one GET and HEAD route per
// table entry.
func (m *PageModule) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	api.GET("/routes", m.routes.List)
	api.GET("/routes/resolve", m.routes.Resolve)

	for _, e := range m.pages.svc.Resolver().Table().Entries() {
		pages.Handle(http.MethodGet, e.Path, m.pages.Show)
		pages.Handle(http.MethodHead, e.Path, m.pages.Show)
	}
}
