package page

import "github.com/simp-lee/pageshell/internal/route"

// ListRoutesQuery is the query string of GET /api/v1/routes.
type ListRoutesQuery struct {
	Layout string `form:"layout"`
}

// ResolveQuery is the query string of GET /api/v1/routes/resolve.
type ResolveQuery struct {
	Path string `form:"path" binding:"required,startswith=/,max=2048"`
}

// RouteResponse is the API form of a route entry.
type RouteResponse struct {
	Path    string `json:"path"`
	Layout  string `json:"layout"`
	Content string `json:"content"`
	Mode    string `json:"mode"`
	Title   string `json:"title"`
}

// TreeResponse is the API form of a resolved render tree.
type TreeResponse struct {
	Path     string   `json:"path"`
	Layout   string   `json:"layout"`
	Content  string   `json:"content"`
	Mode     string   `json:"mode"`
	Title    string   `json:"title"`
	Children []string `json:"children"`
}

func toRouteResponse(e route.Entry) RouteResponse {
	return RouteResponse{
		Path:    e.Path,
		Layout:  e.Layout.DisplayName(),
		Content: e.Content,
		Mode:    string(e.Mode),
		Title:   e.Title,
	}
}

func toTreeResponse(t route.Tree) TreeResponse {
	return TreeResponse{
		Path:     t.Entry.Path,
		Layout:   t.Layout.DisplayName(),
		Content:  t.Content,
		Mode:     string(t.Mode),
		Title:    t.Entry.Title,
		Children: t.Children(),
	}
}
