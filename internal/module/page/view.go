package page

import (
	"html/template"

	"github.com/simp-lee/pageshell/internal/route"
)

// View is the data every layout template is executed with.
type View struct {
	AppName      string
	Title        string
	Path         string
	Layout       string
	Component    string
	Mode         string
	Inner        template.HTML // server-rendered content, empty in client mode
	Nav          []NavItem
	Stylesheet   string
	ClientBundle string
	Boot         Boot
}

// NavItem is one link in the Main layout navigation.
type NavItem struct {
	Path   string
	Title  string
	Active bool
}

// Boot is serialized into the page for the client bundle.
type Boot struct {
	Path      string `json:"path"`
	Layout    string `json:"layout"`
	Component string `json:"component"`
	Mode      string `json:"mode"`
}

// Options are the site-wide values shared by every page.
type Options struct {
	AppName      string
	Stylesheet   string
	ClientBundle string
}

func newView(tree route.Tree, nav []route.Entry, opts Options) View {
	items := make([]NavItem, 0, len(nav))
	for _, e := range nav {
		items = append(items, NavItem{
			Path:   e.Path,
			Title:  e.Title,
			Active: e.Path == tree.Entry.Path,
		})
	}

	return View{
		AppName:      opts.AppName,
		Title:        tree.Entry.Title,
		Path:         tree.Entry.Path,
		Layout:       string(tree.Layout),
		Component:    tree.Content,
		Mode:         string(tree.Mode),
		Nav:          items,
		Stylesheet:   opts.Stylesheet,
		ClientBundle: opts.ClientBundle,
		Boot: Boot{
			Path:      tree.Entry.Path,
			Layout:    string(tree.Layout),
			Component: tree.Content,
			Mode:      string(tree.Mode),
		},
	}
}
