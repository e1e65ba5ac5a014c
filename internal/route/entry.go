package route

import (
	"errors"
	"fmt"
	"strings"
)

// Layout identifies the layout shell a page is mounted in.
type Layout string

const (
	LayoutMain Layout = "main"
	LayoutAuth Layout = "auth"
)

// Layouts lists every supported layout shell.
var Layouts = []Layout{LayoutMain, LayoutAuth}

// ParseLayout converts a case-insensitive layout name ("main", "Main", "AUTH")
// into a Layout.
func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(s))) {
	case LayoutMain:
		return LayoutMain, nil
	case LayoutAuth:
		return LayoutAuth, nil
	default:
		return "", fmt.Errorf("unknown layout %q: must be one of %q, %q", s, LayoutMain, LayoutAuth)
	}
}

// DisplayName returns the capitalized layout name ("Main", "Auth").
func (l Layout) DisplayName() string {
	if l == "" {
		return ""
	}
	return strings.ToUpper(string(l[:1])) + string(l[1:])
}

// Template returns the layout template name relative to templates/.
func (l Layout) Template() string {
	return "layouts/" + string(l) + ".html"
}

// RenderMode tells the page renderer where the content component is rendered.
type RenderMode string

const (
	// ModeClient emits a mount point that the client bundle hydrates.
	ModeClient RenderMode = "client"
	// ModeServer renders the content/<Content> template inline.
	ModeServer RenderMode = "server"
)

// Entry is the static association between a URL path, a layout shell and a
// content component.
type Entry struct {
	Path    string     `json:"path" validate:"required,startswith=/,max=256"`
	Layout  Layout     `json:"layout" validate:"required,oneof=main auth"`
	Content string     `json:"content" validate:"required,alphanum,max=128"`
	Mode    RenderMode `json:"mode" validate:"required,oneof=client server"`
	Title   string     `json:"title" validate:"required,max=128"`
}

// Errors returned by the route package.
var (
	ErrNoRoute       = errors.New("no route registered for path")
	ErrDuplicatePath = errors.New("duplicate route path")
	ErrNonCanonical  = errors.New("route path is not canonical")
	ErrInvalidEntry  = errors.New("invalid route entry")
	ErrEmptyTable    = errors.New("route table is empty")
)
