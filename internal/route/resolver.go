package route

import (
	"errors"
	"fmt"
)

// Tree is the render tree of a page: one layout shell with one content
// component mounted inside it.
type Tree struct {
	Layout  Layout     `json:"layout"`
	Content string     `json:"content"`
	Mode    RenderMode `json:"mode"`
	Entry   Entry      `json:"entry"`
}

// Children returns the content components mounted in the layout shell.
// A tree built by Resolve always has exactly one child.
func (t Tree) Children() []string {
	if t.Content == "" {
		return nil
	}
	return []string{t.Content}
}

// Resolver maps request paths to render trees using a Table.
type Resolver struct {
	table *Table
}

// NewResolver returns a Resolver over table.
func NewResolver(table *Table) (*Resolver, error) {
	if table == nil || table.Len() == 0 {
		return nil, ErrEmptyTable
	}
	return &Resolver{table: table}, nil
}

// Table returns the table the resolver reads from.
func (r *Resolver) Table() *Table {
	return r.table
}

// Resolve canonicalizes path and returns the render tree registered for it.
// Unknown paths return an error wrapping ErrNoRoute; malformed paths return
// the canonicalization error.
func (r *Resolver) Resolve(path string) (Tree, error) {
	canonical, err := Canonicalize(path)
	if err != nil {
		return Tree{}, fmt.Errorf("canonicalize %q: %w", path, err)
	}
	e, ok := r.table.Lookup(canonical)
	if !ok {
		return Tree{}, fmt.Errorf("%w: %s", ErrNoRoute, canonical)
	}
	return Tree{
		Layout:  e.Layout,
		Content: e.Content,
		Mode:    e.Mode,
		Entry:   e,
	}, nil
}

// IsPathError reports whether err came from a malformed request path rather
// than a missing route.
func IsPathError(err error) bool {
	return errors.Is(err, ErrBackslashInPath) ||
		errors.Is(err, ErrNullByteInPath) ||
		errors.Is(err, ErrInvalidPercentEscape) ||
		errors.Is(err, ErrPathEscapesRoot)
}
