package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin/render"
)

// TemplateRenderer is the Gin HTML renderer for layout shells and error pages.
//
// In debug mode templates are re-parsed from the filesystem on every call so
// edits show up without a restart. In release mode they are parsed once at
// startup.
//
// The filesystem must contain a templates/ directory laid out as:
//
//	templates/
//	  partials/  shared fragments (head, nav, mount, footer, scripts)
//	  content/   optional server-rendered bodies, one per content component
//	  layouts/   one full document per layout shell (main.html, auth.html)
//	  errors/    status pages (404.html, 500.html, ...)
//
// Partials and content fragments form a base set that is cloned for every
// layout and error page, so each page can call any partial by name.
type TemplateRenderer struct {
	fs      fs.FS
	funcMap template.FuncMap
	debug   bool
	set     *templateSet // release mode only
}

type templateSet struct {
	base  *template.Template
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*TemplateRenderer)(nil)

// NewTemplateRenderer creates a TemplateRenderer backed by fsys. Use
// os.DirFS("web") with debug=true for hot reload, web.EmbeddedFS otherwise.
// Templates are always parsed once here so syntax errors fail startup.
func NewTemplateRenderer(fsys fs.FS, debug bool) (*TemplateRenderer, error) {
	r := &TemplateRenderer{
		fs:      fsys,
		funcMap: templateFuncMap(),
		debug:   debug,
	}

	set, err := r.parse()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if !debug {
		r.set = set
	}
	return r, nil
}

// Instance implements render.HTMLRender. name is relative to templates/,
// e.g. "errors/404.html".
func (r *TemplateRenderer) Instance(name string, data any) render.Render {
	set, err := r.current()
	if err != nil {
		return &HTMLInstance{Name: name, err: err}
	}
	return &HTMLInstance{
		Template: set.pages[name],
		Name:     name,
		Data:     data,
	}
}

// Execute writes page name rendered with data to w.
func (r *TemplateRenderer) Execute(w io.Writer, name string, data any) error {
	set, err := r.current()
	if err != nil {
		return err
	}
	t, ok := set.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, name, data)
}

// Fragment renders the base-set template name, typically a content/ body,
// and reports whether it exists.
func (r *TemplateRenderer) Fragment(name string, data any) (template.HTML, bool, error) {
	set, err := r.current()
	if err != nil {
		return "", false, err
	}
	if set.base.Lookup(name) == nil {
		return "", false, nil
	}
	var b strings.Builder
	if err := set.base.ExecuteTemplate(&b, name, data); err != nil {
		return "", true, fmt.Errorf("execute %s: %w", name, err)
	}
	return template.HTML(b.String()), true, nil
}

// Check returns an error naming the first page in required that is missing.
func (r *TemplateRenderer) Check(required ...string) error {
	set, err := r.current()
	if err != nil {
		return err
	}
	for _, name := range required {
		if _, ok := set.pages[name]; !ok {
			return fmt.Errorf("template %q not found", name)
		}
	}
	return nil
}

func (r *TemplateRenderer) current() (*templateSet, error) {
	if r.debug {
		return r.parse()
	}
	return r.set, nil
}

// parse builds the base set from partials and content fragments, then clones
// it once per layout and error page.
func (r *TemplateRenderer) parse() (*templateSet, error) {
	base := template.New("").Funcs(r.funcMap)
	for _, dir := range []string{"partials", "content"} {
		files, err := fs.Glob(r.fs, "templates/"+dir+"/*.html")
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", dir, err)
		}
		for _, f := range files {
			if err := parseInto(base, r.fs, f); err != nil {
				return nil, err
			}
		}
	}

	pageFiles, err := r.discoverPages()
	if err != nil {
		return nil, fmt.Errorf("discover pages: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, pf := range pageFiles {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone base for %s: %w", pf, err)
		}
		if err := parseInto(clone, r.fs, pf); err != nil {
			return nil, err
		}
		pages[strings.TrimPrefix(pf, "templates/")] = clone
	}

	return &templateSet{base: base, pages: pages}, nil
}

// parseInto adds file f to t under its name relative to templates/.
func parseInto(t *template.Template, fsys fs.FS, f string) error {
	content, err := fs.ReadFile(fsys, f)
	if err != nil {
		return fmt.Errorf("read %s: %w", f, err)
	}
	if _, err := t.New(strings.TrimPrefix(f, "templates/")).Parse(string(content)); err != nil {
		return fmt.Errorf("parse %s: %w", f, err)
	}
	return nil
}

// discoverPages finds the .html files under templates/layouts and
// templates/errors. Either directory may be absent.
func (r *TemplateRenderer) discoverPages() ([]string, error) {
	var pages []string
	for _, dir := range []string{"templates/layouts", "templates/errors"} {
		err := fs.WalkDir(r.fs, dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == dir && errors.Is(err, fs.ErrNotExist) {
					return fs.SkipDir
				}
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".html") {
				pages = append(pages, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return pages, nil
}

func templateFuncMap() template.FuncMap {
	return template.FuncMap{
		// json embeds v in a script context without html/template
		// re-escaping it. json.Marshal already escapes <, > and &.
		"json": func(v any) template.JS {
			b, err := json.Marshal(v)
			if err != nil {
				return template.JS("null")
			}
			return template.JS(b)
		},
	}
}

// HTMLInstance is a single template execution returned by
// TemplateRenderer.Instance.
type HTMLInstance struct {
	Template *template.Template
	Name     string
	Data     any
	err      error // parse error in debug mode
}

const htmlContentType = "text/html; charset=utf-8"

// Render writes the template output to w.
func (h *HTMLInstance) Render(w http.ResponseWriter) error {
	h.WriteContentType(w)
	if h.err != nil {
		return h.err
	}
	if h.Template == nil {
		return fmt.Errorf("template %q not found", h.Name)
	}
	return h.Template.ExecuteTemplate(w, h.Name, h.Data)
}

// WriteContentType sets Content-Type unless it is already set.
func (h *HTMLInstance) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if val := header["Content-Type"]; len(val) == 0 {
		header["Content-Type"] = []string{htmlContentType}
	}
}
