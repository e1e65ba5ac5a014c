package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"maps"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/simp-lee/pageshell/web"
)

// testFS mirrors the web/templates layout with one layout shell, two
// partials, one content fragment and two error pages.
func testFS() fstest.MapFS {
	errorPage := []byte(`<h1>{{ .Status }} {{ .Title }}</h1><p>{{ .Message }}</p>`)
	return fstest.MapFS{
		"templates/partials/nav.html": &fstest.MapFile{
			Data: []byte(`{{ define "nav" }}<nav>Navigation</nav>{{ end }}`),
		},
		"templates/partials/mount.html": &fstest.MapFile{
			Data: []byte(`{{ define "mount" }}<div data-component="{{ .Component }}">{{ .Inner }}</div>{{ end }}`),
		},
		"templates/content/Hello.html": &fstest.MapFile{
			Data: []byte(`<p>Hello {{ .Name }}</p>`),
		},
		"templates/layouts/main.html": &fstest.MapFile{
			Data: []byte(`<!DOCTYPE html><html><body data-layout="main">{{ template "nav" . }}{{ template "mount" . }}</body></html>`),
		},
		"templates/errors/404.html": &fstest.MapFile{Data: errorPage},
		"templates/errors/500.html": &fstest.MapFile{Data: errorPage},
	}
}

func TestTemplateFuncMap_JSON(t *testing.T) {
	fn := templateFuncMap()["json"].(func(any) template.JS)

	t.Run("struct", func(t *testing.T) {
		got := fn(struct {
			Path string `json:"path"`
		}{"/quiz/results"})
		if got != template.JS(`{"path":"/quiz/results"}`) {
			t.Errorf("json(struct) = %q", got)
		}
	})

	t.Run("escapes script breakers", func(t *testing.T) {
		got := fn(`</script><script>alert(1)`)
		if strings.Contains(string(got), "</script>") {
			t.Errorf("json output %q contains a closing script tag", got)
		}
		var roundtrip string
		if err := json.Unmarshal([]byte(got), &roundtrip); err != nil {
			t.Fatalf("json output %q is not valid JSON: %v", got, err)
		}
		if roundtrip != `</script><script>alert(1)` {
			t.Errorf("round-tripped value = %q", roundtrip)
		}
	})

	t.Run("unmarshalable returns null", func(t *testing.T) {
		if got := fn(make(chan int)); got != "null" {
			t.Errorf("json(chan) = %q; want null", got)
		}
	})
}

func TestNewTemplateRenderer_Release(t *testing.T) {
	r, err := NewTemplateRenderer(testFS(), false)
	if err != nil {
		t.Fatalf("NewTemplateRenderer() error: %v", err)
	}
	if r.debug {
		t.Error("expected debug=false")
	}
	if r.set == nil {
		t.Fatal("template set should be cached in release mode")
	}

	pages := slices.Sorted(maps.Keys(r.set.pages))
	want := []string{"errors/404.html", "errors/500.html", "layouts/main.html"}
	if !slices.Equal(pages, want) {
		t.Errorf("cached pages = %v, want %v", pages, want)
	}
}

func TestNewTemplateRenderer_Debug(t *testing.T) {
	r, err := NewTemplateRenderer(testFS(), true)
	if err != nil {
		t.Fatalf("NewTemplateRenderer() error: %v", err)
	}
	if r.set != nil {
		t.Error("template set should not be cached in debug mode")
	}
}

func TestNewTemplateRenderer_InvalidTemplate(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{"bad layout", "templates/layouts/main.html"},
		{"bad partial", "templates/partials/nav.html"},
		{"bad content", "templates/content/Hello.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := testFS()
			fsys[tt.file] = &fstest.MapFile{Data: []byte(`{{ invalid_syntax `)}
			if _, err := NewTemplateRenderer(fsys, false); err == nil {
				t.Fatal("expected error for invalid template syntax")
			}
		})
	}
}

func TestTemplateRenderer_Execute(t *testing.T) {
	for _, debug := range []bool{false, true} {
		t.Run(fmt.Sprintf("debug=%v", debug), func(t *testing.T) {
			r, err := NewTemplateRenderer(testFS(), debug)
			if err != nil {
				t.Fatalf("NewTemplateRenderer() error: %v", err)
			}

			var buf bytes.Buffer
			err = r.Execute(&buf, "layouts/main.html", map[string]any{"Component": "QuizContent", "Inner": template.HTML("")})
			if err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			want := `<!DOCTYPE html><html><body data-layout="main"><nav>Navigation</nav><div data-component="QuizContent"></div></body></html>`
			if buf.String() != want {
				t.Errorf("Execute() = %q\nwant %q", buf.String(), want)
			}

			if err := r.Execute(&buf, "layouts/missing.html", nil); err == nil {
				t.Error("Execute() should fail for a missing page")
			}
		})
	}
}

func TestTemplateRenderer_Fragment(t *testing.T) {
	r, err := NewTemplateRenderer(testFS(), false)
	if err != nil {
		t.Fatalf("NewTemplateRenderer() error: %v", err)
	}

	got, ok, err := r.Fragment("content/Hello.html", map[string]string{"Name": "<Ada>"})
	if err != nil || !ok {
		t.Fatalf("Fragment() = %q, %v, %v", got, ok, err)
	}
	if got != template.HTML("<p>Hello &lt;Ada&gt;</p>") {
		t.Errorf("Fragment() = %q", got)
	}

	if _, ok, err := r.Fragment("content/Missing.html", nil); ok || err != nil {
		t.Errorf("Fragment(missing) = %v, %v; want false, nil", ok, err)
	}
}

func TestTemplateRenderer_Check(t *testing.T) {
	r, err := NewTemplateRenderer(testFS(), false)
	if err != nil {
		t.Fatalf("NewTemplateRenderer() error: %v", err)
	}
	if err := r.Check("layouts/main.html", "errors/404.html"); err != nil {
		t.Errorf("Check() error: %v", err)
	}
	err = r.Check("layouts/main.html", "layouts/auth.html")
	if err == nil || !strings.Contains(err.Error(), "layouts/auth.html") {
		t.Errorf("Check() error = %v, want one naming layouts/auth.html", err)
	}
}

func TestTemplateRenderer_Instance(t *testing.T) {
	r, err := NewTemplateRenderer(testFS(), true)
	if err != nil {
		t.Fatalf("NewTemplateRenderer() error: %v", err)
	}

	inst := r.Instance("errors/404.html", map[string]any{"Status": 404, "Title": "Not Found", "Message": "gone"})
	w := httptest.NewRecorder()
	if err := inst.Render(w); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if got := w.Body.String(); got != "<h1>404 Not Found</h1><p>gone</p>" {
		t.Errorf("body = %q", got)
	}

	inst = r.Instance("nonexistent.html", nil)
	if err := inst.Render(httptest.NewRecorder()); err == nil {
		t.Error("Render() should return error for nonexistent template")
	}
}

func TestTemplateRenderer_DebugReportsParseErrors(t *testing.T) {
	fsys := testFS()
	r, err := NewTemplateRenderer(fsys, true)
	if err != nil {
		t.Fatalf("NewTemplateRenderer() error: %v", err)
	}

	// Edits after startup are picked up, including broken ones.
	fsys["templates/layouts/main.html"] = &fstest.MapFile{Data: []byte(`{{ if }}`)}
	if err := r.Execute(&bytes.Buffer{}, "layouts/main.html", nil); err == nil {
		t.Error("Execute() should surface the parse error in debug mode")
	}
	if err := r.Instance("layouts/main.html", nil).Render(httptest.NewRecorder()); err == nil {
		t.Error("Render() should surface the parse error in debug mode")
	}
}

func TestTemplateRenderer_EmbeddedTemplates(t *testing.T) {
	r, err := NewTemplateRenderer(web.EmbeddedFS, false)
	if err != nil {
		t.Fatalf("NewTemplateRenderer() error: %v", err)
	}
	if err := r.Check(requiredTemplates()...); err != nil {
		t.Errorf("embedded templates incomplete: %v", err)
	}
}

func TestHTMLInstance_WriteContentType(t *testing.T) {
	w := httptest.NewRecorder()
	h := &HTMLInstance{}
	h.WriteContentType(w)

	got := w.Header().Get("Content-Type")
	want := "text/html; charset=utf-8"
	if got != want {
		t.Errorf("Content-Type = %q; want %q", got, want)
	}
}

func TestHTMLInstance_WriteContentType_NoOverwrite(t *testing.T) {
	w := httptest.NewRecorder()
	w.Header().Set("Content-Type", "application/json")

	h := &HTMLInstance{}
	h.WriteContentType(w)

	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type should not be overwritten; got %q", got)
	}
}

func TestHTMLInstance_Render_ParseError(t *testing.T) {
	h := &HTMLInstance{err: fmt.Errorf("parse error")}

	err := h.Render(httptest.NewRecorder())
	if err == nil || !strings.Contains(err.Error(), "parse error") {
		t.Errorf("Render() error = %v; want parse error", err)
	}
}

func TestDiscoverPages(t *testing.T) {
	r := &TemplateRenderer{fs: testFS()}

	pages, err := r.discoverPages()
	if err != nil {
		t.Fatalf("discoverPages() error: %v", err)
	}
	slices.Sort(pages)
	want := []string{"templates/errors/404.html", "templates/errors/500.html", "templates/layouts/main.html"}
	if !slices.Equal(pages, want) {
		t.Errorf("discoverPages() = %v, want %v", pages, want)
	}

	r = &TemplateRenderer{fs: fstest.MapFS{}}
	if pages, err := r.discoverPages(); err != nil || len(pages) != 0 {
		t.Errorf("discoverPages(empty) = %v, %v; want none, nil", pages, err)
	}
}
