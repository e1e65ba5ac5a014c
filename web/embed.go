// Package web embeds the HTML templates and static assets served by the
// release build.
package web

import "embed"

// EmbeddedFS holds templates/ and static/.
//
//go:embed templates static
var EmbeddedFS embed.FS
