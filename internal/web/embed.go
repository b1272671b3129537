package web

import "embed"

// templatesFS embeds the HTML templates for server-side rendering.
//
//go:embed templates/*.html
var templatesFS embed.FS
