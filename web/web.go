// Package web embeds the HTML templates and static assets so the binary
// runs without a checkout next to it.
package web

import (
	"embed"
	"io/fs"
)

// Templates holds templates/*.html. base.html defines the "layout" every
// page renders through; each other file is one page.
//
//go:embed templates/*.html
var Templates embed.FS

//go:embed static
var static embed.FS

// Static returns the static asset tree rooted at static/, ready for
// http.FileServerFS.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		// Only possible if the embed directive and the path disagree.
		panic("web: static assets missing: " + err.Error())
	}
	return sub
}
