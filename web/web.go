// Package web serves the static page shells. Page routes are plain HTML
// files; the flash messages that would render into a template surface as
// response headers instead.
package web

import (
	"net/http"
	"path/filepath"

	"github.com/user/miniweb-go/session"
)

// Page returns a handler serving dir/file, emitting any pending flash
// messages for the caller's session.
func Page(store session.Store, dir, file string) http.HandlerFunc {
	path := filepath.Join(dir, file)
	return func(w http.ResponseWriter, r *http.Request) {
		session.EmitFlashes(w, r, store)
		http.ServeFile(w, r, path)
	}
}

// StaticPage serves dir/file with no session involvement, for the regform
// app which has no session layer.
func StaticPage(dir, file string) http.HandlerFunc {
	path := filepath.Join(dir, file)
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, path)
	}
}
