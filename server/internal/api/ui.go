package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed ui/index.html
var uiFS embed.FS

var pageTmpl = template.Must(template.ParseFS(uiFS, "ui/index.html"))

type pageData struct {
	Title      string
	StreamPath string
	KeyParam   string
}

// UI serves the dashboard page at "/". Any other path is 404. The page is
// rendered once, up front.
func UI(title string) (http.Handler, error) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, pageData{
		Title:      title,
		StreamPath: "/ws/stream",
		KeyParam:   "api_key",
	}); err != nil {
		return nil, fmt.Errorf("render dashboard page: %w", err)
	}
	page := buf.Bytes()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page) //nolint:errcheck
	}), nil
}
