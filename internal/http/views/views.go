package views

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Load parses the embedded page templates. Each page is addressed by its file name.
func Load() (*template.Template, error) {
	return template.New("").ParseFS(files, "templates/*.html")
}
