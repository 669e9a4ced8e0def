// Package response renders HTTP responses for the CRUD views.
package response

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
)

// Renderer renders HTML templates loaded from a template directory.
// Templates are named by their slash-separated path relative to the root,
// so "employee/employee_list.html" under the root is addressed by exactly
// that name.
type Renderer struct {
	templates      *template.Template
	defaultHeaders map[string]string
}

// NewRenderer creates a renderer with no templates loaded
func NewRenderer() *Renderer {
	return &Renderer{
		defaultHeaders: make(map[string]string),
	}
}

// SetDefaultHeader sets a header sent with every response
func (r *Renderer) SetDefaultHeader(key, value string) {
	r.defaultHeaders[key] = value
}

// SetTemplates replaces the loaded template set
func (r *Renderer) SetTemplates(templates *template.Template) {
	r.templates = templates
}

// LoadDir walks the directory and parses every .html file, naming each
// template by its path relative to dir. ParseGlob names templates by base
// name only, which collides across per-resource folders; walking preserves
// the folder structure in the name.
func (r *Renderer) LoadDir(dir string) error {
	root := template.New("")

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".html" {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		_, err = root.New(filepath.ToSlash(rel)).Parse(string(content))
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to load templates from %s: %w", dir, err)
	}

	r.templates = root
	return nil
}

// Has reports whether a template with the given name is loaded
func (r *Renderer) Has(name string) bool {
	return r.templates != nil && r.templates.Lookup(name) != nil
}

// HTML renders a named template as an HTML response
func (r *Renderer) HTML(w http.ResponseWriter, statusCode int, name string, data interface{}) error {
	if r.templates == nil {
		return fmt.Errorf("no templates loaded")
	}

	for key, value := range r.defaultHeaders {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return nil
}

// Text renders a plain text response
func (r *Renderer) Text(w http.ResponseWriter, statusCode int, text string) error {
	for key, value := range r.defaultHeaders {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)

	_, err := w.Write([]byte(text))
	return err
}

// Redirect sends a redirect response
func (r *Renderer) Redirect(w http.ResponseWriter, req *http.Request, url string, statusCode int) {
	http.Redirect(w, req, url, statusCode)
}
