// Package router generates URL patterns for registered CRUD views.
//
// A Router holds a registry of (prefix, view, basename) triples built once
// during application startup. Registration validates prefix and basename
// uniqueness; URLs expands every registered view's allowed operations into a
// flat, ordered route table with a fixed per-operation shape:
//
//	list    prefix            {basename}_list
//	create  prefix create/    {basename}_create
//	detail  prefix {pk}/      {basename}_detail
//	update  prefix {pk}/update/  {basename}_update
//	delete  prefix {pk}/delete/  {basename}_delete
package router

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/khaledsukkar2/swiftcrud/pkg/crud"
)

// ErrEmptyRegistry is returned when URLs is called before any registration
var ErrEmptyRegistry = errors.New("router registry is empty, call Register first")

// DuplicateError reports a registration conflict with an existing entry
type DuplicateError struct {
	// Field is "prefix" or "basename"
	Field string
	Value string
}

// Error implements the error interface
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("router with %s %q is already registered, provide a unique %s",
		e.Field, e.Value, e.Field)
}

// Entry is one registered (prefix, view, basename) triple. Entries are
// immutable once added.
type Entry struct {
	Prefix   string
	View     *crud.View
	Basename string
}

// Pattern is one generated URL pattern entry, consumed by the HTTP mux at
// startup and never mutated afterwards.
type Pattern struct {
	Route   string
	Handler http.Handler
	Name    string
}

// Router accumulates view registrations and expands them into a route table.
// Build it completely during startup; it is read-only once serving begins.
type Router struct {
	registry []Entry
	logger   *zap.Logger
}

// Option configures the router
type Option func(*Router)

// WithLogger sets the logger used for registration warnings
func WithLogger(logger *zap.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// New creates an empty router
func New(opts ...Option) *Router {
	r := &Router{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a view under the given URL prefix. The prefix is normalized
// to end with exactly one trailing slash. An empty basename derives one from
// the view's resource name, lowercased. Duplicate prefixes and basenames are
// rejected with a DuplicateError.
func (r *Router) Register(prefix string, view *crud.View, basename string) error {
	if view == nil {
		return fmt.Errorf("cannot register a nil view under prefix %q", prefix)
	}

	if prefix != "" {
		prefix = strings.TrimRight(prefix, "/") + "/"
	}

	if basename == "" {
		basename = strings.ToLower(view.Definition().Name)
	}

	for _, entry := range r.registry {
		if entry.Prefix == prefix {
			return &DuplicateError{Field: "prefix", Value: prefix}
		}
		if entry.Basename == basename {
			return &DuplicateError{Field: "basename", Value: basename}
		}
	}

	for _, warning := range view.Definition().Warnings() {
		r.logger.Warn("view configuration warning",
			zap.String("prefix", prefix),
			zap.String("basename", basename),
			zap.String("warning", warning))
	}
	if crud.ReservedKeyword(strings.ToLower(basename)) {
		r.logger.Warn("basename collides with a reserved path keyword",
			zap.String("prefix", prefix),
			zap.String("basename", basename))
	}

	r.registry = append(r.registry, Entry{Prefix: prefix, View: view, Basename: basename})
	return nil
}

// Registry returns the registered entries in registration order
func (r *Router) Registry() []Entry {
	return r.registry
}

// URLs expands the registry into the flat route table. Order follows
// registration order, then the fixed operation order.
func (r *Router) URLs() ([]Pattern, error) {
	if len(r.registry) == 0 {
		return nil, ErrEmptyRegistry
	}

	var patterns []Pattern
	for _, entry := range r.registry {
		def := entry.View.Definition()
		name := strings.ToLower(entry.Basename)
		pkParam := def.PKParamName()

		for _, op := range def.AllowedOperations() {
			route, suffix := routeShape(op, entry.Prefix, pkParam)
			patterns = append(patterns, Pattern{
				Route:   route,
				Handler: entry.View,
				Name:    name + suffix,
			})
		}
	}
	return patterns, nil
}

// Handler mounts the generated route table onto a chi mux. Each pattern is
// registered for every method; the view's own dispatch decides which verbs
// it answers, and unmatched verb/path combinations come back as 405.
func (r *Router) Handler() (http.Handler, error) {
	patterns, err := r.URLs()
	if err != nil {
		return nil, err
	}

	mux := chi.NewRouter()
	for _, p := range patterns {
		route := p.Route
		if !strings.HasPrefix(route, "/") {
			route = "/" + route
		}
		mux.Handle(route, p.Handler)
	}
	return mux, nil
}

// routeShape returns the route string and name suffix for one operation
func routeShape(op crud.Operation, prefix, pkParam string) (string, string) {
	switch op {
	case crud.OpList:
		return prefix, "_list"
	case crud.OpCreate:
		return prefix + "create/", "_create"
	case crud.OpDetail:
		return fmt.Sprintf("%s{%s}/", prefix, pkParam), "_detail"
	case crud.OpUpdate:
		return fmt.Sprintf("%s{%s}/update/", prefix, pkParam), "_update"
	case crud.OpDelete:
		return fmt.Sprintf("%s{%s}/delete/", prefix, pkParam), "_delete"
	default:
		return prefix, "_unknown"
	}
}
