package crud

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Context is the data handed to templates
type Context map[string]interface{}

// View serves the five CRUD operations for a single resource. It composes a
// Definition with the repository and renderer collaborators and selects the
// handler for each request through the dispatch heuristic.
type View struct {
	def      *Definition
	repo     Repository
	renderer TemplateRenderer
	logger   *zap.Logger
}

// ViewOption configures optional view collaborators
type ViewOption func(*View)

// WithLogger sets the logger used for handler failures
func WithLogger(logger *zap.Logger) ViewOption {
	return func(v *View) {
		v.logger = logger
	}
}

// NewView creates a view from a validated definition. Configuration faults
// are returned here, at startup, rather than discovered at request time.
func NewView(def *Definition, repo Repository, renderer TemplateRenderer, opts ...ViewOption) (*View, error) {
	if def == nil {
		return nil, ConfigError("view definition cannot be nil")
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if repo == nil {
		return nil, ConfigError("you must provide the repository")
	}
	if renderer == nil {
		return nil, ConfigError("you must provide the template renderer")
	}

	v := &View{
		def:      def,
		repo:     repo,
		renderer: renderer,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Definition returns the view's configuration
func (v *View) Definition() *Definition {
	return v.def
}

// ServeHTTP resolves the request to an operation and runs its handler
func (v *View) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pkParam := v.def.PKParamName()

	params := map[string]string{}
	pk := chi.URLParam(r, pkParam)
	if pk != "" {
		params[pkParam] = pk
	}

	op, err := Resolve(r.Method, SplitPath(r.URL.Path), params, pkParam)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	if !v.def.Permits(op) {
		v.respondError(w, r, fmt.Errorf("%w: %s is not allowed for %s", ErrNotPermitted, op, v.def.Name))
		return
	}

	switch op {
	case OpList:
		err = v.list(w, r)
	case OpDetail:
		err = v.detail(w, r, pk)
	case OpCreate:
		err = v.create(w, r)
	case OpUpdate:
		err = v.update(w, r, pk)
	case OpDelete:
		err = v.delete(w, r, pk)
	}

	if err != nil {
		v.respondError(w, r, err)
	}
}

// list renders the collection, paginated when PaginateBy is set
func (v *View) list(w http.ResponseWriter, r *http.Request) error {
	objects, err := v.repo.All(r.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch %s collection: %w", v.def.Name, err)
	}

	var data interface{} = objects
	if v.def.PaginateBy > 0 {
		data = Paginate(objects, v.def.PaginateBy, pageNumber(r))
	}

	return v.render(w, OpList, Context{v.def.CollectionKey(): data})
}

// detail renders a single object fetched by primary key
func (v *View) detail(w http.ResponseWriter, r *http.Request, pk string) error {
	obj, err := v.repo.Get(r.Context(), pk)
	if err != nil {
		return err
	}
	return v.render(w, OpDetail, Context{v.def.ObjectKey(): obj})
}

// create binds the form on POST; valid data persists and redirects, anything
// else re-renders the form with its error state
func (v *View) create(w http.ResponseWriter, r *http.Request) error {
	form := v.def.Form()

	if r.Method == http.MethodPost {
		if err := form.Bind(r); err != nil {
			return fmt.Errorf("failed to bind %s form: %w", v.def.Name, err)
		}
		if form.Valid() {
			if _, err := form.Save(r.Context()); err != nil {
				return fmt.Errorf("failed to create %s: %w", v.def.Name, err)
			}
			return v.redirect(w, r)
		}
	}

	return v.render(w, OpCreate, Context{"form": form})
}

// update binds the form against the fetched object; the invalid path
// re-renders with both the form and the object in context
func (v *View) update(w http.ResponseWriter, r *http.Request, pk string) error {
	obj, err := v.repo.Get(r.Context(), pk)
	if err != nil {
		return err
	}

	form := v.def.Form()
	form.SetInstance(obj)

	if r.Method == http.MethodPost || r.Method == http.MethodPut {
		if err := form.Bind(r); err != nil {
			return fmt.Errorf("failed to bind %s form: %w", v.def.Name, err)
		}
		if form.Valid() {
			if _, err := form.Save(r.Context()); err != nil {
				return fmt.Errorf("failed to update %s: %w", v.def.Name, err)
			}
			return v.redirect(w, r)
		}
	}

	return v.render(w, OpUpdate, Context{"form": form, v.def.ObjectKey(): obj})
}

// delete removes the object and redirects. Deletion is immediate; there is
// no confirmation step at this layer.
func (v *View) delete(w http.ResponseWriter, r *http.Request, pk string) error {
	if _, err := v.repo.Get(r.Context(), pk); err != nil {
		return err
	}
	if err := v.repo.Delete(r.Context(), pk); err != nil {
		return fmt.Errorf("failed to delete %s: %w", v.def.Name, err)
	}
	return v.redirect(w, r)
}

// TemplateName resolves the template for an operation: an explicit override
// wins, otherwise the name is synthesized from TemplateFolder and the
// resource name. The resolved name must exist in the renderer's set.
func (v *View) TemplateName(op Operation) (string, error) {
	name, ok := v.def.Templates[op]
	if !ok {
		if v.def.TemplateFolder == "" {
			return "", ConfigError("provide either TemplateFolder or a Templates entry for %s", op)
		}
		name = fmt.Sprintf("%s/%s_%s.html", v.def.TemplateFolder, v.def.Name, op)
	}

	if !v.renderer.Has(name) {
		return "", fmt.Errorf("%w: %s, check TemplateFolder and Templates", ErrTemplateNotFound, name)
	}
	return name, nil
}

// RedirectTarget returns the configured post-write redirect target
func (v *View) RedirectTarget() (string, error) {
	if v.def.RedirectTo == "" {
		return "", ConfigError("no URL to redirect to, provide RedirectTo")
	}
	return v.def.RedirectTo, nil
}

func (v *View) render(w http.ResponseWriter, op Operation, data Context) error {
	name, err := v.TemplateName(op)
	if err != nil {
		return err
	}
	return v.renderer.HTML(w, http.StatusOK, name, data)
}

func (v *View) redirect(w http.ResponseWriter, r *http.Request) error {
	target, err := v.RedirectTarget()
	if err != nil {
		return err
	}
	http.Redirect(w, r, target, http.StatusFound)
	return nil
}

// respondError maps handler errors onto the response taxonomy: lookup
// failures become 404, excluded operations 403 and everything else 500.
func (v *View) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, ErrNotPermitted):
		v.logger.Warn("operation not permitted",
			zap.String("resource", v.def.Name),
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method))
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		v.logger.Error("view request failed",
			zap.String("resource", v.def.Name),
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
			zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// pageNumber reads the 1-based page query parameter
func pageNumber(r *http.Request) int {
	value := r.URL.Query().Get("page")
	if value == "" {
		return 1
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
