package crud

import (
	"context"
	"net/http"
)

// Record is a single model row keyed by column name
type Record map[string]interface{}

// Repository is the data-access collaborator a view reads and writes through.
// Implementations return ErrNotFound (possibly wrapped) when a primary key
// does not resolve to a row.
type Repository interface {
	// All returns every row of the model
	All(ctx context.Context) ([]Record, error)

	// Get returns the row with the given primary key
	Get(ctx context.Context, pk string) (Record, error)

	// Insert persists a new row and returns it
	Insert(ctx context.Context, data Record) (Record, error)

	// Update persists changes to the row with the given primary key
	Update(ctx context.Context, pk string, data Record) (Record, error)

	// Delete removes the row with the given primary key
	Delete(ctx context.Context, pk string) error

	// PKColumn returns the primary key column name
	PKColumn() string
}

// Form binds submitted data to model fields, validates it and persists it.
// A form is single-use: construct one per request via Definition.Form.
type Form interface {
	// Bind reads form-encoded or multipart data from the request
	Bind(r *http.Request) error

	// Valid runs validation over the bound data. An unbound form is invalid.
	Valid() bool

	// Errors returns field validation errors keyed by field name
	Errors() map[string][]string

	// SetInstance makes the form update an existing row instead of inserting
	SetInstance(obj Record)

	// Instance returns the update target, or nil for creation forms
	Instance() Record

	// Save persists the bound data and returns the resulting row
	Save(ctx context.Context) (Record, error)
}

// TemplateRenderer renders a named template to the response. Has reports
// whether a template name exists in the loaded set so the view can fail
// template resolution eagerly.
type TemplateRenderer interface {
	Has(name string) bool
	HTML(w http.ResponseWriter, statusCode int, name string, data interface{}) error
}
