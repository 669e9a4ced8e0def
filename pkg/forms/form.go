// Package forms binds submitted request data to model fields, validates it
// and persists it through a repository.
package forms

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/khaledsukkar2/swiftcrud/pkg/crud"
)

// maxMultipartMemory bounds in-memory parsing of multipart bodies
const maxMultipartMemory = 32 << 20 // 32 MB

var validate = validator.New()

// Field declares one form field
type Field struct {
	// Name is the form value name and the model column it binds to
	Name string

	// Rules is a validator tag expression, e.g. "required,max=150".
	// Empty means the field is accepted as-is.
	Rules string
}

// ModelForm is a single-use form over a declared field set. Construct one
// per request, bind it to the request body and save it through the
// repository. With an instance set, Save updates that row; otherwise it
// inserts a new one.
type ModelForm struct {
	fields   []Field
	repo     crud.Repository
	values   crud.Record
	files    map[string]*multipart.FileHeader
	errors   map[string][]string
	instance crud.Record
	bound    bool
}

var _ crud.Form = (*ModelForm)(nil)

// New creates a form that persists through repo
func New(repo crud.Repository, fields ...Field) *ModelForm {
	return &ModelForm{
		fields: fields,
		repo:   repo,
		errors: make(map[string][]string),
	}
}

// Bind reads form-encoded or multipart data from the request. Only declared
// fields are bound; everything else in the body is ignored.
func (f *ModelForm) Bind(r *http.Request) error {
	contentType := r.Header.Get("Content-Type")
	if hasMultipartBody(contentType) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return fmt.Errorf("failed to parse multipart form: %w", err)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("failed to parse form: %w", err)
		}
	}

	f.values = make(crud.Record, len(f.fields))
	f.files = make(map[string]*multipart.FileHeader)

	for _, field := range f.fields {
		if r.MultipartForm != nil {
			if headers := r.MultipartForm.File[field.Name]; len(headers) > 0 {
				f.files[field.Name] = headers[0]
				f.values[field.Name] = headers[0].Filename
				continue
			}
		}
		f.values[field.Name] = r.PostFormValue(field.Name)
	}

	f.bound = true
	return nil
}

// Valid runs the declared validation rules over the bound values. An
// unbound form is invalid, matching the behavior of rendering an empty
// creation form.
func (f *ModelForm) Valid() bool {
	f.errors = make(map[string][]string)
	if !f.bound {
		return false
	}

	for _, field := range f.fields {
		if field.Rules == "" {
			continue
		}
		if err := validate.Var(f.values[field.Name], field.Rules); err != nil {
			f.errors[field.Name] = append(f.errors[field.Name], validationMessage(field, err))
		}
	}

	return len(f.errors) == 0
}

// Errors returns validation errors keyed by field name. Populated by Valid.
func (f *ModelForm) Errors() map[string][]string {
	return f.errors
}

// Value returns the bound value of a field, or the instance's value when
// the form is unbound. Templates use this to pre-fill edit forms.
func (f *ModelForm) Value(name string) interface{} {
	if f.bound {
		return f.values[name]
	}
	if f.instance != nil {
		return f.instance[name]
	}
	return nil
}

// File returns the uploaded file bound to a field, if any
func (f *ModelForm) File(name string) *multipart.FileHeader {
	return f.files[name]
}

// SetInstance makes Save update the given row instead of inserting
func (f *ModelForm) SetInstance(obj crud.Record) {
	f.instance = obj
}

// Instance returns the update target, or nil for creation forms
func (f *ModelForm) Instance() crud.Record {
	return f.instance
}

// Save persists the bound values and returns the resulting row
func (f *ModelForm) Save(ctx context.Context) (crud.Record, error) {
	if !f.bound {
		return nil, fmt.Errorf("cannot save an unbound form")
	}

	data := make(crud.Record, len(f.values))
	for k, v := range f.values {
		data[k] = v
	}

	if f.instance != nil {
		pk := fmt.Sprintf("%v", f.instance[f.repo.PKColumn()])
		return f.repo.Update(ctx, pk, data)
	}
	return f.repo.Insert(ctx, data)
}

// validationMessage turns a validator error into a per-field message
func validationMessage(field Field, err error) string {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return fmt.Sprintf("%s failed the %q rule", field.Name, verrs[0].Tag())
	}
	return err.Error()
}

func hasMultipartBody(contentType string) bool {
	const prefix = "multipart/form-data"
	return len(contentType) >= len(prefix) && contentType[:len(prefix)] == prefix
}
