package crud

// Definition configures a CRUD view for a single resource. It replaces the
// attribute-and-reflection configuration of class-based views with an
// explicit struct validated eagerly at view construction.
type Definition struct {
	// Name is the singular resource name, used as the detail context key and
	// in synthesized template names. Required.
	Name string

	// PluralName is the list context key. Defaults to Name + "s".
	PluralName string

	// PKParam is the path parameter carrying the primary key. Defaults to "pk".
	PKParam string

	// Form constructs a fresh form for create and update requests. Required
	// when those operations are allowed.
	Form func() Form

	// TemplateFolder is the directory template names are synthesized under
	// as "{TemplateFolder}/{Name}_{operation}.html".
	TemplateFolder string

	// Templates overrides the synthesized template name per operation
	Templates map[Operation]string

	// RedirectTo is the target of post-write redirects. Required when
	// create, update or delete are allowed.
	RedirectTo string

	// PaginateBy enables pagination of the list view with the given page
	// size. Zero disables pagination.
	PaginateBy int

	// Allowed restricts the operations this view serves. Empty means all five.
	Allowed []Operation
}

// ObjectKey returns the context key for a single object
func (d *Definition) ObjectKey() string {
	return d.Name
}

// CollectionKey returns the context key for the object collection
func (d *Definition) CollectionKey() string {
	if d.PluralName != "" {
		return d.PluralName
	}
	return d.Name + "s"
}

// PKParamName returns the configured primary key parameter name
func (d *Definition) PKParamName() string {
	if d.PKParam != "" {
		return d.PKParam
	}
	return "pk"
}

// AllowedOperations returns the operations this view serves, in the fixed
// expansion order
func (d *Definition) AllowedOperations() []Operation {
	if len(d.Allowed) == 0 {
		return AllOperations
	}
	// Preserve the fixed order regardless of how Allowed was written
	ops := make([]Operation, 0, len(d.Allowed))
	for _, op := range AllOperations {
		if d.Permits(op) {
			ops = append(ops, op)
		}
	}
	return ops
}

// Permits reports whether the view serves the given operation
func (d *Definition) Permits(op Operation) bool {
	if len(d.Allowed) == 0 {
		return true
	}
	for _, allowed := range d.Allowed {
		if allowed == op {
			return true
		}
	}
	return false
}

func (d *Definition) needsForm() bool {
	return d.Permits(OpCreate) || d.Permits(OpUpdate)
}

func (d *Definition) needsRedirect() bool {
	return d.Permits(OpCreate) || d.Permits(OpUpdate) || d.Permits(OpDelete)
}

// Validate checks the definition for configuration faults. It is called by
// NewView so misconfiguration fails at startup rather than at request time.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return ConfigError("you must provide the resource Name")
	}
	if d.TemplateFolder == "" && len(d.Templates) == 0 {
		return ConfigError("you must provide either TemplateFolder or Templates")
	}
	if d.needsForm() && d.Form == nil {
		return ConfigError("you must provide the Form attribute for create and update")
	}
	if d.needsRedirect() && d.RedirectTo == "" {
		return ConfigError("no URL to redirect to, provide RedirectTo")
	}
	if d.PaginateBy < 0 {
		return ConfigError("PaginateBy must not be negative")
	}
	return nil
}

// Warnings returns non-fatal configuration problems. A resource named after
// a reserved path keyword is ambiguous under path-segment dispatch; the
// behavior is surfaced rather than silently resolved.
func (d *Definition) Warnings() []string {
	var warnings []string
	if ReservedKeyword(d.Name) {
		warnings = append(warnings,
			"resource name \""+d.Name+"\" collides with a reserved path keyword; "+
				"dispatch over its routes is ambiguous")
	}
	return warnings
}
