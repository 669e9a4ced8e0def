package crud

// Operation represents one of the five CRUD operations a view can serve
type Operation int

const (
	// OpList renders the full collection (GET /prefix/)
	OpList Operation = iota
	// OpCreate renders the creation form and persists new objects
	OpCreate
	// OpDetail renders a single object fetched by primary key
	OpDetail
	// OpUpdate renders the edit form and persists changes
	OpUpdate
	// OpDelete removes an object and redirects
	OpDelete
)

// AllOperations lists every operation in the fixed order used for URL
// expansion: list, create, detail, update, delete.
var AllOperations = []Operation{OpList, OpCreate, OpDetail, OpUpdate, OpDelete}

// String returns the string representation of the operation
func (o Operation) String() string {
	switch o {
	case OpList:
		return "list"
	case OpCreate:
		return "create"
	case OpDetail:
		return "detail"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// ParseOperation maps an operation name to its Operation value
func ParseOperation(name string) (Operation, bool) {
	switch name {
	case "list":
		return OpList, true
	case "create":
		return OpCreate, true
	case "detail":
		return OpDetail, true
	case "update":
		return OpUpdate, true
	case "delete":
		return OpDelete, true
	default:
		return 0, false
	}
}

// ReservedKeyword reports whether name collides with one of the literal path
// keywords the dispatch heuristic reserves. A resource named after a keyword
// is ambiguous: its detail routes cannot be told apart from the keyword
// routes by path text alone.
func ReservedKeyword(name string) bool {
	switch name {
	case "list", "create", "update", "delete":
		return true
	default:
		return false
	}
}
