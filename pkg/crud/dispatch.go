package crud

import "strings"

// SplitPath splits a URL path on "/" and drops the empty segments produced
// by leading and trailing slashes.
func SplitPath(path string) []string {
	parts := strings.Split(path, "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// Resolve maps an inbound request to the Operation that should serve it.
//
// The last path segment selects the operation through a lookup built from
// the literal keywords list, create, update and delete plus the string form
// of the matched primary key parameter (which selects detail). A last
// segment matching neither - the bare resource prefix - defaults to list.
//
// GET and POST resolve through the lookup directly. PUT only reaches update
// and the DELETE verb only reaches delete; every other combination returns
// ErrNoMatch, which callers surface as method-not-allowed.
//
// This is a heuristic over the literal path text, not the matched route
// name. Resources named after a reserved keyword are ambiguous here; see
// Definition.Warnings.
func Resolve(method string, segments []string, params map[string]string, pkParam string) (Operation, error) {
	method = strings.ToLower(method)

	lookup := map[string]Operation{
		"list":   OpList,
		"create": OpCreate,
		"update": OpUpdate,
		"delete": OpDelete,
	}
	if pk, ok := params[pkParam]; ok && pk != "" {
		lookup[pk] = OpDetail
	}

	var last string
	if len(segments) > 0 {
		last = segments[len(segments)-1]
	}
	op, matched := lookup[last]

	switch method {
	case "get", "post":
		if !matched {
			// Bare prefix, no trailing keyword or pk
			return OpList, nil
		}
		return op, nil
	case "put":
		if matched && op == OpUpdate {
			return OpUpdate, nil
		}
	case "delete":
		if matched && op == OpDelete {
			return OpDelete, nil
		}
	}

	return 0, ErrNoMatch
}
