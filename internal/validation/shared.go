// Package validation holds the request validation rules. Each rule
// function collects field-level problems into an Error so a response can
// report every bad field at once rather than the first one found.
package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Error carries one message per invalid request field.
type Error struct {
	Fields map[string]string
}

// Error renders the field messages in field-name order so the output is
// stable across runs.
func (e *Error) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(msgs, "; ")
}
