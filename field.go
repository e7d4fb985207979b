package gotrail

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidField is returned for a tracked field entry that cannot be registered.
var ErrInvalidField = errors.New("gotrail: invalid field")

// Field describes a tracked field.
type Field struct {
	Name     string   // bson path, dotted for embedded documents
	Label    string   // optional human-readable name
	Type     string   // optional classification tag, overrides the inferred kind
	Resolver Resolver // optional value resolver
}

// Registry is the normalized set of tracked fields.
type Registry struct {
	names  []string
	fields map[string]Field
}

// NewRegistry normalizes tracked field entries. Each entry is a bare field name, a Field or a *Field.
// On duplicate names the last descriptor wins and the position of the first one is kept.
func NewRegistry(entries ...any) (*Registry, error) {
	r := &Registry{fields: make(map[string]Field, len(entries))}
	for i, e := range entries {
		var f Field
		switch v := e.(type) {
		case string:
			f = Field{Name: v}
		case Field:
			f = v
		case *Field:
			if v == nil {
				return nil, fmt.Errorf("%w: entry %d is nil", ErrInvalidField, i)
			}
			f = *v
		default:
			return nil, fmt.Errorf("%w: entry %d has unsupported type %T", ErrInvalidField, i, e)
		}
		f.Name = strings.TrimSpace(f.Name)
		if f.Name == "" {
			return nil, fmt.Errorf("%w: entry %d has no field name", ErrInvalidField, i)
		}
		if _, ok := r.fields[f.Name]; !ok {
			r.names = append(r.names, f.Name)
		}
		r.fields[f.Name] = f
	}
	return r, nil
}

// Fields returns the tracked field names in declaration order.
func (r *Registry) Fields() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Lookup returns the descriptor of a tracked field.
func (r *Registry) Lookup(name string) (Field, bool) {
	f, ok := r.fields[name]
	return f, ok
}

// Len reports the number of tracked fields.
func (r *Registry) Len() int {
	return len(r.names)
}

// intersect returns the tracked fields present in modified, in declaration order.
// A modified dotted path marks each of its parents; a modified parent marks every tracked path below it.
func (r *Registry) intersect(modified []string) []string {
	set := make(map[string]struct{}, len(modified))
	for _, m := range modified {
		set[m] = struct{}{}
		for i := strings.LastIndexByte(m, '.'); i > 0; i = strings.LastIndexByte(m[:i], '.') {
			set[m[:i]] = struct{}{}
		}
	}
	var out []string
	for _, name := range r.names {
		if _, ok := set[name]; ok || underModified(name, modified) {
			out = append(out, name)
		}
	}
	return out
}

func underModified(name string, modified []string) bool {
	for _, m := range modified {
		if strings.HasPrefix(name, m+".") {
			return true
		}
	}
	return false
}
