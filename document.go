package gotrail

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNilDocument is returned when a nil document is saved.
var ErrNilDocument = errors.New("gotrail: nil document")

// Document is a host entity whose tracked fields are audited.
type Document interface {
	DocumentID() any
}

// Modifier is implemented by documents that report which fields the in-flight save modified.
// A reported path covers its tracked parents and tracked children.
// Documents without it are compared field by field against their snapshot.
type Modifier interface {
	ModifiedFields() []string
}

// CollectionNamer provides a custom collection name for a document type.
type CollectionNamer interface {
	CollectionName() string
}

// toBSON renders a document the way the store will persist it.
func toBSON(doc any) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("gotrail: failed to marshal document: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("gotrail: failed to unmarshal document: %w", err)
	}
	return m, nil
}

// lookup reads a dotted path from a bson document; missing paths yield nil.
func lookup(m bson.M, path string) any {
	var cur any = m
	for _, part := range strings.Split(path, ".") {
		switch v := cur.(type) {
		case bson.M:
			cur = v[part]
		case map[string]any:
			cur = v[part]
		case bson.D:
			cur = v.Map()[part]
		default:
			return nil
		}
		if cur == nil {
			return nil
		}
	}
	return cur
}

// equalValues reports whether two bson values are deeply equal once containers are normalized.
func equalValues(a, b any) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

// normalize makes decoded containers comparable regardless of their concrete bson type.
func normalize(v any) any {
	switch x := v.(type) {
	case bson.D:
		m := make(map[string]any, len(x))
		for _, e := range x {
			m[e.Key] = normalize(e.Value)
		}
		return m
	case bson.M:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = normalize(e)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = normalize(e)
		}
		return m
	case primitive.A:
		s := make([]any, len(x))
		for i, e := range x {
			s[i] = normalize(e)
		}
		return s
	case []any:
		s := make([]any, len(x))
		for i, e := range x {
			s[i] = normalize(e)
		}
		return s
	default:
		return v
	}
}
