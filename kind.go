package gotrail

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind is the declared storage kind of a tracked field.
type Kind int

const (
	KindUnknown Kind = iota
	KindString
	KindNumber
	KindDate
	KindBoolean
)

// String returns the classification tag recorded as Action.FieldType.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// fieldType picks the classification tag of a field: explicit type, then kind, then the name itself.
func fieldType(f Field, k Kind) string {
	if f.Type != "" {
		return f.Type
	}
	if k == KindUnknown {
		return f.Name
	}
	return k.String()
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	dateTimeType = reflect.TypeOf(primitive.DateTime(0))
)

// kindOf maps a Go type onto a storage kind.
func kindOf(t reflect.Type) Kind {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType || t == dateTimeType {
		return KindDate
	}
	switch t.Kind() {
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumber
	default:
		return KindUnknown
	}
}

var kindCache sync.Map // reflect.Type -> map[string]Kind

// schemaKinds returns the storage kind of every bson path declared on t, including dotted paths of embedded structs.
func schemaKinds(t reflect.Type) map[string]Kind {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return map[string]Kind{}
	}
	if v, ok := kindCache.Load(t); ok {
		return v.(map[string]Kind)
	}
	out := map[string]Kind{}
	collectKinds(t, "", out, map[reflect.Type]bool{})
	kindCache.Store(t, out)
	return out
}

func collectKinds(t reflect.Type, prefix string, out map[string]Kind, seen map[reflect.Type]bool) {
	if seen[t] {
		return
	}
	seen[t] = true
	defer delete(seen, t)

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, inline, skip := bsonFieldName(sf)
		if skip {
			continue
		}
		ft := sf.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if inline && ft.Kind() == reflect.Struct {
			collectKinds(ft, prefix, out, seen)
			continue
		}
		path := prefix + name
		out[path] = kindOf(ft)
		if ft.Kind() == reflect.Struct && ft != timeType {
			collectKinds(ft, path+".", out, seen)
		}
	}
}

// bsonFieldName mirrors the default bson struct codec naming: tag name or lowercased field name.
func bsonFieldName(sf reflect.StructField) (name string, inline, skip bool) {
	tag := sf.Tag.Get("bson")
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	for _, opt := range parts[1:] {
		if opt == "inline" {
			inline = true
		}
	}
	if name == "" {
		name = strings.ToLower(sf.Name)
	}
	return name, inline, false
}
