package gotrail

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jinzhu/inflection"

	"github.com/mickamy/gotrail/internal/ident"
)

// DedicatedSuffix is appended to an entity collection name to get its dedicated action store name.
const DedicatedSuffix = "_actions"

// DedicatedActionCollection returns the name of a per-entity action store, e.g. "posts" -> "posts_actions".
func DedicatedActionCollection(entityCollection string) string {
	return strings.Join(ident.Suffixed(entityCollection, DedicatedSuffix), ".")
}

var collectionNamerType = reflect.TypeOf((*CollectionNamer)(nil)).Elem()

// resolveCollectionName derives the entity collection name of a document type:
// CollectionName() when implemented, otherwise the pluralized snake_case type name.
func resolveCollectionName(typ reflect.Type) (string, error) {
	if typ == nil {
		return "", errors.New("gotrail: nil document type")
	}
	if typ.Kind() == reflect.Interface {
		return "", fmt.Errorf("gotrail: cannot derive collection name for interface type %v; set Config.Collection", typ)
	}

	base := typ
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	for _, t := range []reflect.Type{typ, base, reflect.PointerTo(base)} {
		if !t.Implements(collectionNamerType) {
			continue
		}
		var inst reflect.Value
		if t.Kind() == reflect.Pointer {
			inst = reflect.New(t.Elem())
		} else {
			inst = reflect.New(t).Elem()
		}
		namer, ok := inst.Interface().(CollectionNamer)
		if !ok {
			continue
		}
		name := strings.TrimSpace(namer.CollectionName())
		if name == "" {
			return "", fmt.Errorf("gotrail: CollectionName returned empty string. %v", typ)
		}
		return name, nil
	}

	if base.Kind() != reflect.Struct {
		return "", fmt.Errorf("gotrail: cannot derive collection name for %v; set Config.Collection", typ)
	}
	if base.Name() == "" {
		return "", fmt.Errorf("gotrail: cannot derive collection name for anonymous struct of type %v", typ)
	}
	return inflection.Plural(toSnakeCase(base.Name())), nil
}

func toSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// MigratePostgres creates the action table used by PostgresStore and its entity index.
func MigratePostgres(ctx context.Context, db Execer, table string) error {
	if table == "" {
		table = DefaultActionCollection
	}
	parts := ident.SplitQualified(table)
	if !ident.Valid(parts) {
		return fmt.Errorf("gotrail: invalid action table identifier %q", table)
	}
	tableIdent := ident.QuoteQualified(parts)

	columns := []string{
		"id BIGSERIAL PRIMARY KEY",
		"entity_collection TEXT NOT NULL",
		"entity_id TEXT NOT NULL",
		"field TEXT",
		"field_label TEXT",
		"field_type TEXT",
		"type TEXT NOT NULL",
		"old JSONB",
		"new JSONB",
		"message TEXT",
		`"user" JSONB`,
		"data JSONB",
		"created_at TIMESTAMPTZ NOT NULL DEFAULT now()",
		"updated_at TIMESTAMPTZ NOT NULL DEFAULT now()",
	}
	ddl := fmt.Sprintf(`
    CREATE TABLE IF NOT EXISTS %s (
        %s
    );
    `, tableIdent, strings.Join(columns, ",\n\t"))
	if _, err := db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("gotrail: failed to create action table: %w", err)
	}

	indexName := fmt.Sprintf("idx_%s_entity", parts[len(parts)-1])
	stmt := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (entity_collection, entity_id, created_at DESC, id DESC);`,
		ident.Quote(indexName), tableIdent)
	if _, err := db.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("gotrail: failed to create action index: %w", err)
	}
	return nil
}
