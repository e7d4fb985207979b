package gotrail

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mickamy/gotrail/internal/ident"
)

// PgxPool is satisfied by *pgxpool.Pool.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore stores actions in a Postgres table created by MigratePostgres.
// Entity ids are stored as text; values, user and data as JSONB.
type PostgresStore struct {
	pool       PgxPool
	tableIdent string
	logger     *zap.Logger
}

// NewPostgresStore stores actions in table, DefaultActionCollection when empty.
func NewPostgresStore(pool PgxPool, table string, logger *zap.Logger) (*PostgresStore, error) {
	if table == "" {
		table = DefaultActionCollection
	}
	parts := ident.SplitQualified(table)
	if !ident.Valid(parts) {
		return nil, fmt.Errorf("gotrail: invalid action table identifier %q", table)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{
		pool:       pool,
		tableIdent: ident.QuoteQualified(parts),
		logger:     logger.Named("PostgresStore"),
	}, nil
}

func (s *PostgresStore) Persist(ctx context.Context, actions []Action) error {
	if len(actions) == 0 {
		return nil
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (entity_collection, entity_id, field, field_label, field_type, type, old, new, message, "user", data, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
`, s.tableIdent)

	batch := &pgx.Batch{}
	ts := time.Now().UTC()
	for _, a := range actions {
		args, err := insertArgs(a)
		if err != nil {
			return err
		}
		batch.Queue(stmt, append(args, ts)...)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		s.logger.Error("Persist: Begin failed", zap.Error(err))
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	br := tx.SendBatch(ctx, batch)
	for range actions {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			s.logger.Error("Persist: batch insert failed", zap.Error(err), zap.Int("count", len(actions)))
			return fmt.Errorf("gotrail: failed to insert action: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("gotrail: failed to close batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		s.logger.Error("Persist: Commit failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, collection string, entityID any, page Page) (*ActionPage, error) {
	id := entityKey(entityID)
	out := &ActionPage{Actions: []Action{}, Offset: page.Offset, Limit: page.Limit}

	countStmt := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE entity_collection = $1 AND entity_id = $2`, s.tableIdent)
	if err := s.pool.QueryRow(ctx, countStmt, collection, id).Scan(&out.Total); err != nil {
		s.logger.Error("List: count failed", zap.Error(err), zap.String("collection", collection), zap.String("entityID", id))
		return nil, err
	}
	if out.Total == 0 || page.Limit == 0 || int64(page.Offset) >= out.Total {
		return out, nil
	}

	stmt := fmt.Sprintf(`
SELECT id, entity_collection, entity_id, field, field_label, field_type, type, old, new, message, "user", data, created_at, updated_at
FROM %s
WHERE entity_collection = $1 AND entity_id = $2
ORDER BY created_at DESC, id DESC
OFFSET $3 LIMIT $4
`, s.tableIdent)
	rows, err := s.pool.Query(ctx, stmt, collection, id, page.Offset, page.Limit)
	if err != nil {
		s.logger.Error("List: query failed", zap.Error(err), zap.String("collection", collection), zap.String("entityID", id))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		out.Actions = append(out.Actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func insertArgs(a Action) ([]any, error) {
	oldJSON, err := encodeJSON(a.OldValue)
	if err != nil {
		return nil, fmt.Errorf("gotrail: failed to marshal old value: %w", err)
	}
	newJSON, err := encodeJSON(a.NewValue)
	if err != nil {
		return nil, fmt.Errorf("gotrail: failed to marshal new value: %w", err)
	}
	userJSON, err := encodeJSON(a.User)
	if err != nil {
		return nil, fmt.Errorf("gotrail: failed to marshal user: %w", err)
	}
	var dataJSON []byte
	if len(a.Data) > 0 {
		if dataJSON, err = json.Marshal(a.Data); err != nil {
			return nil, fmt.Errorf("gotrail: failed to marshal data: %w", err)
		}
	}
	return []any{
		a.EntityCollection,
		entityKey(a.EntityID),
		nullString(a.Field),
		nullString(a.FieldLabel),
		nullString(a.FieldType),
		string(a.Type),
		oldJSON,
		newJSON,
		nullString(a.Message),
		userJSON,
		dataJSON,
	}, nil
}

func scanAction(rows pgx.Rows) (Action, error) {
	var (
		a                                    Action
		id                                   int64
		entityID, typ                        string
		field, label, fieldType, message     *string
		oldJSON, newJSON, userJSON, dataJSON []byte
	)
	if err := rows.Scan(&id, &a.EntityCollection, &entityID, &field, &label, &fieldType, &typ,
		&oldJSON, &newJSON, &message, &userJSON, &dataJSON, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return Action{}, fmt.Errorf("gotrail: failed to scan action: %w", err)
	}
	a.ID = id
	a.EntityID = entityID
	a.Type = ActionType(typ)
	a.Field = deref(field)
	a.FieldLabel = deref(label)
	a.FieldType = deref(fieldType)
	a.Message = deref(message)

	var err error
	if a.OldValue, err = decodeJSON(oldJSON); err != nil {
		return Action{}, err
	}
	if a.NewValue, err = decodeJSON(newJSON); err != nil {
		return Action{}, err
	}
	if a.User, err = decodeJSON(userJSON); err != nil {
		return Action{}, err
	}
	if len(dataJSON) > 0 {
		if err := json.Unmarshal(dataJSON, &a.Data); err != nil {
			return Action{}, fmt.Errorf("gotrail: failed to unmarshal data: %w", err)
		}
	}
	return a, nil
}

// entityKey renders an entity id as the text stored in entity_id.
func entityKey(id any) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// encodeJSON marshals v, keeping SQL NULL for nil.
func encodeJSON(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// decodeJSON unmarshals a JSONB column; NULL yields nil.
func decodeJSON(b []byte) (any, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("gotrail: failed to unmarshal json column: %w", err)
	}
	return v, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
