package gotrail

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/mickamy/gotrail/internal/keylock"
)

// ErrFlush wraps failures to persist the actions of a save whose host write already succeeded.
var ErrFlush = errors.New("gotrail: failed to flush actions")

// RedactFunc masks a recorded value of the given field.
type RedactFunc func(field string, v any) any

// RedactMap maps field names to redaction functions.
type RedactMap map[string]RedactFunc

// Config defines what a Tracker records for one document type.
type Config struct {
	Fields         []any     // bare field names, Field or *Field descriptors
	Collection     string    // entity collection name; derived from the document type when empty
	Redact         RedactMap // optional per-field masking applied after resolvers
	SerializeSaves bool      // serialize saves of the same entity from BeforePersist to AfterPersist
}

// SnapshotSource loads the persisted state of an entity, projected to the given fields.
// It returns a nil snapshot and no error when the entity does not exist yet.
type SnapshotSource interface {
	FindSnapshot(ctx context.Context, collection string, id any, fields []string) (bson.M, error)
}

// Option customizes a Tracker.
type Option func(*trackerOptions)

type trackerOptions struct {
	logger  *zap.Logger
	metrics *Metrics
}

// WithLogger sets the logger used to report flush failures.
func WithLogger(l *zap.Logger) Option {
	return func(o *trackerOptions) { o.logger = l }
}

// WithMetrics records action and flush counters on m.
func WithMetrics(m *Metrics) Option {
	return func(o *trackerOptions) { o.metrics = m }
}

// Tracker audits saves of documents of type T.
type Tracker[T Document] struct {
	cfg        Config
	registry   *Registry
	kinds      map[string]Kind
	collection string
	store      ActionStore
	source     SnapshotSource
	locks      *keylock.Locker[string]
	logger     *zap.Logger
	metrics    *Metrics
}

// New creates a Tracker for T. It fails with ErrInvalidField on a malformed field entry.
func New[T Document](store ActionStore, source SnapshotSource, cfg Config, opts ...Option) (*Tracker[T], error) {
	if store == nil || source == nil {
		return nil, errors.New("gotrail: store and snapshot source are required")
	}
	o := trackerOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	reg, err := NewRegistry(cfg.Fields...)
	if err != nil {
		return nil, err
	}

	typ := reflect.TypeOf((*T)(nil)).Elem()
	collection := strings.TrimSpace(cfg.Collection)
	if collection == "" {
		collection, err = resolveCollectionName(typ)
		if err != nil {
			return nil, err
		}
	}
	if cfg.Redact == nil {
		cfg.Redact = RedactMap{}
	}

	t := &Tracker[T]{
		cfg:        cfg,
		registry:   reg,
		kinds:      schemaKinds(typ),
		collection: collection,
		store:      store,
		source:     source,
		logger:     o.logger.Named("gotrail").With(zap.String("collection", collection)),
		metrics:    o.metrics,
	}
	if cfg.SerializeSaves {
		t.locks = keylock.New[string]()
	}
	return t, nil
}

// Collection returns the entity collection name stamped on actions.
func (t *Tracker[T]) Collection() string {
	return t.collection
}

// Fields returns the tracked field names in declaration order.
func (t *Tracker[T]) Fields() []string {
	return t.registry.Fields()
}

// BeforePersist must run before the host writes doc. It loads the snapshot, diffs the tracked fields
// and returns the pending actions. On error the host write must not proceed.
func (t *Tracker[T]) BeforePersist(ctx context.Context, doc T) (*Pending, error) {
	if isNil(doc) {
		return nil, ErrNilDocument
	}
	id := doc.DocumentID()
	if extractSkip(ctx) {
		return newPending(id, nil), nil
	}

	var unlock func()
	if t.locks != nil {
		unlock = t.locks.Lock(t.lockKey(id))
	}
	p := newPending(id, unlock)

	actions, err := t.capture(ctx, doc, id)
	if err != nil {
		p.Discard()
		return nil, err
	}
	p.buf.Add(actions...)
	return p, nil
}

// AfterPersist must run once the host write succeeded. It flushes the pending actions in one bulk insert.
// The buffer is flushed whatever the outcome; a failure is returned wrapped in ErrFlush.
func (t *Tracker[T]) AfterPersist(ctx context.Context, p *Pending) error {
	if p == nil {
		return nil
	}
	actions := p.drain()
	if len(actions) == 0 {
		return nil
	}
	if err := t.store.Persist(ctx, actions); err != nil {
		t.logger.Error("AfterPersist: Persist failed",
			zap.Error(err), zap.Any("entityID", p.entityID), zap.Int("actions", len(actions)))
		t.metrics.flushFailed(t.collection)
		return fmt.Errorf("%w: %w", ErrFlush, err)
	}
	t.metrics.recorded(t.collection, actions)
	return nil
}

// Save runs persist between BeforePersist and AfterPersist. A persist failure discards the pending actions.
func (t *Tracker[T]) Save(ctx context.Context, doc T, persist func(ctx context.Context) error) error {
	p, err := t.BeforePersist(ctx, doc)
	if err != nil {
		return err
	}
	if err := persist(ctx); err != nil {
		p.Discard()
		return err
	}
	return t.AfterPersist(ctx, p)
}

// ListActions returns the history of the entity id, newest first. Defaults to offset 0 and limit 10.
func (t *Tracker[T]) ListActions(ctx context.Context, id any, opts ...ListOption) (*ActionPage, error) {
	page, err := NewPage(opts...)
	if err != nil {
		return nil, err
	}
	return t.store.List(ctx, t.collection, id, page)
}

// capture builds the actions of one save: a creation when no snapshot exists, otherwise one update per changed field.
func (t *Tracker[T]) capture(ctx context.Context, doc T, id any) ([]Action, error) {
	snapshot, err := t.source.FindSnapshot(ctx, t.collection, id, t.registry.Fields())
	if err != nil {
		return nil, fmt.Errorf("gotrail: failed to load snapshot: %w", err)
	}

	attr := extractAttribution(ctx)
	base := Action{
		EntityCollection: t.collection,
		EntityID:         id,
		Message:          attr.message,
		User:             attr.user,
		Data:             attr.data,
	}
	if snapshot == nil {
		base.Type = ActionCreation
		return []Action{base}, nil
	}

	changed := t.registry.Fields()
	if m, ok := any(doc).(Modifier); ok {
		changed = t.registry.intersect(m.ModifiedFields())
	}
	if len(changed) == 0 {
		return nil, nil
	}

	live, err := toBSON(doc)
	if err != nil {
		return nil, err
	}
	changes, err := computeChanges(ctx, snapshot, live, changed, t.registry, t.kinds)
	if err != nil {
		return nil, err
	}

	actions := make([]Action, 0, len(changes))
	for _, c := range changes {
		a := base
		a.Type = ActionUpdate
		a.Field = c.field
		a.FieldLabel = c.fieldLabel
		a.FieldType = c.fieldType
		a.OldValue = t.redact(c.field, c.oldValue)
		a.NewValue = t.redact(c.field, c.newValue)
		actions = append(actions, a)
	}
	return actions, nil
}

func (t *Tracker[T]) redact(field string, v any) any {
	if v == nil {
		return nil
	}
	if fn, ok := t.cfg.Redact[field]; ok && fn != nil {
		return fn(field, v)
	}
	return v
}

func (t *Tracker[T]) lockKey(id any) string {
	return fmt.Sprintf("%s/%v", t.collection, id)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
