package gotrail

import (
	"context"
	"errors"
	"fmt"
)

const (
	DefaultActionCollection = "actions"
	DefaultLimit            = 10
)

// ErrInvalidPage is returned for a negative offset or limit.
var ErrInvalidPage = errors.New("gotrail: invalid page")

// ActionStore persists and queries action records.
type ActionStore interface {
	// Persist inserts actions in order. It is not atomic: a failure may leave a prefix stored.
	Persist(ctx context.Context, actions []Action) error
	// List returns an entity's actions newest first, with the total count of its actions.
	List(ctx context.Context, collection string, entityID any, page Page) (*ActionPage, error)
}

// Page is a validated offset/limit window.
type Page struct {
	Offset int
	Limit  int
}

// ListOption customizes a ListActions call.
type ListOption func(*Page)

// WithOffset skips the n newest actions.
func WithOffset(n int) ListOption {
	return func(p *Page) { p.Offset = n }
}

// WithLimit caps the number of returned actions. Zero returns an empty page with the total.
func WithLimit(n int) ListOption {
	return func(p *Page) { p.Limit = n }
}

// NewPage applies opts over the default window (offset 0, limit DefaultLimit).
func NewPage(opts ...ListOption) (Page, error) {
	p := Page{Offset: 0, Limit: DefaultLimit}
	for _, opt := range opts {
		opt(&p)
	}
	if p.Offset < 0 || p.Limit < 0 {
		return Page{}, fmt.Errorf("%w: offset=%d limit=%d", ErrInvalidPage, p.Offset, p.Limit)
	}
	return p, nil
}
