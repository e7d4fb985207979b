package gotrail

import (
	"context"
)

// Resolver transforms the raw old and new values of a field into the values recorded on the action.
// It may query other stores; an error aborts the save.
type Resolver interface {
	Resolve(ctx context.Context, oldValue, newValue any) (any, any, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, oldValue, newValue any) (any, any, error)

func (f ResolverFunc) Resolve(ctx context.Context, oldValue, newValue any) (any, any, error) {
	return f(ctx, oldValue, newValue)
}

type identityResolver struct{}

func (identityResolver) Resolve(_ context.Context, oldValue, newValue any) (any, any, error) {
	return oldValue, newValue, nil
}

// resolverOf returns the configured resolver of f or the identity resolver.
func resolverOf(f Field) Resolver {
	if f.Resolver == nil {
		return identityResolver{}
	}
	return f.Resolver
}
