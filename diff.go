package gotrail

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"
)

// change is a single tracked field delta produced by computeChanges.
type change struct {
	field      string
	fieldLabel string
	fieldType  string
	oldValue   any
	newValue   any
}

// computeChanges diffs the tracked fields named in changed between the snapshot and the live document.
// Resolvers run concurrently; the result keeps the order of changed.
func computeChanges(ctx context.Context, original, mutated bson.M, changed []string, reg *Registry, kinds map[string]Kind) ([]change, error) {
	if len(changed) == 0 {
		return nil, nil
	}

	slots := make([]*change, len(changed))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range changed {
		i := i
		f, ok := reg.Lookup(name)
		if !ok {
			continue
		}
		oldRaw, newRaw := lookup(original, name), lookup(mutated, name)
		if equalValues(oldRaw, newRaw) {
			continue
		}
		g.Go(func() error {
			oldValue, newValue, err := resolverOf(f).Resolve(gctx, oldRaw, newRaw)
			if err != nil {
				return fmt.Errorf("gotrail: failed to resolve field %q: %w", f.Name, err)
			}
			slots[i] = &change{
				field:      f.Name,
				fieldLabel: f.Label,
				fieldType:  fieldType(f, kinds[f.Name]),
				oldValue:   oldValue,
				newValue:   newValue,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]change, 0, len(slots))
	for _, c := range slots {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}
