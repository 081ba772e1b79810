package trim

import (
	"context"
	"errors"

	"github.com/san-kum/sixdof/internal/control"
	"github.com/san-kum/sixdof/internal/dynamo"
	"github.com/san-kum/sixdof/internal/eom"
	"golang.org/x/sync/errgroup"
)

// Sweep trims every target in parallel. newModel is called once per target
// because a model is not safe for concurrent use. Targets that fail to
// converge yield unconverged results rather than an error; any other error
// cancels the sweep.
func Sweep(ctx context.Context, newModel func() (*eom.Model, error), targets []Target,
	base control.Vector, opts Options, limit int) ([]*Result, error) {
	results := make([]*Result, len(targets))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := newModel()
			if err != nil {
				return err
			}
			res, err := Solve(m, target, base.Clone(), opts)
			if err != nil && !errors.Is(err, dynamo.ErrNotConverged) {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
