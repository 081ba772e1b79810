package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunEnsemble runs independent simulators in parallel. Each simulator must
// own its model and integrator. The first failure cancels the others.
func RunEnsemble(ctx context.Context, sims []*Simulator) ([]*Result, error) {
	results := make([]*Result, len(sims))
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range sims {
		i, s := i, s
		g.Go(func() error {
			r, err := s.Run(ctx)
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
