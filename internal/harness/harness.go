// Package harness is a small data-parallel harness: a bag-of-rows model
// exposing map (independent per-row work) and collect (gathering results).
// Built on golang.org/x/sync/errgroup, the way cmd/zoekt-indexserver/main.go
// runs its parallel fetch/clone/index loops.
package harness

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Row is one unit of independent, CPU-bound work (features -> sketch ->
// bands for a single file or function). It must be safe to run concurrently
// with other rows, since the harness may schedule them in parallel.
type Row[T any] func(ctx context.Context) (T, error)

// MapCollect runs rows with up to parallelism concurrent workers and
// collects their results in input order. It returns the first error
// encountered; rows not yet started when it occurs are skipped, while
// in-flight rows keep running under ctx rather than a cancelled context,
// so an in-flight external RPC can complete or time out on its own.
func MapCollect[T any](ctx context.Context, parallelism int, rows []Row[T]) ([]T, error) {
	if parallelism <= 0 {
		parallelism = 1
	}

	results := make([]T, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := row(ctx)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
