package main

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/b4s"
)

type result struct {
	needle string
	span   b4s.Span
	found  bool
}

// searchAll looks up every needle in ss using up to workers goroutines.
// Results keep the order of needles. Each search is repeated iterations
// times so that profiles have enough samples.
func searchAll(ctx context.Context, ss b4s.SortedString, needles []string, workers, iterations int) ([]result, error) {
	results := make([]result, len(needles))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, needle := range needles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var (
				span b4s.Span
				err  error
			)
			for range iterations {
				span, err = ss.Search(needle)
			}
			switch {
			case err == nil:
				results[i] = result{needle: needle, span: span, found: true}
			case errors.Is(err, b4s.ErrNotFound):
				results[i] = result{needle: needle, span: span}
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
