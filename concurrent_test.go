package b4s

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/b4s/internal/testutil"
)

func TestSearch_ConcurrentReaders(t *testing.T) {
	t.Parallel()

	words := testutil.Words(5_000, 7)
	ss, err := NewChecked(testutil.Haystack(words, Comma.Byte()), Comma)
	require.NoError(t, err)

	needles := testutil.Spread(words, 200)
	for _, w := range testutil.Spread(words, 50) {
		needles = append(needles, w+"~")
	}

	type outcome struct {
		span  Span
		found bool
	}
	want := make([]outcome, len(needles))
	for i, n := range needles {
		span, err := ss.Search(n)
		want[i] = outcome{span: span, found: err == nil}
	}

	g, ctx := errgroup.WithContext(context.Background())
	for worker := range 16 {
		g.Go(func() error {
			for round := range 20 {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				for i, n := range needles {
					span, err := ss.Search(n)
					if err != nil && !errors.Is(err, ErrNotFound) {
						return err
					}
					if got := (outcome{span: span, found: err == nil}); got != want[i] {
						return fmt.Errorf("worker %d round %d needle %q: got %+v, want %+v", worker, round, n, got, want[i])
					}
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
