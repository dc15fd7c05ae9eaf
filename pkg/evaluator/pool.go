package evaluator

import (
	"context"
	"runtime"
	"sort"

	"github.com/akashuv-21/parase/internal/models"
	"golang.org/x/sync/errgroup"
)

func defaultWorkers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// forEach runs fn for every index in [0, n) on at most workers goroutines.
// Each call owns its index, so results can be written into a pre-sized
// slice without locking. Scheduling stops once ctx is done.
func forEach(ctx context.Context, workers, n int, fn func(i int)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(i)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// matchingKeys splits the ground truth keys into those with a prediction
// and those without, both sorted.
func matchingKeys(gt, pred models.Corpus) (matched, skipped []string) {
	keys := gt.Keys()
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := pred[k]; ok {
			matched = append(matched, k)
		} else {
			skipped = append(skipped, k)
		}
	}
	return matched, skipped
}
