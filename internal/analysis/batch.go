package analysis

import (
	"context"
	"runtime"

	"github.com/kamilpajak/automate/pkg/models"
	"golang.org/x/sync/errgroup"
)

// RunBatch analyzes items with at most parallel concurrent runs and returns
// the diagnoses in input order. onDone, if set, is called after each run from
// the goroutine that finished it.
func RunBatch(ctx context.Context, items []Params, parallel int, onDone func(i int, d *models.Diagnosis)) []*models.Diagnosis {
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}

	out := make([]*models.Diagnosis, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i := range items {
		p := items[i]
		p.index, p.total = i+1, len(items)
		g.Go(func() error {
			out[i] = Run(ctx, p)
			if onDone != nil {
				onDone(i, out[i])
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
