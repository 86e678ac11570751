package panel

import (
	"context"

	"github.com/tinytelemetry/boxinfo/internal/console"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of a request.
type Result = console.Result

// maxParallel bounds how many requests of one phase run at once.
const maxParallel = 4

// Collect drives c through a full collection phase without an event loop:
// it refreshes the panel, executes the requests concurrently and feeds the
// results back one at a time until the panel settles. Queued refreshes are
// followed. It returns the final state.
func Collect(ctx context.Context, c *Controller, runner console.Runner) State {
	reqs := c.Refresh()
	for len(reqs) > 0 {
		results := make([]Result, len(reqs))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxParallel)
		for i, req := range reqs {
			g.Go(func() error {
				results[i] = req.Execute(gctx, runner)
				return nil
			})
		}
		_ = g.Wait()

		var next []Request
		for i, req := range reqs {
			next = append(next, c.OnCommandComplete(req.ID, results[i])...)
		}
		reqs = next
	}
	return c.State()
}
