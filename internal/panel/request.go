package panel

import (
	"context"
	"errors"
	"time"

	"github.com/tinytelemetry/boxinfo/internal/console"
)

// RequestID identifies one outstanding request of a controller. IDs are never
// reused, so a completion for a previous collection phase is recognised as stale.
type RequestID uint64

// Request is one asynchronous piece of work issued by a panel: either a
// shell command line or an in-process fetch.
type Request struct {
	ID      RequestID
	PanelID string
	Tag     string
	Command string
	Fetch   FetchFunc
	Timeout time.Duration
}

var errNoRunner = errors.New("panel: no command runner")

// Execute runs the request and blocks until it finishes.
func (r Request) Execute(ctx context.Context, runner console.Runner) console.Result {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	if r.Fetch != nil {
		out, err := r.Fetch(ctx)
		if err != nil {
			return console.Result{Output: out, ExitStatus: -1, Err: err}
		}
		return console.Result{Output: out}
	}
	if runner == nil {
		return console.Result{ExitStatus: -1, Err: errNoRunner}
	}
	return runner.Run(ctx, r.Command)
}
