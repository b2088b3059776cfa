package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"

	"github.com/dskvich/webchat-backend/pkg/logger"
)

const DefaultShutdownTimeout = 10 * time.Second

type Worker interface {
	Name() string
	Start(context.Context) error
}

type shutdownTimeoutKey struct{}

// ShutdownContext gives a worker whose ctx was cancelled the time left for cleanup.
// It carries the values of ctx and expires after the group's shutdown timeout.
func ShutdownContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout, ok := ctx.Value(shutdownTimeoutKey{}).(time.Duration)
	if !ok {
		timeout = DefaultShutdownTimeout
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

type Group struct {
	workers         []Worker
	shutdownTimeout time.Duration
}

func NewGroup(shutdownTimeout time.Duration, workers ...Worker) *Group {
	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}
	return &Group{workers: workers, shutdownTimeout: shutdownTimeout}
}

func (g *Group) Names() []string {
	return lo.Map(g.workers, func(w Worker, _ int) string { return w.Name() })
}

type workerResult struct {
	name string
	err  error
}

// Start runs all workers until ctx is cancelled or one of them fails; a failure stops the rest.
// After the stop signal workers get the shutdown timeout to return. Late ones are reported
// as an error and left behind.
func (g *Group) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancelFn := context.WithCancel(context.WithValue(ctx, shutdownTimeoutKey{}, g.shutdownTimeout))
	defer cancelFn()

	results := make(chan workerResult, len(g.workers))
	running := make(map[string]struct{}, len(g.workers))
	for _, w := range g.workers {
		running[w.Name()] = struct{}{}
		go g.run(runCtx, w, results)
	}

	var err error
	var deadline <-chan time.Time
	done := runCtx.Done()

	for len(running) > 0 {
		select {
		case res := <-results:
			delete(running, res.name)
			if res.err != nil {
				err = multierror.Append(err, fmt.Errorf("%s: %w", res.name, res.err))
				cancelFn()
			}
		case <-done:
			done = nil
			deadline = time.After(g.shutdownTimeout)
			slog.Info("Stopping workers", "workers", lo.Keys(running), "timeout", g.shutdownTimeout)
		case <-deadline:
			stuck := lo.Keys(running)
			sort.Strings(stuck)
			return multierror.Append(err, fmt.Errorf("workers %v still running after %s", stuck, g.shutdownTimeout))
		}
	}

	return err
}

func (g *Group) run(ctx context.Context, w Worker, results chan<- workerResult) {
	started := time.Now()
	slog.Info("Starting worker", "name", w.Name())

	err := w.Start(ctx)
	if err != nil {
		slog.Error("Worker failed", "name", w.Name(), "uptime", time.Since(started), logger.Err(err))
	} else {
		slog.Info("Worker stopped", "name", w.Name(), "uptime", time.Since(started))
	}

	results <- workerResult{name: w.Name(), err: err}
}
