package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/mltrust/mltrust/pkg/metric"
	"github.com/mltrust/mltrust/pkg/resource"
)

// Dispatcher runs every applicable metric provider for a group of
// related resources, bounded in concurrency and per-metric wall
// time.
type Dispatcher struct {
	providers []metric.Provider
	workers   int
	timeout   time.Duration
}

func NewDispatcher(providers []metric.Provider, workers int, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		providers: providers,
		workers:   workers,
		timeout:   timeout,
	}
}

// Score evaluates one input-line group. The last resource on the
// line is the subject the record is named after; earlier resources
// (dataset, code links) feed the metrics that apply to their kind.
// The record is always complete: a metric that fails, times out, or
// panics leaves its neutral default in place.
func (d *Dispatcher) Score(ctx context.Context, group []resource.Resource) *Record {
	start := time.Now()
	primary := group[len(group)-1]
	rec := NewRecord(primary.Name, primary.Category())

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(d.workers)

	for _, p := range d.providers {
		target, ok := targetFor(p, group)
		if !ok {
			continue
		}
		g.Go(func() error {
			res := d.evaluate(ctx, p, target)
			if res.Failed() {
				slog.Warn("metric failed, keeping neutral default",
					"metric", string(p.Name()),
					"resource", target.ID,
					"error", res.Err)
			}
			mu.Lock()
			rec.apply(res)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	rec.computeNet()
	rec.NetLatMS = time.Since(start).Milliseconds()
	return rec
}

// targetFor picks the resource a provider should evaluate: the
// subject when it applies, otherwise the latest earlier resource of
// an applicable kind.
func targetFor(p metric.Provider, group []resource.Resource) (resource.Resource, bool) {
	for i := len(group) - 1; i >= 0; i-- {
		if p.Applies(group[i].Kind) {
			return group[i], true
		}
	}
	return resource.Resource{}, false
}

// evaluate bounds one provider invocation: its own deadline, and a
// recover so a panicking provider costs one metric, not the run.
func (d *Dispatcher) evaluate(ctx context.Context, p metric.Provider, res resource.Resource) (out metric.Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("metric panicked",
				"metric", string(p.Name()),
				"resource", res.ID,
				"panic", r)
			out = metric.Result{
				Metric:    p.Name(),
				LatencyMS: time.Since(start).Milliseconds(),
				Err:       errors.Errorf("panic: %v", r),
			}
		}
	}()

	tctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return p.Evaluate(tctx, res)
}
