// Package batch aggregates several independent address sets concurrently.
package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/projectdiscovery/gologger"
	"golang.org/x/sync/errgroup"

	"project/subnet-aggregator/aggregate"
	"project/subnet-aggregator/cidr"
)

// Job is one independent set of addresses.
type Job struct {
	Name      string
	Addresses cidr.AddressSet
}

// Result holds the outcome of a Job.
type Result struct {
	Name      string
	Addresses int
	ClassC    cidr.Set
	Networks  cidr.Set
}

// Runner runs jobs with a concurrency limit.
type Runner struct {
	params aggregate.Params
	limit  int

	mu        sync.Mutex
	processed int
}

// NewRunner creates a Runner running at most concurrencyLimit jobs at once.
func NewRunner(params aggregate.Params, concurrencyLimit int) *Runner {
	if concurrencyLimit < 1 {
		concurrencyLimit = 1
	}
	return &Runner{params: params, limit: concurrencyLimit}
}

// Processed safely returns the number of jobs completed so far.
func (r *Runner) Processed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.processed
}

// Run summarizes every job. Results are returned in job order. A canceled ctx
// stops jobs that have not started yet.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("job %s not started: %w", job.Name, err)
			}
			classC, nets := aggregate.Summarize(job.Addresses, r.params)
			results[i] = Result{
				Name:      job.Name,
				Addresses: len(job.Addresses),
				ClassC:    classC,
				Networks:  nets,
			}

			r.mu.Lock()
			r.processed++
			r.mu.Unlock()
			gologger.Verbose().Msgf("%s: %d addresses, %d class C networks, %d networks", job.Name, len(job.Addresses), len(classC), len(nets))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
