package scheduler

import (
	"context"
	"fmt"
)

// JobBatchExpiry deactivates batches whose expiry date has passed
const JobBatchExpiry = "batch_expiry"

// JobFunc is the body of a named job
type JobFunc func(ctx context.Context) error

// JobFuncs dispatches jobs to functions registered under their name
type JobFuncs map[string]JobFunc

// Execute implements JobExecutor
func (f JobFuncs) Execute(ctx context.Context, job *Job) error {
	fn, ok := f[job.Name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, job.Name)
	}
	return fn(ctx)
}
