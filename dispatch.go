package docmerge

import (
	"context"
	"fmt"
	"time"
)

// runBatch executes the dispatch loop for one batch. The transport
// connection is opened exactly once and closed on every exit path.
// result is updated in place so partial progress survives early
// termination.
func (c *Client) runBatch(ctx context.Context, jobs []*SendJob, result *BatchResult, progress ProgressFunc) error {
	reporter := newProgressReporter(progress, c.config.Dispatch.ProgressBuffer)
	defer reporter.close()

	conn, err := c.transport.Connect(ctx)
	if err != nil {
		// The whole batch shares one connection, so a connection
		// failure fails every job. A single synthetic entry with row
		// index -1 stands in for all of them.
		result.Failed = len(jobs)
		result.FailedDetails = append(result.FailedDetails, FailureDetail{
			RowIndex: -1,
			Email:    "batch",
			Error:    fmt.Sprintf("connection failed: %v", err),
		})
		return fmt.Errorf("connect to %s: %w", c.transport.Name(), err)
	}
	defer conn.Close()

	total := len(jobs)
	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			result.Skipped = total - i
			return err
		}

		if err := conn.Send(ctx, job); err != nil {
			result.Failed++
			result.FailedDetails = append(result.FailedDetails, FailureDetail{
				RowIndex: job.RowIndex,
				Email:    job.To,
				Error:    err.Error(),
			})
			reporter.report(i+1, total, fmt.Sprintf("failed for %s: %v", job.To, err))
		} else {
			result.Sent++
			reporter.report(i+1, total, "sent to "+job.To)
		}

		// Pause between jobs, but not after the last one.
		if i < total-1 && c.config.Dispatch.Delay > 0 {
			if err := sleepContext(ctx, c.config.Dispatch.Delay); err != nil {
				result.Skipped = total - i - 1
				return err
			}
		}
	}

	return nil
}

// sleepContext waits for the given duration or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// progressUpdate is one queued progress callback invocation.
type progressUpdate struct {
	current int
	total   int
	status  string
}

// progressReporter decouples the dispatch loop from the progress
// consumer. Updates flow through a bounded queue drained by a single
// goroutine; when the queue is full the update is dropped so dispatch
// never blocks on a slow callback.
type progressReporter struct {
	updates chan progressUpdate
	done    chan struct{}
}

// newProgressReporter starts the drain goroutine. A nil callback yields
// an inert reporter whose report and close are no-ops.
func newProgressReporter(fn ProgressFunc, buffer int) *progressReporter {
	if fn == nil {
		return &progressReporter{}
	}

	r := &progressReporter{
		updates: make(chan progressUpdate, buffer),
		done:    make(chan struct{}),
	}

	go func() {
		defer close(r.done)
		for u := range r.updates {
			fn(u.current, u.total, u.status)
		}
	}()

	return r
}

// report queues one update, dropping it when the queue is full.
func (r *progressReporter) report(current, total int, status string) {
	if r.updates == nil {
		return
	}

	select {
	case r.updates <- progressUpdate{current: current, total: total, status: status}:
	default:
		// Queue full. Dropping keeps dispatch moving.
	}
}

// close flushes queued updates and waits for the drain goroutine.
func (r *progressReporter) close() {
	if r.updates == nil {
		return
	}

	close(r.updates)
	<-r.done
}
