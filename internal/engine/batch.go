package engine

import (
	"context"
	"sync"
	"time"

	"github.com/finbridge/colend/internal/domain/model"
	"github.com/finbridge/colend/pkg/metrics"
)

// ItemResult is the per-loan outcome of a batch run. Exactly one of
// Result and Err is set. Index is the position of the loan in the
// batch input.
type ItemResult struct {
	Index  int                     `json:"index"`
	LoanID string                  `json:"loan_id"`
	Result *model.AllocationResult `json:"result,omitempty"`
	Err    error                   `json:"-"`
}

// Failed reports whether the item ended in an error.
func (r ItemResult) Failed() bool {
	return r.Err != nil
}

// AllocateBatch runs Allocate for each loan concurrently and returns
// one result per loan in input order. A failing loan never affects its
// siblings: its slot carries the error, the rest proceed. Canceling
// the context stops the pickup of new items; items already completed
// keep their results and unstarted items are marked with the context
// error.
func (e *Engine) AllocateBatch(ctx context.Context, loans []model.LoanRequest, partnerships []model.Partnership) []ItemResult {
	start := time.Now()
	results := make([]ItemResult, len(loans))
	if len(loans) == 0 {
		return results
	}

	workers := e.batchWorkers
	if workers > len(loans) {
		workers = len(loans)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = e.allocateItem(ctx, idx, loans[idx], partnerships)
			}
		}()
	}

feed:
	for i := range loans {
		select {
		case jobs <- i:
		case <-ctx.Done():
			// Mark everything not yet dispatched; workers finish the
			// items they already picked up.
			for j := i; j < len(loans); j++ {
				results[j] = ItemResult{Index: j, LoanID: loans[j].LoanID, Err: ctx.Err()}
			}
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	metrics.RecordBatchDuration(float64(time.Since(start).Milliseconds()))
	return results
}

func (e *Engine) allocateItem(ctx context.Context, idx int, loan model.LoanRequest, partnerships []model.Partnership) ItemResult {
	item := ItemResult{Index: idx, LoanID: loan.LoanID}
	if err := ctx.Err(); err != nil {
		item.Err = err
		metrics.RecordBatchItemFailed()
		return item
	}
	res, err := e.Allocate(ctx, loan, partnerships)
	if err != nil {
		item.Err = err
		metrics.RecordBatchItemFailed()
		return item
	}
	item.Result = res
	metrics.RecordBatchItemOK()
	return item
}
