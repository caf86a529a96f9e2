package fit

import (
	"runtime"
	"sync"
)

// WorkItem holds one gene's expression vector ready for fitting.
type WorkItem struct {
	Seq int
	Y   []float64
}

// WorkResult holds the fit output for a single gene.
type WorkResult struct {
	Seq int
	Fit GeneFit
	Err error
}

// ParallelFit fits work items using a pool of workers. Results are sent to
// the returned channel in arrival order (not sequence order). Use
// OrderedCollect to consume results in sequence-number order. If workers is
// 0, runtime.NumCPU() is used.
func (m *Model) ParallelFit(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for item := range items {
				results <- WorkResult{
					Seq: item.Seq,
					Fit: m.FitGene(item.Y),
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order. It
// buffers out-of-order results in a pending map and emits them as soon as
// the next expected sequence number is available. Blocks until the results
// channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
