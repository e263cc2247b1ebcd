package association

import (
	"runtime"
	"sync"

	"github.com/inodb/vibe-operon/internal/annotation"
)

// workItem is a unit waiting for association.
type workItem struct {
	seq int
	tu  *annotation.TranscriptionUnit
}

// workResult holds the extensions produced for one unit.
type workResult struct {
	seq        int
	extensions []annotation.Extension
}

// associateParallel runs associateTU over a pool of workers. Each unit is
// handled by exactly one worker and genes are shared read-only.
func (e *Engine) associateParallel(tus []*annotation.TranscriptionUnit, genes []*annotation.Gene, index nameIndex) [][]annotation.Extension {
	workers := e.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	items := make(chan workItem, 2*workers)
	go func() {
		defer close(items)
		for i, tu := range tus {
			items <- workItem{seq: i, tu: tu}
		}
	}()

	results := make(chan workResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for item := range items {
				results <- workResult{
					seq:        item.seq,
					extensions: associateTU(item.tu, genes, index),
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	perTU := make([][]annotation.Extension, 0, len(tus))
	orderedCollect(results, func(r workResult) {
		perTU = append(perTU, r.extensions)
	})
	return perTU
}

// orderedCollect calls fn for each result in sequence-number order,
// buffering results that arrive early. Blocks until results is closed.
func orderedCollect(results <-chan workResult, fn func(workResult)) {
	pending := make(map[int]workResult)
	nextSeq := 0

	for r := range results {
		pending[r.seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			fn(rr)
		}
	}
}
