package engine

import (
	"context"
	"sync"
	"sync/atomic"
)

// evaluatePopulation decodes and scores every chromosome that is not yet
// evaluated, using a fixed pool of workers. Each worker writes only to the
// chromosome it was handed, so no locking is needed; the WaitGroup is the
// generation barrier. Cancellation is checked before every chromosome and
// the ones skipped stay unevaluated. It returns the number of evaluations.
func evaluatePopulation(ctx context.Context, pop []*chromosome, workers int, placer *Placer, eval *Evaluator) int {
	var pending []int
	for i, c := range pop {
		if !c.evaluated {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return 0
	}
	if workers > len(pending) {
		workers = len(pending)
	}
	if workers < 1 {
		workers = 1
	}

	var count atomic.Int64
	work := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				if ctx.Err() != nil {
					continue
				}
				evaluateOne(pop[idx], placer, eval)
				count.Add(1)
			}
		}()
	}

	for _, idx := range pending {
		work <- idx
	}
	close(work)
	wg.Wait()

	return int(count.Load())
}

func evaluateOne(c *chromosome, placer *Placer, eval *Evaluator) {
	layout := placer.Place(c.items())
	c.fitness = eval.Score(layout)
	c.layout = layout
	c.evaluated = true
}
