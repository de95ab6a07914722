package hillclimb

import (
	"sync"

	"github.com/google/uuid"

	"segyap/nlp/types"
)

// task is one batch as seen by a worker. All fields are read-only while the
// batch runs; every worker decodes its own copy of pred.
type task struct {
	id        uuid.UUID
	pred      *types.DependencyInstance
	gold      *types.DependencyInstance
	fe        FeatureExtractor
	sampleSeg bool
	samplePos bool
	best      *bestTracker
	done      *sync.WaitGroup
}

// pool is a fixed set of long-lived workers, each fed through its own
// channel
type pool struct {
	tasks   []chan *task
	running sync.WaitGroup
}

func startPool(threads int, work func(worker int, t *task)) *pool {
	p := &pool{tasks: make([]chan *task, threads)}
	p.running.Add(threads)
	for i := range p.tasks {
		ch := make(chan *task)
		p.tasks[i] = ch
		go func(worker int) {
			defer p.running.Done()
			for t := range ch {
				work(worker, t)
				t.done.Done()
			}
		}(i)
	}
	return p
}

// dispatch hands t to every worker and blocks until all of them finished it
func (p *pool) dispatch(t *task) {
	var done sync.WaitGroup
	done.Add(len(p.tasks))
	t.done = &done
	for _, ch := range p.tasks {
		ch <- t
	}
	done.Wait()
}

func (p *pool) stop() {
	for _, ch := range p.tasks {
		close(ch)
	}
	p.running.Wait()
}
