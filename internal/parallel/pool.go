package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Task is a unit of work run by a WorkerPool.
type Task func()

// WorkerPool runs band tasks on a fixed set of goroutines.
//
// Each worker owns a buffered queue. An idle worker steals from the other
// queues before blocking, so one slow band (deep in the set, where every
// pixel runs to the iteration cap) does not leave the remaining workers idle.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int
	queues  []chan Task
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool

	// next is the round-robin cursor used by Submit when queues tie.
	next atomic.Uint32
}

// NewWorkerPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// A render submits at most MaxBands tasks at once; twice that per
	// queue keeps a burst of superseded renders from blocking Submit.
	queueSize := max(2*MaxBands, workers*4)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan Task, workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan Task, queueSize)
	}

	p.running.Store(true)
	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			drain(own)
			return
		case task := <-own:
			run(task)
			continue
		default:
		}

		if task := p.steal(id); task != nil {
			run(task)
			continue
		}

		select {
		case <-p.done:
			drain(own)
			return
		case task := <-own:
			run(task)
		}
	}
}

func run(task Task) {
	if task != nil {
		task()
	}
}

// drain runs whatever is left in q without blocking.
func drain(q chan Task) {
	for {
		select {
		case task := <-q:
			run(task)
		default:
			return
		}
	}
}

// steal takes one task from another worker's queue, or returns nil.
func (p *WorkerPool) steal(id int) Task {
	for i := 1; i < p.workers; i++ {
		select {
		case task := <-p.queues[(id+i)%p.workers]:
			return task
		default:
		}
	}
	return nil
}

// Submit queues a single task on the shortest queue and returns
// immediately. It is a no-op on a closed pool.
func (p *WorkerPool) Submit(task Task) {
	if task == nil || !p.running.Load() {
		return
	}

	start := int(p.next.Add(1)) % p.workers
	best := start
	for i := 1; i < p.workers; i++ {
		j := (start + i) % p.workers
		if len(p.queues[j]) < len(p.queues[best]) {
			best = j
		}
	}

	select {
	case p.queues[best] <- task:
	case <-p.done:
	}
}

// ExecuteAll runs tasks across the workers and waits for all of them.
// It is a no-op on a closed pool.
func (p *WorkerPool) ExecuteAll(tasks []Task) {
	if len(tasks) == 0 || !p.running.Load() {
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i, task := range tasks {
		wrapped := func() {
			defer wg.Done()
			run(task)
		}
		select {
		case p.queues[i%p.workers] <- wrapped:
		case <-p.done:
			wg.Done()
		}
	}
	wg.Wait()
}

// Close stops accepting work, runs everything already queued and stops
// the workers. It is safe to call more than once.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool accepts work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}

// QueuedWork returns an approximate count of queued tasks.
func (p *WorkerPool) QueuedWork() int {
	total := 0
	for _, q := range p.queues {
		total += len(q)
	}
	return total
}
