package worker

import (
	"sync"

	"github.com/duitapp/ledger/pkg/logger"
)

type Handler = func(workerIndex int, job any)

// Pool is a fixed-size goroutine pool draining a job channel. Producers
// Enqueue jobs and call Close once done; Close blocks until every queued
// job has been handled. The handler owns its own panic safety: a panic in
// one job is recovered and logged so it cannot take the pool down.
type Pool struct {
	numberOfWorker int
	jobs           chan any
	do             Handler
	waiter         sync.WaitGroup
}

func NewPool(numberOfWorkers, bufferSize int, do Handler) *Pool {
	if numberOfWorkers < 1 {
		numberOfWorkers = 1
	}
	return &Pool{
		numberOfWorker: numberOfWorkers,
		jobs:           make(chan any, bufferSize),
		do:             do,
	}
}

func (p *Pool) Start() {
	p.waiter.Add(p.numberOfWorker)
	for i := 0; i < p.numberOfWorker; i++ {
		go func(index int) {
			defer p.waiter.Done()
			for job := range p.jobs {
				p.run(index, job)
			}
		}(i)
	}
}

func (p *Pool) run(index int, job any) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("worker panic recovered", "worker", index, "panic", r)
		}
	}()
	p.do(index, job)
}

func (p *Pool) Enqueue(job any) {
	p.jobs <- job
}

func (p *Pool) Pending() int {
	return len(p.jobs)
}

// Close stops accepting jobs and waits for in-flight work to finish.
func (p *Pool) Close() {
	close(p.jobs)
	p.waiter.Wait()
}
