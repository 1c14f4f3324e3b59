// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides a fixed pool of goroutines that run parallel
// fills and wait on a barrier before returning.
//
// A Pool is created once and reused, so repeated filter updates do not spawn
// goroutines per call:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	pool.Run(len(pieces), func(worker int) {
//	    fill(pieces[worker], worker)
//	})
//
// A panic inside a work item is recovered on the worker and raised again on
// the goroutine that called Run or ParallelFor, after the batch has finished.
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a persistent set of workers.
type Pool struct {
	numWorkers int
	workC      chan workItem
	closeOnce  sync.Once
	closed     atomic.Bool
}

type workItem struct {
	fn      func()
	barrier *sync.WaitGroup
	failure *batchPanic
}

// batchPanic keeps the first panic raised by the items of one batch.
type batchPanic struct {
	once  sync.Once
	value any
}

func (b *batchPanic) record(v any) {
	b.once.Do(func() { b.value = v })
}

// rethrow panics with the recorded value, if any. Call it only after the
// batch barrier.
func (b *batchPanic) rethrow() {
	if b.value != nil {
		panic(b.value)
	}
}

func (item workItem) run() {
	defer item.barrier.Done()
	defer func() {
		if r := recover(); r != nil {
			item.failure.record(r)
		}
	}()
	item.fn()
}

// New starts a pool of numWorkers goroutines. If numWorkers <= 0, GOMAXPROCS
// is used.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		workC:      make(chan workItem, numWorkers*2),
	}
	for range numWorkers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for item := range p.workC {
		item.run()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close stops the workers once queued work has drained. Calling Close more
// than once is safe; a closed pool runs work on the calling goroutine. Close
// must not race with Run or ParallelFor.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// Closed reports whether Close has been called.
func (p *Pool) Closed() bool {
	return p.closed.Load()
}

// Run calls fn(i) for every i in [0, n), each on its own work item, and
// returns after all calls have finished. Items are independent; the caller
// guarantees they write to disjoint data.
func (p *Pool) Run(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if n == 1 || p.closed.Load() {
		for i := range n {
			fn(i)
		}
		return
	}

	var (
		wg      sync.WaitGroup
		failure batchPanic
	)
	wg.Add(n)
	for i := range n {
		p.workC <- workItem{
			fn:      func() { fn(i) },
			barrier: &wg,
			failure: &failure,
		}
	}
	wg.Wait()
	failure.rethrow()
}

// ParallelFor splits [0, n) into one contiguous chunk per worker and calls
// fn(start, end) for each. Blocks until all chunks are done.
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if p.closed.Load() {
		fn(0, n)
		return
	}

	workers := min(p.numWorkers, n)
	if workers == 1 {
		fn(0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers

	var (
		wg      sync.WaitGroup
		failure batchPanic
	)
	wg.Add(workers)
	for i := range workers {
		start := i * chunkSize
		end := min(start+chunkSize, n)
		if start >= n {
			wg.Done()
			continue
		}
		p.workC <- workItem{
			fn:      func() { fn(start, end) },
			barrier: &wg,
			failure: &failure,
		}
	}
	wg.Wait()
	failure.rethrow()
}
