package security

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/travelbooking/booking-api/internal/api/metrics"
)

const (
	defaultWorkers = 4
	queueBuffer    = 64
)

// ErrPoolClosed is returned by Submit once the pool's context is cancelled.
var ErrPoolClosed = errors.New("hash pool closed")

type hashJob struct {
	run  func()
	done chan struct{}
}

// HashPool runs CPU-heavy password work on a fixed number of goroutines so a
// burst of logins cannot starve request handling.
type HashPool struct {
	jobs    chan hashJob
	workers int
	closed  chan struct{}
	once    sync.Once
	log     zerolog.Logger
}

// NewHashPool creates a HashPool with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewHashPool(numWorkers int, log zerolog.Logger) *HashPool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &HashPool{
		jobs:    make(chan hashJob, queueBuffer),
		workers: numWorkers,
		closed:  make(chan struct{}),
		log:     log,
	}
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (p *HashPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		go p.runWorker(ctx, i)
	}
	go func() {
		<-ctx.Done()
		p.once.Do(func() { close(p.closed) })
	}()
}

// Submit queues fn and blocks until it has run or ctx is done.
// When ctx expires after fn was picked up, fn still runs to completion but
// its result is discarded by the caller.
func (p *HashPool) Submit(ctx context.Context, fn func()) error {
	select {
	case <-p.closed:
		return ErrPoolClosed
	default:
	}

	job := hashJob{run: fn, done: make(chan struct{})}
	select {
	case p.jobs <- job:
		metrics.HashQueueDepth.Set(float64(len(p.jobs)))
	case <-p.closed:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-job.done:
		return nil
	case <-p.closed:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *HashPool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-p.jobs:
			metrics.HashQueueDepth.Set(float64(len(p.jobs)))
			p.execute(id, job)
		}
	}
}

func (p *HashPool) execute(id int, job hashJob) {
	defer close(job.done)
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().
				Interface("panic", r).
				Str("worker_id", strconv.Itoa(id)).
				Msg("hash job panicked")
		}
	}()
	job.run()
}
