// Package worker provides an asynchronous worker pool for persisting
// completed responses using the provided cache.Driver.
//
// The pool decouples cache writes from the client's request hot path so that
// callers never wait on storage latency.
package worker

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/respond/pkg/cache"
	"github.com/papercomputeco/respond/pkg/responses"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	Key      string
	Model    string
	Response *responses.Response
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the cache backend for persisting responses.
	Driver cache.Driver

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Pool processes cache-write jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("cache write queued",
			zap.String("key", job.Key),
			zap.String("model", job.Model),
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			zap.String("key", job.Key),
			zap.String("model", job.Model),
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after all requests have completed.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", zap.Uint("worker_id", id))

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("cache worker stopped", zap.Uint("worker_id", id))
}

// processJob writes one completed response to the cache.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	entry := &cache.Entry{
		Key:       job.Key,
		Model:     job.Model,
		Response:  job.Response,
		CreatedAt: time.Now(),
	}

	isNew, err := p.config.Driver.Put(ctx, entry)
	if err != nil {
		p.logger.Error("async cache write failed",
			zap.String("key", job.Key),
			zap.Error(err),
		)
		return
	}

	p.logger.Info("response cached",
		zap.String("key", job.Key),
		zap.String("model", job.Model),
		zap.Bool("is_new", isNew),
	)
}
