package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/afripulse/storefront-session/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

type job struct {
	device string
	task   func(ctx context.Context)
}

// DepthObserver receives the backlog of a worker after each enqueue.
type DepthObserver func(worker string, depth int)

// Dispatcher runs background tasks on a fixed set of workers using
// consistent hashing on the device id, guaranteeing per-device ordering.
type Dispatcher struct {
	workers []chan job
	log     zerolog.Logger
	observe DepthObserver
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan job, numWorkers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan job, channelBuffer)
	}
	return d
}

var _ ports.TaskQueue = (*Dispatcher)(nil)

// ObserveDepth installs a backlog observer. Call before Start.
func (d *Dispatcher) ObserveDepth(fn DepthObserver) {
	d.observe = fn
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands task to the worker responsible for device. When that
// worker's backlog is full the task is dropped: background work here is
// best-effort and must never stall a request.
func (d *Dispatcher) Enqueue(device string, task func(ctx context.Context)) {
	idx := d.shardIndex(device)
	select {
	case d.workers[idx] <- job{device: device, task: task}:
		if d.observe != nil {
			d.observe(strconv.Itoa(idx), len(d.workers[idx]))
		}
	default:
		d.log.Warn().Str("device", device).Int("worker_id", idx).Msg("background queue full, task dropped")
	}
}

// shardIndex maps a device id deterministically to a worker index.
func (d *Dispatcher) shardIndex(device string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(device))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan job) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-ch:
			d.run(ctx, id, j)
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, id int, j job) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Interface("panic", r).
				Str("device", j.device).
				Int("worker_id", id).
				Msg("background task panicked")
		}
	}()
	j.task(ctx)
}
