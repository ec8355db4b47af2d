package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicwatch/report-system/internal/core/domain"
	"github.com/civicwatch/report-system/internal/core/ports"
	"github.com/civicwatch/report-system/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	insertTimeout  = 5 * time.Second
)

// Dispatcher records report activity asynchronously. Entries are sharded by
// report id with FNV-1a so the trail of one report is written in order.
type Dispatcher struct {
	workers []chan domain.ReportActivity
	repo    ports.ActivityRepository
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var _ ports.ActivityPublisher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.ActivityRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.ReportActivity, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.ReportActivity, channelBuffer)
	}
	return d
}

// Start launches the workers. ctx bounds the repository writes.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Publish never blocks the request path: when the worker's buffer is full
// or the dispatcher is closed the entry is dropped and counted.
func (d *Dispatcher) Publish(a domain.ReportActivity) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.ActivityRecordedTotal.WithLabelValues("dropped").Inc()
		return
	}

	idx := d.shardIndex(a.ReportID)
	select {
	case d.workers[idx] <- a:
		metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.ActivityRecordedTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("report_id", a.ReportID).
			Str("action", string(a.Action)).
			Int("worker_id", idx).
			Msg("activity queue full, entry dropped")
	}
}

// Close stops accepting entries and waits for queued ones to be written.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) shardIndex(reportID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(reportID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.ReportActivity) {
	defer d.wg.Done()
	depth := metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(id))

	for a := range ch {
		depth.Dec()
		d.record(ctx, id, a)
	}
}

func (d *Dispatcher) record(ctx context.Context, worker int, a domain.ReportActivity) {
	// Queued entries are still flushed after ctx is cancelled on shutdown.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), insertTimeout)
	defer cancel()

	if err := d.repo.Insert(ctx, &a); err != nil {
		metrics.ActivityRecordedTotal.WithLabelValues("error").Inc()
		d.log.Error().Err(err).
			Str("report_id", a.ReportID).
			Str("action", string(a.Action)).
			Int("worker_id", worker).
			Msg("activity insert failed")
		return
	}
	metrics.ActivityRecordedTotal.WithLabelValues("ok").Inc()
}
