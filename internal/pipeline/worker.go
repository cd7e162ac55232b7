package pipeline

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"tokensentry/internal/models"
)

// WorkerPool drains webhook-triggered analyses off the request path. Helius
// expects a fast ack, so handlers enqueue and return while workers run the
// deep pipeline behind them.
type WorkerPool struct {
	engine *Engine
	log    zerolog.Logger

	tasks chan Request
	wg    sync.WaitGroup

	processed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewWorkerPool creates a pool with the given queue depth.
func NewWorkerPool(engine *Engine, log zerolog.Logger, queueSize int) *WorkerPool {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &WorkerPool{
		engine: engine,
		log:    log,
		tasks:  make(chan Request, queueSize),
	}
}

// Start launches n workers bound to ctx. Cancel the context to stop them.
func (p *WorkerPool) Start(ctx context.Context, n int) {
	if n <= 0 {
		n = 2
	}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Wait blocks until all workers have exited.
func (p *WorkerPool) Wait() { p.wg.Wait() }

// Enqueue adds one analysis task. Returns false when the queue is full; the
// caller should ack the webhook anyway so the sender does not retry-storm.
func (p *WorkerPool) Enqueue(req Request) bool {
	select {
	case p.tasks <- req:
		return true
	default:
		p.dropped.Add(1)
		p.log.Warn().Str("token", req.TokenAddress).Msg("webhook queue full, dropping task")
		return false
	}
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-p.tasks:
			if _, err := p.engine.Analyze(ctx, req); err != nil {
				p.failed.Add(1)
				p.log.Error().Err(err).Str("token", req.TokenAddress).Int("worker", id).
					Msg("background analysis failed")
				continue
			}
			p.processed.Add(1)
		}
	}
}

// Stats reports queue health for the status endpoint.
type PoolStats struct {
	QueueSize int   `json:"queue_size"`
	Processed int64 `json:"total_processed"`
	Failed    int64 `json:"total_failed"`
	Dropped   int64 `json:"total_dropped"`
}

func (p *WorkerPool) Stats() PoolStats {
	return PoolStats{
		QueueSize: len(p.tasks),
		Processed: p.processed.Load(),
		Failed:    p.failed.Load(),
		Dropped:   p.dropped.Load(),
	}
}

// DeepRequest builds the standard webhook-triggered request.
func DeepRequest(tokenAddress string) Request {
	return Request{
		TokenAddress: tokenAddress,
		Type:         models.AnalysisDeep,
		SourceEvent:  EventWebhook,
	}
}
