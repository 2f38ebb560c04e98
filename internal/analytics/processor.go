package analytics

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/metrics"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNotStarted = errors.New("click logger not started")
	ErrQueueFull  = errors.New("click queue is full")

	ErrShutdownTimeout = errors.New("click logger shutdown timeout reached")
)

// ClickData сырые данные запроса редиректа
type ClickData struct {
	LinkID    int64
	SessionID string
	IP        string
	UserAgent string
	Referrer  string
	ClickedAt time.Time
}

// ClickStore пишет клики
type ClickStore interface {
	CreateClick(ctx context.Context, click *domain.Click) error
}

// ProcessorConfig holds configuration for the click logger
type ProcessorConfig struct {
	WorkerCount     int           // Number of worker goroutines
	BufferSize      int           // Size of the job queue buffer
	WriteTimeout    time.Duration // Deadline for enrichment plus a single write
	ShutdownTimeout time.Duration // Time to wait for queued clicks on Stop
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() ProcessorConfig {
	return ProcessorConfig{
		WorkerCount:     3,
		BufferSize:      1000,
		WriteTimeout:    5 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Processor асинхронно обогащает и сохраняет клики.
// Ошибки только логируются, повторных попыток нет.
type Processor struct {
	config   ProcessorConfig
	store    ClickStore
	enricher *Enricher
	log      *zap.Logger
	jobQueue chan *ClickData
	wg       sync.WaitGroup
	started  bool
	stopped  bool
	mu       sync.RWMutex

	// ctx отменяется, когда Stop не дождался очереди; незаписанные клики
	// считаются в abandoned
	ctx       context.Context
	cancel    context.CancelFunc
	abandoned atomic.Int64
}

// NewProcessor creates a new click logger
func NewProcessor(store ClickStore, enricher *Enricher, log *zap.Logger, config ProcessorConfig) *Processor {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	if config.BufferSize < 0 {
		config.BufferSize = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Processor{
		config:   config,
		store:    store,
		enricher: enricher,
		log:      log,
		jobQueue: make(chan *ClickData, config.BufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins processing clicks
func (p *Processor) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("click logger already started")
	}
	if p.stopped {
		return fmt.Errorf("click logger already stopped")
	}

	p.log.Info("starting click logger",
		zap.Int("workers", p.config.WorkerCount),
		zap.Int("buffer_size", p.config.BufferSize),
	)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.started = true
	return nil
}

// Stop перестает принимать клики и дожидается записи очереди.
// По истечении ShutdownTimeout текущие записи отменяются, остаток очереди
// отбрасывается, и Stop возвращает ErrShutdownTimeout с числом потерянных
// кликов. После возврата воркеры не обращаются к хранилищу, если оно
// уважает контекст.
func (p *Processor) Stop() error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return ErrNotStarted
	}
	p.started = false
	p.stopped = true
	close(p.jobQueue)
	p.mu.Unlock()

	p.log.Info("stopping click logger", zap.Int("pending", len(p.jobQueue)))

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.log.Info("click logger stopped gracefully")
		return nil
	case <-time.After(p.config.ShutdownTimeout):
	}

	p.cancel()
	select {
	case <-done:
	case <-time.After(p.config.WriteTimeout):
		p.log.Warn("click workers ignored cancellation")
	}

	abandoned := p.abandoned.Load() + int64(len(p.jobQueue))
	p.log.Warn("click logger shutdown timeout reached", zap.Int64("abandoned", abandoned))
	return fmt.Errorf("%w: %d clicks abandoned", ErrShutdownTimeout, abandoned)
}

// Abandoned возвращает число кликов, не записанных из-за остановки
func (p *Processor) Abandoned() int64 {
	return p.abandoned.Load()
}

func (p *Processor) abandon(data *ClickData) {
	p.abandoned.Add(1)
	metrics.ClicksDropped.Inc()
	p.log.Debug("click abandoned on shutdown",
		zap.Int64("link_id", data.LinkID),
		zap.String("session_id", data.SessionID),
	)
}

// Submit ставит клик в очередь и никогда не блокирует.
// Переполненная или остановленная очередь отбрасывает клик.
func (p *Processor) Submit(click *ClickData) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.started {
		metrics.ClicksDropped.Inc()
		p.log.Warn("click logger not running, dropping click", zap.String("session_id", click.SessionID))
		return ErrNotStarted
	}

	select {
	case p.jobQueue <- click:
		metrics.ClickQueueLength.Set(float64(len(p.jobQueue)))
		return nil
	default:
		metrics.ClicksDropped.Inc()
		p.log.Error("click queue is full, dropping click",
			zap.Int64("link_id", click.LinkID),
			zap.String("session_id", click.SessionID),
			zap.Int("queue_size", len(p.jobQueue)),
		)
		return ErrQueueFull
	}
}

func (p *Processor) worker(workerID int) {
	defer p.wg.Done()

	log := p.log.With(zap.Int("worker_id", workerID))
	log.Debug("click worker started")

	for click := range p.jobQueue {
		metrics.ClickQueueLength.Set(float64(len(p.jobQueue)))
		if p.ctx.Err() != nil {
			p.abandon(click)
			continue
		}
		p.process(log, click)
	}

	log.Debug("click worker stopped")
}

func (p *Processor) process(log *zap.Logger, data *ClickData) {
	ctx, cancel := context.WithTimeout(p.ctx, p.config.WriteTimeout)
	defer cancel()

	click := p.enricher.Enrich(ctx, data)

	if err := p.store.CreateClick(ctx, click); err != nil {
		if p.ctx.Err() != nil {
			p.abandon(data)
			return
		}
		metrics.ClicksLogged.WithLabelValues("error").Inc()
		log.Error("click logging failed",
			zap.Int64("link_id", data.LinkID),
			zap.String("session_id", data.SessionID),
			zap.Error(err),
		)
		return
	}

	metrics.ClicksLogged.WithLabelValues("ok").Inc()
	log.Debug("click recorded",
		zap.Int64("link_id", data.LinkID),
		zap.String("session_id", data.SessionID),
		zap.String("device_type", click.GetDeviceType()),
	)
}

// GetStats returns processor statistics
func (p *Processor) GetStats() map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return map[string]interface{}{
		"started":        p.started,
		"queue_length":   len(p.jobQueue),
		"queue_capacity": cap(p.jobQueue),
		"worker_count":   p.config.WorkerCount,
		"abandoned":      p.abandoned.Load(),
	}
}
