package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/events"
)

// NotificationWorker moves automatic ticket alerts off the request path.
// Triaged events are queued and handled by a fixed pool of goroutines.
type NotificationWorker struct {
	handle  events.EventHandler
	logger  *zap.Logger
	queue   chan events.Event
	workers int
	timeout time.Duration

	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
}

// NewNotificationWorker builds a worker around handle, usually
// NotificationService.HandleTicketTriaged.
func NewNotificationWorker(handle events.EventHandler, logger *zap.Logger, workers, queueSize int) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &NotificationWorker{
		handle:  handle,
		logger:  logger,
		queue:   make(chan events.Event, queueSize),
		workers: workers,
		timeout: 30 * time.Second,
	}
}

// Register subscribes the worker to triaged tickets.
func (w *NotificationWorker) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketTriaged, w.enqueue)
}

// Start launches the pool.
func (w *NotificationWorker) Start() {
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.run()
	}
}

// Stop drains queued events and waits for the pool to exit. Events published
// after Stop are dropped.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.queue)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		w.logger.Warn("notification worker stopped; event dropped", zap.String("ticket_key", event.TicketKey))
		return nil
	}
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full; event dropped", zap.String("ticket_key", event.TicketKey))
	}
	return nil
}

func (w *NotificationWorker) run() {
	defer w.wg.Done()
	for event := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		if err := w.handle(ctx, event); err != nil {
			w.logger.Error("notification failed",
				zap.String("ticket_key", event.TicketKey),
				zap.Error(err))
		}
		cancel()
	}
}
