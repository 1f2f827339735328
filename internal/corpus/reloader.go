package corpus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrNoSource is returned when a reload is requested without a configured source.
var ErrNoSource = errors.New("no corpus source configured")

// ReloadHook observes every successful reload.
type ReloadHook func(previous, next *Corpus)

// Reloader loads a corpus from its source and swaps it into the store.
type Reloader struct {
	store   *Store
	source  Source
	logger  *zap.Logger
	timeout time.Duration
	hooks   []ReloadHook
	onFail  []func(error)

	mu   sync.Mutex
	cron *cron.Cron
}

// NewReloader wires a reloader; hooks run after each successful swap.
func NewReloader(store *Store, source Source, logger *zap.Logger, hooks ...ReloadHook) *Reloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reloader{
		store:   store,
		source:  source,
		logger:  logger,
		timeout: time.Minute,
		hooks:   hooks,
	}
}

// OnFailure registers fn to observe failed reloads.
func (r *Reloader) OnFailure(fn func(error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onFail = append(r.onFail, fn)
}

// Reload replaces the corpus. On failure the current corpus stays in place.
func (r *Reloader) Reload(ctx context.Context) (Stats, error) {
	if r.source == nil {
		return Stats{}, ErrNoSource
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	next, err := r.source.Load(ctx)
	if err != nil {
		r.logger.Warn("corpus reload failed; keeping current corpus",
			zap.String("source", r.source.Name()),
			zap.Error(err))
		for _, fn := range r.onFail {
			fn(err)
		}
		return r.store.Snapshot().Stats(), fmt.Errorf("reload corpus from %s: %w", r.source.Name(), err)
	}

	previous := r.store.Swap(next)
	for _, hook := range r.hooks {
		hook(previous, next)
	}
	r.logger.Info("corpus reloaded",
		zap.String("source", r.source.Name()),
		zap.Int("tickets", next.Len()),
		zap.Int("previous_tickets", previous.Len()),
		zap.Duration("took", time.Since(start)))
	return next.Stats(), nil
}

// Start schedules periodic reloads using a standard 5-field cron expression.
// An empty schedule disables periodic reloads.
func (r *Reloader) Start(schedule string) error {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		r.logger.Info("scheduled corpus reload disabled")
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return errors.New("corpus reloader already started")
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, r.scheduledReload); err != nil {
		return fmt.Errorf("invalid corpus reload schedule %q: %w", schedule, err)
	}
	c.Start()
	r.cron = c
	r.logger.Info("scheduled corpus reload", zap.String("cron", schedule))
	return nil
}

// Stop halts scheduled reloads and waits for a running reload to finish.
func (r *Reloader) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
}

func (r *Reloader) scheduledReload() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	_, _ = r.Reload(ctx)
}
