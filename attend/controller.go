package attend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	uatomic "go.uber.org/atomic"
)

var (
	ErrAlreadyRunning = errors.New("readers are already running")
	ErrNotRunning     = errors.New("readers are not running")
	ErrNoReaders      = errors.New("no readers configured")
	ErrTooManyReaders = errors.New("at most four readers are supported")
)

const (
	maxReaders  = 4
	stopTimeout = time.Second
)

// ControllerConfig wires the shared collaborators of one controller.
type ControllerConfig struct {
	Store         RowStore
	Archive       *Archive
	Audit         *AuditLog
	EventBuffer   int
	FlushInterval time.Duration
	PollDelay     time.Duration
	// OpenReader overrides the reader factory. Tests inject fakes here.
	OpenReader func(ReaderConfig) (TagReader, error)
}

// Controller owns the reader workers and the shared ingestion state. Start
// spawns one worker per configured reader; Stop signals them and waits a
// bounded time for acknowledgement.
type Controller struct {
	set       *TagSet
	flush     *FlushCoordinator
	events    *EventBus
	archive   *Archive
	audit     *AuditLog
	open      func(ReaderConfig) (TagReader, error)
	pollDelay time.Duration

	mu      sync.Mutex
	running *uatomic.Bool
	stopCh  chan struct{}
	wg      *sync.WaitGroup
}

func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("Store is required")
	}
	open := cfg.OpenReader
	if open == nil {
		open = OpenReader
	}
	pollDelay := cfg.PollDelay
	if pollDelay <= 0 {
		pollDelay = defaultPollDelay
	}
	flush := NewFlushCoordinator(cfg.Store, cfg.FlushInterval)
	flush.archive = cfg.Archive
	flush.audit = cfg.Audit
	return &Controller{
		set:       NewTagSet(),
		flush:     flush,
		events:    NewEventBus(cfg.EventBuffer),
		archive:   cfg.Archive,
		audit:     cfg.Audit,
		open:      open,
		pollDelay: pollDelay,
	}, nil
}

// Events is the presentation feed.
func (c *Controller) Events() <-chan Event {
	return c.events.Events()
}

// TagCount is the number of tags pending reconciliation.
func (c *Controller) TagCount() int {
	return c.set.Len()
}

// TotalReconciled is the running total of identifiers reconciled this run.
func (c *Controller) TotalReconciled() int64 {
	return c.flush.Reconciled()
}

func (c *Controller) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running != nil && c.running.Load()
}

// Start spawns one ingestion worker per reader. All workers share the tag
// set, the flush coordinator and a per-run running flag, so an abandoned
// worker from an earlier run can never resume.
func (c *Controller) Start(ctx context.Context, configs []ReaderConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running != nil && c.running.Load() {
		return ErrAlreadyRunning
	}
	if len(configs) == 0 {
		return ErrNoReaders
	}
	if len(configs) > maxReaders {
		return ErrTooManyReaders
	}

	c.running = uatomic.NewBool(true)
	c.stopCh = make(chan struct{})
	c.wg = &sync.WaitGroup{}
	for _, rc := range configs {
		w := &worker{
			cfg:       rc,
			open:      c.open,
			set:       c.set,
			flush:     c.flush,
			events:    c.events,
			archive:   c.archive,
			running:   c.running,
			stop:      c.stopCh,
			pollDelay: c.pollDelay,
			log:       logrus.WithField("reader", rc.Addr),
		}
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			w.run(ctx)
		}()
	}
	logrus.WithField("readers", len(configs)).Info("ingestion started")
	return nil
}

// Stop signals every worker and waits up to stopTimeout for them to finish.
// A worker still blocked on device I/O after that is abandoned; it releases
// its channel whenever the read returns.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running == nil || !c.running.Load() {
		return ErrNotRunning
	}
	c.running.Store(false)
	close(c.stopCh)

	done := make(chan struct{})
	wg := c.wg
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		logrus.Info("all readers stopped")
	case <-time.After(stopTimeout):
		logrus.Warn("stop timeout, abandoning readers still blocked on device I/O")
	}

	if c.audit != nil {
		if err := c.audit.Merge(c.set.Snapshot()); err != nil {
			logrus.WithError(err).Warn("audit file merge on stop failed")
		}
	}
	return nil
}
