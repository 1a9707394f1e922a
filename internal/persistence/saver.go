package persistence

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/scoremaster/scoremaster-desktop/internal/model"
)

// SaverOptions tunes the background writer.
type SaverOptions struct {
	Retries      uint64
	Backoff      time.Duration
	WriteTimeout time.Duration
}

// DefaultSaverOptions are used for zero fields.
var DefaultSaverOptions = SaverOptions{
	Retries:      3,
	Backoff:      50 * time.Millisecond,
	WriteTimeout: 10 * time.Second,
}

// Saver writes snapshots in the background. Only the latest pending snapshot
// is written; older ones are dropped. Failures are logged and never reach
// the caller.
type Saver struct {
	gw     *Gateway
	opts   SaverOptions
	logger *log.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending *model.GameState
	queued  uint64
	written uint64
	failed  uint64
	closed  bool
	stopped bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

// NewSaver starts the background writer.
func NewSaver(gw *Gateway, opts SaverOptions) *Saver {
	if opts.Retries == 0 {
		opts.Retries = DefaultSaverOptions.Retries
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultSaverOptions.Backoff
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultSaverOptions.WriteTimeout
	}
	s := &Saver{
		gw:     gw,
		opts:   opts,
		logger: gw.logger,
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// Enqueue schedules state to be written and returns immediately.
func (s *Saver) Enqueue(state model.GameState) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Printf("saver closed, snapshot dropped")
		return
	}
	st := state
	s.pending = &st
	s.queued++
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every snapshot enqueued before the call has been
// written or given up on.
func (s *Saver) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := s.queued
	for s.written < target && !s.stopped {
		s.cond.Wait()
	}
}

// Failures reports how many snapshots could not be written.
func (s *Saver) Failures() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// Close writes the pending snapshot and stops the writer. Snapshots
// enqueued afterwards are dropped.
func (s *Saver) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stop)
	<-s.done

	s.mu.Lock()
	s.stopped = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

func (s *Saver) run() {
	defer close(s.done)
	for {
		select {
		case <-s.wake:
			s.drain()
		case <-s.stop:
			s.drain()
			return
		}
	}
}

func (s *Saver) drain() {
	for {
		s.mu.Lock()
		st := s.pending
		seq := s.queued
		s.pending = nil
		s.mu.Unlock()
		if st == nil {
			return
		}

		err := s.write(*st)

		s.mu.Lock()
		if err != nil {
			s.failed++
		}
		s.written = seq
		s.cond.Broadcast()
		s.mu.Unlock()
	}
}

func (s *Saver) write(state model.GameState) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.WriteTimeout)
	defer cancel()

	attempt := 0
	backoff := retry.WithMaxRetries(s.opts.Retries, retry.NewExponential(s.opts.Backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := s.gw.Save(ctx, state); err != nil {
			s.logger.Printf("save attempt %d failed: %v", attempt, err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		s.logger.Printf("snapshot dropped after %d attempts: %v", attempt, err)
	}
	return err
}
