// Package database owns the one-shot database connection attempt made at
// startup. The attempt runs in the background; the HTTP listener never waits
// for it.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"inventory-server/config"
	"inventory-server/store"
	"inventory-server/store/mongostore"
	"inventory-server/store/sqlitestore"
)

type State string

// ErrClosed is reported by Err when the bootstrap was closed before the
// connection attempt finished.
var ErrClosed = errors.New("database bootstrap closed")

const lateCloseTimeout = 5 * time.Second

const (
	StateConnecting State = "connecting"
	StateConnected  State = "connected"
	StateFailed     State = "failed"
)

// ConnectFunc opens a store. It is called exactly once per Bootstrap.
type ConnectFunc func(ctx context.Context) (store.Store, error)

// Connector returns the ConnectFunc for the configured driver.
func Connector(cfg config.DatabaseConfig) ConnectFunc {
	if cfg.Driver == config.DriverSQLite {
		return func(ctx context.Context) (store.Store, error) {
			return sqlitestore.Open(ctx, cfg.SQLitePath)
		}
	}
	return func(ctx context.Context) (store.Store, error) {
		return mongostore.Connect(ctx, cfg)
	}
}

// Bootstrap tracks the connection attempt and hands out the store once it
// is up. State moves connecting -> connected or connecting -> failed and
// never back.
type Bootstrap struct {
	logger *slog.Logger

	mu      sync.RWMutex
	state   State
	store   store.Store
	err     error
	started bool
	closed  bool

	once sync.Once
	done chan struct{}
}

func NewBootstrap(logger *slog.Logger) *Bootstrap {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bootstrap{
		logger: logger,
		state:  StateConnecting,
		done:   make(chan struct{}),
	}
}

// Start launches the connection attempt in a goroutine and returns
// immediately. Calls after the first are ignored.
func (b *Bootstrap) Start(ctx context.Context, connect ConnectFunc) {
	b.once.Do(func() {
		b.mu.Lock()
		b.started = true
		b.mu.Unlock()
		go b.run(ctx, connect)
	})
}

func (b *Bootstrap) run(ctx context.Context, connect ConnectFunc) {
	defer close(b.done)

	s, err := connect(ctx)

	b.mu.Lock()
	if err == nil && b.closed {
		b.state = StateFailed
		b.err = ErrClosed
		b.mu.Unlock()
		b.logger.Warn("database connected after shutdown, closing it")
		closeCtx, cancel := context.WithTimeout(context.Background(), lateCloseTimeout)
		defer cancel()
		if cerr := s.Close(closeCtx); cerr != nil {
			b.logger.Error("close late database connection", "err", cerr)
		}
		return
	}
	defer b.mu.Unlock()
	if err != nil {
		b.state = StateFailed
		b.err = err
		b.logger.Error("database connection error", "err", err)
		return
	}
	b.state = StateConnected
	b.store = s
	b.logger.Info("database connected")
}

// Done is closed once the connection attempt has resolved either way.
func (b *Bootstrap) Done() <-chan struct{} {
	return b.done
}

func (b *Bootstrap) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// Err returns the connection error after a failed attempt.
func (b *Bootstrap) Err() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.err
}

// Store implements store.Source.
func (b *Bootstrap) Store() (store.Store, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.store == nil {
		return nil, fmt.Errorf("%w: %s", store.ErrUnavailable, b.state)
	}
	return b.store, nil
}

// Close waits, bounded by ctx, for a pending connection attempt and then
// releases the store. A connection that succeeds after ctx expired is
// closed by the attempt itself.
func (b *Bootstrap) Close(ctx context.Context) error {
	b.mu.RLock()
	started := b.started
	b.mu.RUnlock()

	var waitErr error
	if started {
		select {
		case <-b.done:
		case <-ctx.Done():
			waitErr = fmt.Errorf("database still connecting: %w", ctx.Err())
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.store == nil {
		return waitErr
	}
	err := b.store.Close(ctx)
	b.store = nil
	return err
}
