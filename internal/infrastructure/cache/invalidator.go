// Package cache keeps in-process feed snapshots fresh using PostgreSQL
// LISTEN/NOTIFY.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"dice/pkg/logger"
)

// Channel is the NOTIFY channel raised by the feed table triggers. The payload
// names the record kind that changed.
const Channel = "feed_changed"

// InvalidationListener is called with the changed record kind. An empty kind
// means everything may have changed.
type InvalidationListener func(kind string)

// Invalidator listens for feed change notifications and fans them out to
// registered listeners.
type Invalidator struct {
	pool *pgxpool.Pool

	listeners   []InvalidationListener
	listenersMu sync.RWMutex

	lifecycleMu sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

// NewInvalidator creates an invalidator over pool.
func NewInvalidator(pool *pgxpool.Pool) *Invalidator {
	return &Invalidator{pool: pool}
}

// OnInvalidation registers a callback.
func (c *Invalidator) OnInvalidation(listener InvalidationListener) {
	c.listenersMu.Lock()
	c.listeners = append(c.listeners, listener)
	c.listenersMu.Unlock()
}

// Start begins listening in the background.
func (c *Invalidator) Start(ctx context.Context) {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()
	if c.started {
		return
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.started = true

	c.wg.Add(1)
	go c.listenLoop()
	logger.Info(c.ctx, "feed invalidator started", "channel", Channel)
}

// Stop cancels the listener and waits for it to exit.
func (c *Invalidator) Stop() {
	c.lifecycleMu.Lock()
	if !c.started {
		c.lifecycleMu.Unlock()
		return
	}
	cancel := c.cancel
	c.started = false
	c.cancel = nil
	c.lifecycleMu.Unlock()

	cancel()
	c.wg.Wait()
	logger.Info(context.Background(), "feed invalidator stopped")
}

func (c *Invalidator) listenLoop() {
	defer c.wg.Done()

	for c.ctx.Err() == nil {
		conn, err := c.pool.Acquire(c.ctx)
		if err != nil {
			logger.Error(c.ctx, "failed to acquire connection for LISTEN", "error", err)
			c.sleep(time.Second)
			continue
		}

		if _, err := conn.Exec(c.ctx, "LISTEN "+Channel); err != nil {
			logger.Error(c.ctx, "failed to LISTEN", "error", err)
			conn.Release()
			c.sleep(time.Second)
			continue
		}

		// Anything may have changed while we were not listening.
		c.Notify("")
		c.waitForNotifications(conn)
		conn.Release()
	}
}

func (c *Invalidator) waitForNotifications(conn *pgxpool.Conn) {
	for c.ctx.Err() == nil {
		ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
		n, err := conn.Conn().WaitForNotification(ctx)
		cancel()

		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			if ctx.Err() != nil {
				continue
			}
			// Connection-level failure; reacquire.
			logger.Warn(c.ctx, "notification wait failed", "error", err)
			return
		}

		logger.Debug(c.ctx, "received notification", "channel", n.Channel, "payload", n.Payload)
		if n.Channel == Channel {
			c.Notify(n.Payload)
		}
	}
}

func (c *Invalidator) sleep(d time.Duration) {
	select {
	case <-c.ctx.Done():
	case <-time.After(d):
	}
}

// Notify delivers an invalidation to every listener. A panicking listener is
// logged and does not stop delivery to the others.
func (c *Invalidator) Notify(kind string) {
	kind = strings.TrimSpace(kind)

	c.listenersMu.RLock()
	defer c.listenersMu.RUnlock()
	for _, listener := range c.listeners {
		func(l InvalidationListener) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error(context.Background(), "listener panic recovered", "kind", kind, "panic", r)
				}
			}()
			l(kind)
		}(listener)
	}
}
