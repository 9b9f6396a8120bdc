package cache

import (
	"context"
	"errors"
	"log/slog"
)

var _ Manager = (*MultiTier)(nil)

// MultiTier checks a fast tier before a persistent one and warms the fast
// tier on persistent hits. Either tier may be nil.
type MultiTier struct {
	fast, persistent Manager
	logger           *slog.Logger
}

// NewMultiTier combines fast and persistent tiers.
func NewMultiTier(fast, persistent Manager, logger *slog.Logger) *MultiTier {
	if logger == nil {
		logger = slog.Default()
	}
	return &MultiTier{fast: fast, persistent: persistent, logger: logger}
}

// Get implements Manager.
func (c *MultiTier) Get(ctx context.Context, key Key) (*Entry, error) {
	if c.fast != nil {
		if e, err := c.fast.Get(ctx, key); err == nil {
			return e, nil
		} else if !errors.Is(err, ErrCacheMiss) {
			return nil, err
		}
	}
	if c.persistent == nil {
		return nil, ErrCacheMiss
	}
	e, err := c.persistent.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if c.fast != nil {
		if putErr := c.fast.Put(ctx, e); putErr != nil {
			c.logger.Warn("failed to warm fast cache tier", "err", putErr)
		}
	}
	return e, nil
}

// Put writes to both tiers. A persistent write failure is returned; a fast
// tier failure is only logged.
func (c *MultiTier) Put(ctx context.Context, entry *Entry) error {
	if c.persistent != nil {
		if err := c.persistent.Put(ctx, entry); err != nil {
			return err
		}
	}
	if c.fast != nil {
		if err := c.fast.Put(ctx, entry); err != nil {
			c.logger.Warn("failed to write fast cache tier", "err", err)
		}
	}
	return nil
}

// Delete implements Manager.
func (c *MultiTier) Delete(ctx context.Context, key Key) error {
	if c.fast != nil {
		if err := c.fast.Delete(ctx, key); err != nil {
			return err
		}
	}
	if c.persistent != nil {
		return c.persistent.Delete(ctx, key)
	}
	return nil
}
