package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CachedQuoteRepository decorates a QuoteStore with an in-process cache.
//
// Read policy: GetAll merges the remote result into the cache (remote wins
// per quote) and falls back to the cached list when the database is
// unreachable, so agents keep a working view during a brief outage. GetByID
// serves cache hits without touching the database.
//
// Write policy: writes go to the database first and are never swallowed; the
// cache is updated only after a successful remote write. A version conflict
// evicts the cached copy so the next read fetches the winner.
type CachedQuoteRepository struct {
	remote QuoteStore
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[uuid.UUID]domain.Quote
}

// NewCachedQuoteRepository wraps a quote store with the in-process cache
func NewCachedQuoteRepository(remote QuoteStore, logger *zap.Logger) *CachedQuoteRepository {
	return &CachedQuoteRepository{
		remote: remote,
		logger: logger,
		cache:  make(map[uuid.UUID]domain.Quote),
	}
}

// Create inserts the quote remotely and caches it on success
func (c *CachedQuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	if err := c.remote.Create(ctx, quote); err != nil {
		return err
	}
	c.put(*quote)
	return nil
}

// GetByID checks the cache first, then falls through to one remote point
// read and caches the result.
func (c *CachedQuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	c.mu.RLock()
	cached, ok := c.cache[id]
	c.mu.RUnlock()
	if ok {
		q := cached
		return &q, nil
	}

	quote, err := c.remote.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.put(*quote)
	return quote, nil
}

// GetAll fetches the remote list and merges it into the cache, remote
// winning on conflict. When the remote read fails the cached list is
// returned unchanged, sorted newest-first, and the failure is logged rather
// than surfaced.
func (c *CachedQuoteRepository) GetAll(ctx context.Context) ([]domain.Quote, error) {
	remote, err := c.remote.GetAll(ctx)
	if err != nil {
		c.logger.Warn("quote list fetch failed, serving cached quotes",
			zap.Error(err),
			zap.Int("cached", c.size()),
		)
		return c.snapshot(), nil
	}

	c.mu.Lock()
	for _, q := range remote {
		c.cache[q.ID] = q
	}
	c.mu.Unlock()

	return c.snapshot(), nil
}

// List bypasses the cache: filtered queries always reflect the database.
func (c *CachedQuoteRepository) List(ctx context.Context, filter *domain.QuoteFilter) ([]domain.Quote, int64, error) {
	quotes, total, err := c.remote.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	c.mu.Lock()
	for _, q := range quotes {
		c.cache[q.ID] = q
	}
	c.mu.Unlock()
	return quotes, total, err
}

// Update writes the quote remotely and refreshes the cache on success.
// A version conflict evicts the stale cached copy before propagating.
func (c *CachedQuoteRepository) Update(ctx context.Context, quote *domain.Quote) error {
	err := c.remote.Update(ctx, quote)
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) || errors.Is(err, gorm.ErrRecordNotFound) {
			c.evict(quote.ID)
		}
		return err
	}
	c.put(*quote)
	return nil
}

// GetPool delegates to the remote store; pool views must be fresh
func (c *CachedQuoteRepository) GetPool(ctx context.Context, statuses []domain.AssignmentStatus) ([]domain.Quote, error) {
	return c.remote.GetPool(ctx, statuses)
}

// GetByAgent delegates to the remote store
func (c *CachedQuoteRepository) GetByAgent(ctx context.Context, agentID string) ([]domain.Quote, error) {
	return c.remote.GetByAgent(ctx, agentID)
}

// Invalidate drops a quote from the cache
func (c *CachedQuoteRepository) Invalidate(id uuid.UUID) {
	c.evict(id)
}

func (c *CachedQuoteRepository) put(q domain.Quote) {
	c.mu.Lock()
	c.cache[q.ID] = q
	c.mu.Unlock()
}

func (c *CachedQuoteRepository) evict(id uuid.UUID) {
	c.mu.Lock()
	delete(c.cache, id)
	c.mu.Unlock()
}

func (c *CachedQuoteRepository) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// snapshot returns the cached quotes sorted by createdAt descending
func (c *CachedQuoteRepository) snapshot() []domain.Quote {
	c.mu.RLock()
	quotes := make([]domain.Quote, 0, len(c.cache))
	for _, q := range c.cache {
		quotes = append(quotes, q)
	}
	c.mu.RUnlock()

	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].CreatedAt.After(quotes[j].CreatedAt)
	})
	return quotes
}
