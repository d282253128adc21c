package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"assignment-service/internal/app"
	"assignment-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// AssignmentCache caches FindAssignment results with a TTL to avoid repeated
// DB hits. Assignments are immutable once created, so cached entries never go
// stale; the TTL only bounds memory.
type AssignmentCache struct {
	app.AssignmentRepository

	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand
	rndMu sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedAssignment
}

type cachedAssignment struct {
	assignment domain.Assignment
	expiresAt  time.Time
}

func NewAssignmentCache(next app.AssignmentRepository, ttl time.Duration) *AssignmentCache {
	return &AssignmentCache{
		AssignmentRepository: next,
		ttl:                  ttl,
		clock:                time.Now,
		rnd:                  rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:                make(map[string]cachedAssignment),
	}
}

func (c *AssignmentCache) FindAssignment(ctx context.Context, id string) (domain.Assignment, error) {
	if a, ok := c.lookup(id); ok {
		return a, nil
	}

	result, err, _ := c.sf.Do(id, func() (interface{}, error) {
		if a, ok := c.lookup(id); ok {
			return a, nil
		}

		a, err := c.AssignmentRepository.FindAssignment(ctx, id)
		if err != nil {
			return domain.Assignment{}, err
		}

		c.mu.Lock()
		c.cache[id] = cachedAssignment{
			assignment: a,
			expiresAt:  c.clock().Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return a, nil
	})
	if err != nil {
		return domain.Assignment{}, err
	}
	return result.(domain.Assignment), nil
}

func (c *AssignmentCache) lookup(id string) (domain.Assignment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[id]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return domain.Assignment{}, false
	}
	return entry.assignment, true
}

func (c *AssignmentCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
