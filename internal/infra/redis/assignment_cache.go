package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"assignment-service/internal/app"
	"assignment-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// AssignmentCache caches assignments in Redis (one JSON string per id) and
// falls back to the wrapped repository on a miss. Listing and writes pass
// straight through.
//
//	SET assignment:{id} {json} EX ttl
type AssignmentCache struct {
	app.AssignmentRepository

	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewAssignmentCache(client *redis.Client, next app.AssignmentRepository, ttl time.Duration) *AssignmentCache {
	return &AssignmentCache{
		AssignmentRepository: next,
		client:               client,
		ttl:                  ttl,
		rnd:                  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *AssignmentCache) FindAssignment(ctx context.Context, id string) (domain.Assignment, error) {
	if a, ok := c.cached(ctx, id); ok {
		return a, nil
	}

	result, err, _ := c.sf.Do(id, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if a, ok := c.cached(ctx, id); ok {
			return a, nil
		}

		a, err := c.AssignmentRepository.FindAssignment(ctx, id)
		if err != nil {
			return domain.Assignment{}, err
		}

		if data, err := json.Marshal(a); err == nil {
			_ = c.client.Set(ctx, c.key(id), data, c.ttlWithJitter()).Err()
		}
		return a, nil
	})
	if err != nil {
		return domain.Assignment{}, err
	}
	return result.(domain.Assignment), nil
}

// cached is best-effort: any Redis failure is treated as a miss.
func (c *AssignmentCache) cached(ctx context.Context, id string) (domain.Assignment, bool) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		return domain.Assignment{}, false
	}
	var a domain.Assignment
	if err := json.Unmarshal(raw, &a); err != nil {
		return domain.Assignment{}, false
	}
	return a, true
}

func (c *AssignmentCache) key(id string) string {
	return "assignment:" + id
}

func (c *AssignmentCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
