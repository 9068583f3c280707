package identity

import (
	"sync"

	"github.com/sovahealth/courier/internal/models"
)

// NameCache remembers resolved display names per thread id. Entries
// merge monotonically: nothing is ever deleted, and a present entry is
// never replaced by an empty name, so a successful resolution survives
// weaker later signals.
type NameCache struct {
	mu    sync.RWMutex
	names map[models.ID]string
}

func NewNameCache() *NameCache {
	return &NameCache{names: make(map[models.ID]string)}
}

func (c *NameCache) Get(threadID models.ID) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.names[threadID]
	return name, ok
}

// Put records a resolved name. Empty ids and empty names are ignored.
func (c *NameCache) Put(threadID models.ID, name string) {
	if threadID == "" || name == "" {
		return
	}
	c.mu.Lock()
	c.names[threadID] = name
	c.mu.Unlock()
}

func (c *NameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}
