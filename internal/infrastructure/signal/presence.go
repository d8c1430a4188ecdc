package signal

import (
	"sync"

	"teleconsult/internal/core/domain"
)

// PresenceRegistry maps user identity to the active connection handle. It is
// the source of truth for "is this user reachable now". At most one entry
// exists per identity; a newer connection from the same identity replaces
// the prior entry without closing it.
type PresenceRegistry struct {
	mu      sync.RWMutex
	entries map[domain.UserID]*Client
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		entries: make(map[domain.UserID]*Client),
	}
}

// Register inserts or replaces the presence entry for the client's identity
// and returns the replaced connection handle, if any.
func (p *PresenceRegistry) Register(c *Client) *Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	prev := p.entries[c.userID]
	p.entries[c.userID] = c
	return prev
}

// Unregister removes the presence entry only if c is still the current
// connection for its identity. It reports whether an entry was removed, so
// the stale disconnect of a replaced connection does not knock a newer one
// offline.
func (p *PresenceRegistry) Unregister(c *Client) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.entries[c.userID] != c {
		return false
	}
	delete(p.entries, c.userID)
	return true
}

// Lookup returns the active connection handle for an identity.
func (p *PresenceRegistry) Lookup(id domain.UserID) (*Client, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c, ok := p.entries[id]
	return c, ok
}

// All returns a snapshot of every active connection handle.
func (p *PresenceRegistry) All() []*Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*Client, 0, len(p.entries))
	for _, c := range p.entries {
		out = append(out, c)
	}
	return out
}

// Count returns the number of online identities.
func (p *PresenceRegistry) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}
