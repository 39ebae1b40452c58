package subscription

// AccountCache remembers the platform account created for each source
// account id during one import run. Later stores win.
type AccountCache struct {
	ids map[string]string
}

// NewAccountCache returns an empty cache.
func NewAccountCache() *AccountCache {
	return &AccountCache{ids: make(map[string]string)}
}

// Lookup returns the platform account id for sourceID.
func (c *AccountCache) Lookup(sourceID string) (string, bool) {
	if sourceID == "" {
		return "", false
	}
	id, ok := c.ids[sourceID]
	return id, ok
}

// Store records accountID for sourceID. Empty keys or ids are ignored.
func (c *AccountCache) Store(sourceID, accountID string) {
	if sourceID == "" || accountID == "" {
		return
	}
	c.ids[sourceID] = accountID
}

// Len returns the number of cached accounts.
func (c *AccountCache) Len() int {
	return len(c.ids)
}
