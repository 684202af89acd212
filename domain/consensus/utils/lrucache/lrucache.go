// Package lrucache implements a small fixed-capacity LRU cache used by
// every store as a read-through layer in front of the database.
package lrucache

import (
	"container/list"

	"github.com/kaspanet/kaspad/domain/consensus/model/externalapi"
)

// LRUCache is a fixed-capacity cache keyed by externalapi.DomainHash.
type LRUCache struct {
	capacity int
	entries  map[externalapi.DomainHash]*list.Element
	order    *list.List
}

type entry struct {
	key   externalapi.DomainHash
	value interface{}
}

// New creates an LRUCache with the given capacity. A capacity of 0 disables
// caching entirely (every Add/Get is a no-op/miss).
func New(capacity int) *LRUCache {
	return &LRUCache{
		capacity: capacity,
		entries:  make(map[externalapi.DomainHash]*list.Element),
		order:    list.New(),
	}
}

// Add inserts or updates the cached value for key.
func (c *LRUCache) Add(key *externalapi.DomainHash, value interface{}) {
	if c.capacity == 0 {
		return
	}
	if elem, ok := c.entries[*key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*entry).value = value
		return
	}

	elem := c.order.PushFront(&entry{key: *key, value: value})
	c.entries[*key] = elem

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*entry).key)
		}
	}
}

// Get returns the cached value for key, if present.
func (c *LRUCache) Get(key *externalapi.DomainHash) (interface{}, bool) {
	elem, ok := c.entries[*key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*entry).value, true
}

// Remove evicts key from the cache, if present.
func (c *LRUCache) Remove(key *externalapi.DomainHash) {
	if elem, ok := c.entries[*key]; ok {
		c.order.Remove(elem)
		delete(c.entries, *key)
	}
}
