package reward

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// walletCache is a small LRU of token balances for the read-heavy pending
// endpoint. Entries expire quickly and every claim settlement invalidates
// the owner's entry, so a cached read is never older than one TTL.
type walletCache struct {
	lru *expirable.LRU[string, int]
}

func newWalletCache(size int, ttl time.Duration) *walletCache {
	return &walletCache{
		lru: expirable.NewLRU[string, int](size, nil, ttl),
	}
}

func (c *walletCache) Get(userID string) (int, bool) {
	return c.lru.Get(userID)
}

func (c *walletCache) Set(userID string, balance int) {
	c.lru.Add(userID, balance)
}

func (c *walletCache) Invalidate(userID string) {
	c.lru.Remove(userID)
}
