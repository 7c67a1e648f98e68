package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// MembershipCache keeps group-membership lookups out of postgres on the hot
// join/leave/list paths. Entries expire quickly; membership changes are
// rare but not authoritative here, the repository is.
type MembershipCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMembershipCache connects to redis, or returns nil when addr is empty
// so callers degrade to repository lookups. A nil receiver is safe.
func NewMembershipCache(addr, password string, db int, ttl time.Duration) *MembershipCache {
	if addr == "" {
		log.Println("membership cache disabled: empty redis addr")
		return nil
	}
	return &MembershipCache{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		ttl:    ttl,
	}
}

type membershipEntry struct {
	Member bool `msgpack:"member"`
}

func membershipKey(groupID, userID int) string {
	return fmt.Sprintf("membership:%d:%d", groupID, userID)
}

// Get returns the cached membership verdict and whether one was present.
func (c *MembershipCache) Get(ctx context.Context, groupID, userID int) (bool, bool) {
	if c == nil || c.client == nil {
		return false, false
	}

	raw, err := c.client.Get(ctx, membershipKey(groupID, userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("membership cache get failed: %v", err)
		}
		return false, false
	}

	var entry membershipEntry
	if err := msgpack.Unmarshal(raw, &entry); err != nil {
		log.Printf("membership cache decode failed: %v", err)
		return false, false
	}
	return entry.Member, true
}

// Set stores a membership verdict with the cache TTL.
func (c *MembershipCache) Set(ctx context.Context, groupID, userID int, member bool) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := msgpack.Marshal(membershipEntry{Member: member})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, membershipKey(groupID, userID), raw, c.ttl).Err(); err != nil {
		log.Printf("membership cache set failed: %v", err)
	}
}

// InvalidateGroup drops all cached verdicts for a group, e.g. after its
// member list changes.
func (c *MembershipCache) InvalidateGroup(ctx context.Context, groupID int) {
	if c == nil || c.client == nil {
		return
	}

	pattern := fmt.Sprintf("membership:%d:*", groupID)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("membership cache invalidate failed: %v", err)
			return
		}
	}
	if err := iter.Err(); err != nil {
		log.Printf("membership cache scan failed: %v", err)
	}
}
