// Package tagcache provides an in-memory key-value cache whose entries carry
// invalidation tags organized in a three-level hierarchy: a global tag per
// entity class, an organization-scoped tag, and a single-id tag.
//
// Invalidation is epoch based. Every Set stamps the entry with the current
// value of a monotonically increasing epoch counter; every Invalidate bumps
// the counter and records the new value against the tag. An entry is served
// only while its creation epoch is newer than the last-invalidated epoch of
// every tag it carries. Invalidating the global tag of an entity class
// records the epoch against the class itself, which makes it cover every
// narrower tag of that class without enumerating them.
//
// Reads never observe an entry that was superseded by an invalidation,
// even when Set and Invalidate race: the losing Set carries an older epoch
// and is evicted on the next read.
//
// Usage:
//
//	c := tagcache.New[store.User](tagcache.WithDefaultTTL(5 * time.Minute))
//	defer c.Close()
//
//	c.Set(ctx, "user:u1", u, 0, tagcache.IDScoped("users", "u1"))
//	c.Invalidate(ctx, tagcache.Global("users")) // every user entry is now a miss
package tagcache
