// Package counter defines the counter store the minter depends on.
//
// A counter store keeps one integer per key and increments it atomically. The
// minter treats it as the single source of truth for sequence numbers: two
// callers incrementing the same key never observe the same value, and a value
// that has been handed out is never handed out again.
//
// Values cross the interface as decimal strings so that no backend is forced
// through a fixed-width integer type.
//
// # Implementations
//
//   - MemoryStore: in-process map, for tests and single-process use
//   - redisstore: Redis INCR/SET (signed 64-bit ceiling)
//   - etcdstore: etcd v3 compare-and-swap, arbitrary precision
//   - badgerstore: embedded Badger database, arbitrary precision
//
// # Failure Semantics
//
// Stores never retry an increment after a transport failure. If the request
// reached the server before the failure, the value is consumed; retrying
// blindly could consume a second one. Errors wrap ErrUnavailable so callers
// can decide on their own retry policy.
package counter
