// Package mint mints short, globally unique identifiers for entities and
// blank nodes.
//
// Each entity kind ("artist", "song", ...) has a code prefix and a counter
// in a counter.Store. Minting increments the counter and renders the new
// value as the prefix followed by the compact (z-base-32) encoding of the
// value's big-endian bytes:
//
//	seq 1       artist (prefix "ar")  aryb
//	seq 1000000 song   (prefix "so")  soy6o1y
//
// The code is appended to the kind's namespace to form the canonical URI and,
// when configured, to a short namespace:
//
//	uri       https://waldmeta.org/mint/artist/aryb
//	shortUri  https://wald.to/aryb
//
// # Blank nodes
//
// The reserved kind BNode ("bnode", prefix "_b" by default) skolemizes RDF
// blank nodes. Its counter lives under the base URI's authority at
// /.well-known/genid and each identifier also carries a blank node label:
//
//	uri    https://waldmeta.org/.well-known/genid/_byb
//	bnode  _:byb
//
// # Automatic mode
//
// NewID looks up a node's rdf:type values in an rdf.Datastore and mints the
// entity kind they map to (see package infer), or a blank node when none do.
//
// # Getting Started
//
//	store, err := redisstore.New(redisstore.Options{URL: "redis://localhost:6379"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer mint.CloseWithLog(store, nil, "counter store")
//
//	m, err := mint.New(mint.Config{
//		BaseURI:  "https://waldmeta.org/mint/",
//		ShortURI: "https://wald.to/",
//		Entities: map[string]string{"artist": "ar", "song": "so"},
//	}, store)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	id, err := m.NewEntity(ctx, "artist")
//
// # Error Handling
//
// Minter methods return *Error values. Use errors.Is with the sentinel
// errors (ErrUnknownEntity, ErrInvalidEncoding, ErrStoreUnavailable,
// ErrInvalidConfig) or errors.As to inspect the operation and kind.
//
// # Concurrency
//
// A Minter holds no mutable state. Concurrent mints of the same kind receive
// distinct, increasing sequence numbers because the store increments
// atomically. A value consumed by the store is never handed back, even when
// the caller's context is cancelled mid-request.
package mint
