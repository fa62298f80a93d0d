// Package health reports whether the minter's dependencies are usable.
//
// Checks return a Status (healthy, degraded or unhealthy) and can be
// aggregated with Combine:
//
//	overall := health.Combine(
//	    health.StoreCheck(ctx, "redis", store, 0),
//	    health.EndpointCheck(ctx, "redis", "localhost:6379"),
//	)
//	if overall.IsUnhealthy() {
//	    log.Fatal(overall.Message)
//	}
//
// StoreCheck works with any counter store that implements counter.Pinger;
// all stores in this module do.
package health
