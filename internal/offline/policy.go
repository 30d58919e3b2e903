package offline

import "strings"

// Policy selects the caching strategy for one request.
type Policy int

const (
	// PolicyNetworkFirst tries the live network and falls back to the
	// cache, used for API calls whose data goes stale.
	PolicyNetworkFirst Policy = iota
	// PolicyCacheFirst serves the cached copy when present, used for
	// static assets that never change under one version.
	PolicyCacheFirst
)

// APIPrefix marks the request paths that carry live data.
const APIPrefix = "/api/"

// Classify maps a request path to its caching policy. Pure function so the
// routing decision is testable apart from any cache or network.
func Classify(path string) Policy {
	if strings.HasPrefix(path, APIPrefix) {
		return PolicyNetworkFirst
	}
	return PolicyCacheFirst
}
