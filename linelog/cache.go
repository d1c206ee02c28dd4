package linelog

import (
	"stackline/cas"
	"stackline/linediff"
	"stackline/memo"
)

// Process-wide memoization. Every cached function is pure and keyed by
// content digests, so the caches never serve stale data. They are not
// synchronized; the engine is single-threaded by contract.
var (
	executeCache = memo.New(256)
	flattenCache = memo.New(64)
	depMapCache  = memo.New(64)
	diffCache    = memo.New(64)
)

// diffLines is the cached line diff used by RecordTextAt.
func diffLines(a, b string) []linediff.Hunk {
	key := "d:" + cas.SumStrings([]string{a, b}).Hex()
	return diffCache.GetOrCompute(key, func() interface{} {
		return linediff.Diff(a, b)
	}).([]linediff.Hunk)
}

// CacheMetrics reports hit/miss counters for every engine cache,
// keyed by cache name.
func CacheMetrics() map[string]memo.Metrics {
	return map[string]memo.Metrics{
		"execute": executeCache.Metrics(),
		"flatten": flattenCache.Metrics(),
		"depmap":  depMapCache.Metrics(),
		"diff":    diffCache.Metrics(),
	}
}

// ResetCaches clears all engine caches and their counters.
func ResetCaches() {
	executeCache.Reset()
	flattenCache.Reset()
	depMapCache.Reset()
	diffCache.Reset()
}
