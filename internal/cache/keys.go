package cache

import "fmt"

const keyPrefix = "testboard"

// TestStatsKey is the cache key for a test's aggregated statistics. The
// entry is invalidated whenever an attempt for the test is submitted.
func TestStatsKey(testID string) string {
	return fmt.Sprintf("%s:stats:test:%s", keyPrefix, testID)
}
