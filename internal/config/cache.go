package config

import (
    "strings"
    "time"
)

// CacheConfig controls the Redis response cache placed in front of the
// public catalog cost endpoint.  Responses larger than MaxBodyBytes and
// non-200 responses are never stored.  Prices edited in the database show
// up in the cost view after at most TTL unless the cache is purged; the
// amount a payment records is always priced from the database.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
        TTL:          envDur("CACHE_TTL", time.Minute),
        Prefix:       envStr("CACHE_PREFIX", "travel:cache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
}

func parseMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range strings.Split(s, ",") {
        if p = strings.TrimSpace(strings.ToUpper(p)); p != "" {
            m[p] = true
        }
    }
    return m
}
