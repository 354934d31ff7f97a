package code_analyzer

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/meysamhadeli/localepack/code_analyzer/models"
	"github.com/meysamhadeli/localepack/resource"
	"github.com/zeebo/xxh3"
)

// CacheEntry represents a cached item with metadata
type CacheEntry struct {
	Data      interface{}
	Timestamp time.Time
	Size      int
	Hash      uint64
}

// MemoryCache holds entries keyed by name and validated by a content digest.
// It lives as long as one build process.
type MemoryCache struct {
	entries map[string]*CacheEntry
	mutex   sync.RWMutex
}

// CacheStats tracks cache performance metrics
type CacheStats struct {
	TotalRequests int64
	CacheHits     int64
	CacheMisses   int64
	Evictions     int64
	LastResetTime time.Time
	mutex         sync.RWMutex
}

// CacheManager caches parsed locale sources and module reports for one process.
type CacheManager struct {
	memoryCache *MemoryCache
	stats       *CacheStats
}

// Key prefixes of the entry kinds.
const (
	resourcePrefix = "resource:"
	reportPrefix   = "report:"
)

// NewCacheManager creates an empty cache manager.
func NewCacheManager() *CacheManager {
	return &CacheManager{
		memoryCache: &MemoryCache{entries: make(map[string]*CacheEntry)},
		stats: &CacheStats{
			LastResetTime: time.Now(),
		},
	}
}

// Get retrieves data if the entry exists and was stored for the same digest.
// A stale entry is dropped.
func (mc *MemoryCache) Get(key string, hash uint64) (interface{}, bool) {
	mc.mutex.RLock()
	entry, exists := mc.entries[key]
	mc.mutex.RUnlock()
	if !exists {
		return nil, false
	}
	if entry.Hash != hash {
		mc.mutex.Lock()
		if current, ok := mc.entries[key]; ok && current == entry {
			delete(mc.entries, key)
		}
		mc.mutex.Unlock()
		return nil, false
	}
	return entry.Data, true
}

// Set stores data for key and digest, replacing any older entry.
func (mc *MemoryCache) Set(key string, hash uint64, size int, data interface{}) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	mc.entries[key] = &CacheEntry{
		Data:      data,
		Timestamp: time.Now(),
		Size:      size,
		Hash:      hash,
	}
}

// Delete removes a cache entry and reports whether it existed.
func (mc *MemoryCache) Delete(key string) bool {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	_, exists := mc.entries[key]
	delete(mc.entries, key)
	return exists
}

// Clear removes all entries
func (mc *MemoryCache) Clear() {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	mc.entries = make(map[string]*CacheEntry)
}

// Keys returns the entry keys in sorted order.
func (mc *MemoryCache) Keys() []string {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()
	keys := make([]string, 0, len(mc.entries))
	for key := range mc.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// GetResourceCache returns the parse result of path if source did not change since it was stored.
func (cm *CacheManager) GetResourceCache(path string, source []byte) (*resource.Result, bool) {
	data, found := cm.memoryCache.Get(resourcePrefix+path, xxh3.Hash(source))
	if !found {
		cm.recordCacheMiss()
		return nil, false
	}

	if result, ok := data.(*resource.Result); ok {
		cm.recordCacheHit()
		return result, true
	}

	cm.recordCacheMiss()
	return nil, false
}

// SetResourceCache stores the parse result of path for source.
func (cm *CacheManager) SetResourceCache(path string, source []byte, result *resource.Result) {
	cm.memoryCache.Set(resourcePrefix+path, xxh3.Hash(source), len(source), result)
}

// GetReportCache retrieves the cached report of a generated module
func (cm *CacheManager) GetReportCache(code []byte) (*models.ModuleReport, bool) {
	hash := xxh3.Hash(code)
	data, found := cm.memoryCache.Get(reportKey(hash), hash)
	if !found {
		cm.recordCacheMiss()
		return nil, false
	}

	if report, ok := data.(*models.ModuleReport); ok {
		cm.recordCacheHit()
		return report, true
	}

	cm.recordCacheMiss()
	return nil, false
}

// SetReportCache stores the report of a generated module
func (cm *CacheManager) SetReportCache(code []byte, report *models.ModuleReport) {
	hash := xxh3.Hash(code)
	cm.memoryCache.Set(reportKey(hash), hash, len(code), report)
}

func reportKey(hash uint64) string {
	return fmt.Sprintf("%s%016x", reportPrefix, hash)
}

// Invalidate drops the cached parse result of path.
func (cm *CacheManager) Invalidate(path string) {
	if cm.memoryCache.Delete(resourcePrefix + path) {
		cm.recordEviction()
	}
}

// ClearCache removes every entry and resets the statistics.
func (cm *CacheManager) ClearCache() {
	cm.memoryCache.Clear()
	cm.ResetPerformanceStats()
}

// GetCacheStats returns cache statistics
func (cm *CacheManager) GetCacheStats() map[string]interface{} {
	cm.memoryCache.mutex.RLock()
	defer cm.memoryCache.mutex.RUnlock()

	var totalSize int
	var resourceCount, reportCount int
	oldestTime := time.Now()
	newestTime := time.Time{}

	for _, entry := range cm.memoryCache.entries {
		totalSize += entry.Size
		if entry.Timestamp.Before(oldestTime) {
			oldestTime = entry.Timestamp
		}
		if entry.Timestamp.After(newestTime) {
			newestTime = entry.Timestamp
		}

		switch entry.Data.(type) {
		case *resource.Result:
			resourceCount++
		case *models.ModuleReport:
			reportCount++
		}
	}

	stats := map[string]interface{}{
		"cache_entries":    len(cm.memoryCache.entries),
		"total_size":       totalSize,
		"resource_entries": resourceCount,
		"report_entries":   reportCount,
	}
	if len(cm.memoryCache.entries) > 0 {
		stats["oldest_entry"] = oldestTime.Format(time.RFC3339)
		stats["newest_entry"] = newestTime.Format(time.RFC3339)
	}
	return stats
}
