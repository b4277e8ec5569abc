package widgets

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/edgekit/go-widgets/components/datasource"
)

// RenderCache memoizes rendered chart HTML so repeated fetches are cheap.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

const chartCacheMaxEntries = 512

// ChartCache is an in-memory TTL cache for rendered charts. Entries are keyed
// on the widget's full binding (see chartCacheKey), so rebinding a widget to a
// different source never serves the previous chart.
type ChartCache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]renderedChart
}

type renderedChart struct {
	html    string
	expires time.Time
}

// NewChartCache builds a cache with the provided TTL. A zero or negative TTL
// disables caching entirely.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]renderedChart),
	}
}

// GetOrRender returns a cached entry or renders/stores a new one.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if html, ok := c.get(key); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.set(key, html)
	return html, nil
}

func (c *ChartCache) get(key string) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expires) {
		if ok {
			c.mu.Lock()
			delete(c.entries, key)
			c.mu.Unlock()
		}
		return "", false
	}
	return entry.html, true
}

func (c *ChartCache) set(key, html string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= chartCacheMaxEntries {
		c.evictLocked()
	}
	c.entries[key] = renderedChart{
		html:    html,
		expires: c.now().Add(c.ttl),
	}
}

// evictLocked drops expired entries first and, if the cache is still full,
// one arbitrary entry. Map iteration order makes that a cheap random pick.
func (c *ChartCache) evictLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) < chartCacheMaxEntries {
		return
	}
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

// chartCacheKey identifies a rendered chart by everything that shapes it: the
// widget identity, the chart flavor, and a digest of the bound sources plus
// configuration. Rebinding a widget (which changes Sources but often not
// Configuration) therefore always misses the old entry.
func chartCacheKey(instance WidgetInstance, chartType string) string {
	parts := []string{instance.DefinitionID, instance.ID, chartType, bindingHash(instance)}
	return strings.Join(parts, "|")
}

// bindingHash digests the instance's sources and configuration together.
// Transform settings ride on the source structs, so tuning changes alter the
// digest too.
func bindingHash(instance WidgetInstance) string {
	payload := struct {
		Sources datasource.DataSourceOrList `json:"sources"`
		Config  map[string]any              `json:"config,omitempty"`
	}{
		Sources: instance.Sources,
		Config:  instance.Configuration,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
