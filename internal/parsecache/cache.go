// Package parsecache memoizes hours parsing by the exact authored text.
//
// Parsing is pure in its input, so a schedule can be shared across callers
// for as long as it stays in the cache. Status depends on the clock and is
// never stored here.
package parsecache

import (
	"placehours/internal/hours"
	"placehours/internal/metrics"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is used when a non-positive size is configured.
const DefaultSize = 1024

type entry struct {
	schedule hours.Schedule
	dialect  string
}

// Cache is a bounded LRU of parsed schedules keyed by raw hours text.
// It is safe for concurrent use.
type Cache struct {
	lru *lru.Cache[string, entry]
}

// New creates a cache holding at most size parsed texts.
func New(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	l, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l}, nil
}

// Parse returns the schedule for raw, parsing it on a miss.
func (c *Cache) Parse(raw string) hours.Schedule {
	s, _ := c.ParseDialect(raw)
	return s
}

// ParseDialect is Parse plus the name of the dialect that accepted raw.
// The returned schedule is a copy; callers may modify it freely.
func (c *Cache) ParseDialect(raw string) (hours.Schedule, string) {
	if e, ok := c.lru.Get(raw); ok {
		metrics.IncParseCache(true)
		return e.schedule.Clone(), e.dialect
	}
	metrics.IncParseCache(false)

	s, dialect := hours.ParseDialect(raw)
	metrics.IncDialect(dialect)
	c.lru.Add(raw, entry{schedule: s, dialect: dialect})
	return s.Clone(), dialect
}

// Len reports the number of cached texts.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge drops every cached schedule.
func (c *Cache) Purge() {
	c.lru.Purge()
}
