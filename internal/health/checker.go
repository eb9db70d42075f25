package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Status represents the health status of a component
type Status struct {
	Name    string        `json:"name"`
	Healthy bool          `json:"healthy"`
	Latency time.Duration `json:"latency"`
	Error   string        `json:"error,omitempty"`
}

// Probe checks one component; nil means healthy
type Probe func(ctx context.Context) error

// Checker periodically checks health of system components
type Checker struct {
	mu       sync.RWMutex
	statuses []Status
	probes   map[string]Probe
	interval time.Duration
	timeout  time.Duration
}

// NewChecker creates a new health checker
func NewChecker(interval time.Duration) *Checker {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Checker{
		probes:   make(map[string]Probe),
		interval: interval,
		timeout:  5 * time.Second,
	}
}

// Register adds a probe under name, replacing any earlier one
func (c *Checker) Register(name string, p Probe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes[name] = p
}

// Start begins periodic health checks
func (c *Checker) Start(ctx context.Context) {
	// Initial check
	c.Check(ctx)

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Check(ctx)
			}
		}
	}()
}

// Check runs every probe once
func (c *Checker) Check(ctx context.Context) {
	type entry struct {
		name  string
		probe Probe
	}
	c.mu.RLock()
	entries := make([]entry, 0, len(c.probes))
	for name, p := range c.probes {
		entries = append(entries, entry{name, p})
	}
	c.mu.RUnlock()
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	statuses := make([]Status, 0, len(entries))
	for _, e := range entries {
		statuses = append(statuses, c.run(ctx, e.name, e.probe))
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

func (c *Checker) run(ctx context.Context, name string, p Probe) Status {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := p(ctx)
	status := Status{
		Name:    name,
		Latency: time.Since(start),
		Healthy: err == nil,
	}
	if err != nil {
		status.Error = err.Error()
		log.Debug().Err(err).Str("component", name).Msg("health probe failed")
	}
	return status
}

// GetStatuses returns current health statuses
func (c *Checker) GetStatuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Status(nil), c.statuses...)
}

// Healthy reports whether every component passed its last check
func (c *Checker) Healthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}
