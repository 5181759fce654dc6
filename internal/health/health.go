package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Status represents the health status of a component
type Status string

const (
	// StatusUp indicates that the component is healthy
	StatusUp Status = "up"
	// StatusDown indicates that the component is unhealthy
	StatusDown Status = "down"
	// StatusDegraded indicates that the component is partially healthy
	StatusDegraded Status = "degraded"
)

// CheckFunc probes one component.
type CheckFunc func(ctx context.Context) (Status, error)

// Component represents a component that can be health checked
type Component struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Checker periodically probes registered components and serves the result
// over HTTP.
type Checker struct {
	mu         sync.RWMutex
	components map[string]*Component
	checks     map[string]CheckFunc
	updatedAt  time.Time
	period     time.Duration
	stopChan   chan struct{}
}

// NewChecker creates a new health checker
func NewChecker(period time.Duration) *Checker {
	if period <= 0 {
		period = 30 * time.Second
	}
	return &Checker{
		components: make(map[string]*Component),
		checks:     make(map[string]CheckFunc),
		updatedAt:  time.Now(),
		period:     period,
		stopChan:   make(chan struct{}),
	}
}

// Register adds a component to the checker.
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.components[name] = &Component{Name: name, Status: StatusDown}
	c.checks[name] = check
}

// Start runs the periodic checks until Stop is called.
func (c *Checker) Start() {
	ticker := time.NewTicker(c.period)
	go func() {
		c.checkAll()
		for {
			select {
			case <-ticker.C:
				c.checkAll()
			case <-c.stopChan:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the health checker
func (c *Checker) Stop() {
	close(c.stopChan)
}

func (c *Checker) checkAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.updatedAt = time.Now()
	for name, check := range c.checks {
		status, err := check(ctx)
		component := c.components[name]
		component.Status = status
		if err != nil {
			component.Error = err.Error()
		} else {
			component.Error = ""
		}
	}
}

// Overall reports the aggregate status across all components.
func (c *Checker) Overall() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.components) == 0 {
		return StatusDown
	}
	for _, component := range c.components {
		if component.Status == StatusDown {
			return StatusDegraded
		}
	}
	return StatusUp
}

// HTTPHandler returns an HTTP handler for health checks
func (c *Checker) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.mu.RLock()
		components := make([]Component, 0, len(c.components))
		for _, component := range c.components {
			components = append(components, *component)
		}
		updatedAt := c.updatedAt
		c.mu.RUnlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":     c.Overall(),
			"components": components,
			"updated_at": updatedAt.Format(time.RFC3339),
		})
	})
}
