package config

import "sync"

// Controls holds the live control values. It implements engine.Controls and
// is safe for concurrent use.
type Controls struct {
	mu sync.RWMutex
	v  ControlsConfig
}

// NewControls returns controls initialised to v.
func NewControls(v ControlsConfig) *Controls {
	return &Controls{v: v}
}

// Set replaces all values.
func (c *Controls) Set(v ControlsConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v = v
}

// Values returns a copy of the current values.
func (c *Controls) Values() ControlsConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v
}

// Gravity returns the gravity strength.
func (c *Controls) Gravity() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v.Gravity
}

// Rejection returns the rejection strength.
func (c *Controls) Rejection() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v.Rejection
}

// NodeSize returns the base node radius.
func (c *Controls) NodeSize() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v.NodeSize
}

// Adjust adds the deltas to the current values, keeping gravity and node size
// positive and rejection non-negative. It returns the new values.
func (c *Controls) Adjust(gravity, rejection, size float64) ControlsConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g := c.v.Gravity + gravity; g > 0 {
		c.v.Gravity = g
	}
	c.v.Rejection = max(c.v.Rejection+rejection, 0)
	if s := c.v.NodeSize + size; s > 0 {
		c.v.NodeSize = s
	}
	return c.v
}
