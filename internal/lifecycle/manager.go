// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package lifecycle

import (
	"sync"
	"time"
)

// DefaultIdleTimeout is how long an unused Controller is kept.
const DefaultIdleTimeout = 24 * time.Hour

// Manager holds one Controller per session key.
type Manager struct {
	mu          sync.Mutex
	controllers map[string]*Controller
	gen         Generator
	docs        DocumentStore
	idle        time.Duration
	stopCh      chan struct{}
}

// NewManager creates a Manager whose controllers share gen and docs.
// It starts a background goroutine that evicts controllers unused for
// longer than idle.
func NewManager(gen Generator, docs DocumentStore, idle time.Duration) *Manager {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	m := &Manager{
		controllers: make(map[string]*Controller),
		gen:         gen,
		docs:        docs,
		idle:        idle,
		stopCh:      make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.cleanup(time.Now())
			case <-m.stopCh:
				return
			}
		}
	}()

	return m
}

// Stop terminates the background cleanup goroutine.
func (m *Manager) Stop() {
	close(m.stopCh)
}

// Get returns the Controller for key, creating it on first use.
func (m *Manager) Get(key string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.controllers[key]
	if !ok {
		c = NewController(m.gen, m.docs)
		m.controllers[key] = c
	}
	return c
}

// Remove drops the Controller for key, if any.
func (m *Manager) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.controllers, key)
}

// Rekey moves the Controller for oldKey to newKey, keeping the displayed
// document when a session is rotated on sign-in.
func (m *Manager) Rekey(oldKey, newKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.controllers[oldKey]; ok {
		delete(m.controllers, oldKey)
		m.controllers[newKey] = c
	}
}

// Len returns the number of live controllers.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.controllers)
}

// cleanup removes controllers idle since before now minus the idle timeout.
// Controllers with a generation in flight are kept.
func (m *Manager) cleanup(now time.Time) {
	cutoff := now.Add(-m.idle)

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, c := range m.controllers {
		last, evictable := c.idleSince()
		if evictable && last.Before(cutoff) {
			delete(m.controllers, key)
		}
	}
}
