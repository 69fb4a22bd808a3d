// Package metrics provides observability for the arena server.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers run and delivery counters.
type Collector struct {
	// Tournament metrics
	RunsStarted   int64
	RunsCompleted int64
	RunsFailed    int64
	MatchesPlayed int64
	RoundsPlayed  int64

	// Media metrics
	ReportsDelivered int64
	RumorsDelivered  int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime   time.Time
	LastRunTime time.Time
	mu          sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordRunStart records the beginning of a tournament run.
func (c *Collector) RecordRunStart() {
	atomic.AddInt64(&c.RunsStarted, 1)
	c.mu.Lock()
	c.LastRunTime = time.Now()
	c.mu.Unlock()
}

// RecordRunEnd records a completed or failed run.
func (c *Collector) RecordRunEnd(err error) {
	if err != nil {
		atomic.AddInt64(&c.RunsFailed, 1)
		return
	}
	atomic.AddInt64(&c.RunsCompleted, 1)
}

// RecordMatch records one finished match and its round count.
func (c *Collector) RecordMatch(rounds int) {
	atomic.AddInt64(&c.MatchesPlayed, 1)
	atomic.AddInt64(&c.RoundsPlayed, int64(rounds))
}

// RecordDelivery records one media report reaching a listener.
func (c *Collector) RecordDelivery(accurate bool) {
	atomic.AddInt64(&c.ReportsDelivered, 1)
	if !accurate {
		atomic.AddInt64(&c.RumorsDelivered, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records an outgoing WebSocket message.
func (c *Collector) RecordWSMessage() {
	atomic.AddInt64(&c.WSMessagesOut, 1)
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"runs": map[string]interface{}{
			"started":   atomic.LoadInt64(&c.RunsStarted),
			"completed": atomic.LoadInt64(&c.RunsCompleted),
			"failed":    atomic.LoadInt64(&c.RunsFailed),
			"last_run":  c.LastRunTime.Format(time.RFC3339),
		},

		"matches": map[string]interface{}{
			"played": atomic.LoadInt64(&c.MatchesPlayed),
			"rounds": atomic.LoadInt64(&c.RoundsPlayed),
		},

		"media": map[string]interface{}{
			"reports_delivered": atomic.LoadInt64(&c.ReportsDelivered),
			"rumors_delivered":  atomic.LoadInt64(&c.RumorsDelivered),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}
