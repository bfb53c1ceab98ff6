// Package metrics provides observability for the game server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Collector gathers server counters.
type Collector struct {
	// Session engine
	Travels           int64
	TravelsDuplicate  int64
	TravelsRejected   int64
	TooltipsInjected  int64
	AccusationsRight  int64
	AccusationsWrong  int64

	// Document store
	DocWrites      int64
	DocWriteErrors int64

	// Activity log
	ActivityWrites      int64
	ActivityWriteErrors int64

	// WebSocket feed
	WSConnectionsActive int64
	WSMessagesOut       int64
	WSErrors            int64

	StartTime time.Time
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordTravel records a travel attempt outcome.
func (c *Collector) RecordTravel(duplicate bool) {
	if duplicate {
		atomic.AddInt64(&c.TravelsDuplicate, 1)
		return
	}
	atomic.AddInt64(&c.Travels, 1)
}

// RecordTravelRejected records a travel to an unknown location.
func (c *Collector) RecordTravelRejected() {
	atomic.AddInt64(&c.TravelsRejected, 1)
}

// RecordTooltip records a tooltip injection.
func (c *Collector) RecordTooltip() {
	atomic.AddInt64(&c.TooltipsInjected, 1)
}

// RecordAccusation records an accusation attempt.
func (c *Collector) RecordAccusation(correct bool) {
	if correct {
		atomic.AddInt64(&c.AccusationsRight, 1)
	} else {
		atomic.AddInt64(&c.AccusationsWrong, 1)
	}
}

// RecordDocWrite records a document store write.
func (c *Collector) RecordDocWrite(err error) {
	atomic.AddInt64(&c.DocWrites, 1)
	if err != nil {
		atomic.AddInt64(&c.DocWriteErrors, 1)
	}
}

// RecordActivityWrite records an activity log persistence attempt.
func (c *Collector) RecordActivityWrite(err error) {
	atomic.AddInt64(&c.ActivityWrites, 1)
	if err != nil {
		atomic.AddInt64(&c.ActivityWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records an outbound WebSocket message.
func (c *Collector) RecordWSMessage() {
	atomic.AddInt64(&c.WSMessagesOut, 1)
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]any {
	return map[string]any{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"session": map[string]any{
			"travels":               atomic.LoadInt64(&c.Travels),
			"travels_duplicate":     atomic.LoadInt64(&c.TravelsDuplicate),
			"travels_rejected":      atomic.LoadInt64(&c.TravelsRejected),
			"tooltips_injected":     atomic.LoadInt64(&c.TooltipsInjected),
			"accusations_correct":   atomic.LoadInt64(&c.AccusationsRight),
			"accusations_incorrect": atomic.LoadInt64(&c.AccusationsWrong),
		},

		"storage": map[string]any{
			"doc_writes":            atomic.LoadInt64(&c.DocWrites),
			"doc_write_errors":      atomic.LoadInt64(&c.DocWriteErrors),
			"activity_writes":       atomic.LoadInt64(&c.ActivityWrites),
			"activity_write_errors": atomic.LoadInt64(&c.ActivityWriteErrors),
		},

		"websocket": map[string]any{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		json.NewEncoder(w).Encode(collector.Snapshot())
	}
}

// PrometheusHandler returns metrics in Prometheus exposition format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		fmt.Fprintf(w, "# HELP gumshoe_travels_total Successful travels\n")
		fmt.Fprintf(w, "# TYPE gumshoe_travels_total counter\n")
		fmt.Fprintf(w, "gumshoe_travels_total %d\n\n", atomic.LoadInt64(&c.Travels))

		fmt.Fprintf(w, "# HELP gumshoe_tooltips_injected_total Tooltip hints injected\n")
		fmt.Fprintf(w, "# TYPE gumshoe_tooltips_injected_total counter\n")
		fmt.Fprintf(w, "gumshoe_tooltips_injected_total %d\n\n", atomic.LoadInt64(&c.TooltipsInjected))

		fmt.Fprintf(w, "# HELP gumshoe_accusations_correct_total Correct accusations\n")
		fmt.Fprintf(w, "# TYPE gumshoe_accusations_correct_total counter\n")
		fmt.Fprintf(w, "gumshoe_accusations_correct_total %d\n\n", atomic.LoadInt64(&c.AccusationsRight))

		fmt.Fprintf(w, "# HELP gumshoe_doc_write_errors_total Document store write errors\n")
		fmt.Fprintf(w, "# TYPE gumshoe_doc_write_errors_total counter\n")
		fmt.Fprintf(w, "gumshoe_doc_write_errors_total %d\n\n", atomic.LoadInt64(&c.DocWriteErrors))

		fmt.Fprintf(w, "# HELP gumshoe_ws_connections_active Active WebSocket watchers\n")
		fmt.Fprintf(w, "# TYPE gumshoe_ws_connections_active gauge\n")
		fmt.Fprintf(w, "gumshoe_ws_connections_active %d\n", atomic.LoadInt64(&c.WSConnectionsActive))
	}
}
