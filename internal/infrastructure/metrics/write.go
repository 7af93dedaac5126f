package metrics

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// RefreshObservation is one snapshot of an integration's refresh state.
//
// Observations are produced by whoever owns the integration registry
// and handed to the metrics layer, keeping this package free of
// domain imports.
type RefreshObservation struct {
	// Integration is the instance name (e.g. "sysmon").
	Integration string

	// Kind is the integration type (e.g. "sysmon", "mqtt_sensor").
	Kind string

	// Success reports whether the last refresh cycle succeeded.
	Success bool

	// CycleDuration is how long the last fetch took. Zero if no cycle
	// has completed yet.
	CycleDuration time.Duration

	// Error is the last refresh error message, empty on success.
	Error string
}

// WriteRefresh records one refresh observation.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Example:
//
//	client.WriteRefresh(metrics.RefreshObservation{
//	    Integration: "sysmon",
//	    Kind:        "sysmon",
//	    Success:     true,
//	    CycleDuration: 12 * time.Millisecond,
//	})
func (c *Client) WriteRefresh(obs RefreshObservation) {
	if !c.IsConnected() {
		return
	}

	success := 0
	if obs.Success {
		success = 1
	}

	fields := map[string]interface{}{
		"success":  success,
		"cycle_ms": float64(obs.CycleDuration.Microseconds()) / 1000.0,
	}
	if obs.Error != "" {
		fields["error"] = obs.Error
	}

	point := write.NewPoint(
		"integration_refresh",
		map[string]string{
			"integration": obs.Integration,
			"kind":        obs.Kind,
		},
		fields,
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteEntityMetric writes a single numeric entity measurement.
//
// This is the primary method for recording sensor telemetry data.
//
// Parameters:
//   - entityID: Unique identifier for the entity (e.g., "sensor-host")
//   - measurement: The metric name (e.g., "temperature", "heap_bytes")
//   - value: The numeric value to record
//
// Example:
//
//	client.WriteEntityMetric("sensor-lounge", "temperature", 21.5)
func (c *Client) WriteEntityMetric(entityID string, measurement string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"entity_metrics",
		map[string]string{
			"entity_id":   entityID,
			"measurement": measurement,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "core-01"},
//	    map[string]interface{}{"goroutines": 42, "heap_mb": 12.5})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
