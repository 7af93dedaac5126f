// Package metrics provides InfluxDB-backed metrics recording for Hearth Core.
//
// It wraps the official influxdb-client-go v2 library with Hearth-specific
// patterns for connection management, metric writing, and health monitoring.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Integration refresh cycle outcomes (success, duration, errors)
//   - Sensor telemetry and entity measurements
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "hearth",
//	    Bucket: "metrics",
//	}
//
//	client, err := metrics.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Record a refresh outcome
//	client.WriteRefresh(metrics.RefreshObservation{
//	    Integration: "sysmon",
//	    Success:     true,
//	})
//
// The Sampler periodically snapshots integration state and records it:
//
//	sampler := metrics.NewSampler(client, statusSource, 30*time.Second)
//	go sampler.Run(ctx)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// This reduces network overhead for high-frequency telemetry data.
package metrics
