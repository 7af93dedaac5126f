// Package api implements the HTTP REST API and WebSocket server for Hearth Core.
//
// This package provides:
//   - REST endpoints for integration status, manual refresh, entity reads,
//     history, and commands
//   - WebSocket hub for real-time entity state broadcasts
//   - API-key-to-JWT token exchange with ticket-based WebSocket auth
//   - Middleware stack (request ID, logging, recovery, CORS)
//
// # Architecture
//
// The API server sits between user interfaces (dashboards, mobile apps,
// admin tools) and the integration manager + entity registry. Commands flow
// from the API through the commander to MQTT, and confirmed state changes
// flow back through coordinators into the registry, which broadcasts them
// to WebSocket clients via the hub.
//
// # Security
//
// Callers exchange the configured API key for a short-lived JWT at
// POST /auth/token. WebSocket connections use single-use tickets to prevent
// token leakage in URLs.
//
// # Graceful Degradation
//
// The server operates without MQTT and without a history repository: reads
// and WebSocket connections work, while commands and history queries return
// 503 responses.
package api
