// Package entity provides the entity layer for Hearth Core.
//
// Entities are the consumer-facing projection of integration data: each
// entity carries an explicit capability set, a state snapshot and an
// availability flag driven by its coordinator's health. Integrations are
// classified by capability, never by concrete type — discovery code decides
// what an entity can do (temperature, on_off, position, ...) and everything
// downstream dispatches on that.
//
// # Key Types
//
//   - Entity: ID, capability set, current state, availability
//   - Registry: thread-safe in-memory entity catalogue with change fan-out
//   - Commander: the command-then-publish path for mutating commands
//   - StateHistoryRepository: SQLite-backed state change audit trail
//
// # Coordinator binding
//
// Bind subscribes a set of entities to a coordinator: after every refresh
// cycle it re-projects the coordinator's data into entity state and flips
// availability to match LastUpdateSuccess. Unavailable entities keep their
// last good state so diagnostics can still show it.
//
//	remove := entity.Bind(coord, registry, instID, func(s sysmon.Stats) map[string]entity.State {
//	    return map[string]entity.State{heapID: {"bytes": s.HeapAlloc}}
//	})
//
// # Thread Safety
//
// The Registry and Commander are safe for concurrent use.
package entity
