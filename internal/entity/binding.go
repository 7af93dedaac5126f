package entity

import (
	"context"

	"github.com/hearthhome/hearth-core/internal/coordinator"
)

// Projection maps one coordinator payload onto entity state snapshots,
// keyed by entity ID. Entities absent from the result keep their previous
// state.
type Projection[T any] func(data T) map[string]State

// Bind subscribes a set of entities to a coordinator.
//
// After every refresh cycle the binding flips the availability of all
// entities owned by integrationID to match the coordinator's
// LastUpdateSuccess, and — on success — re-projects the coordinator's data
// into entity state. The source recorded in history is "poll" for fetched
// cycles and "push" for push-only coordinators.
//
// Returns the listener's remove handle; call it (or let coordinator
// Shutdown detach everything) when the integration is torn down.
func Bind[T any](coord *coordinator.Coordinator[T], reg *Registry, integrationID string, project Projection[T]) func() {
	source := StateSourcePoll
	if coord.UpdateInterval() <= 0 {
		source = StateSourcePush
	}

	return coord.AddListener(func() {
		ok := coord.LastUpdateSuccess()
		if ok {
			states := project(coord.Data())
			for id, state := range states {
				// Registry logs lookup failures; a projection may emit
				// entities that were removed mid-cycle.
				_ = reg.SetState(context.Background(), id, state, source) //nolint:errcheck
			}
		}
		reg.SetAvailability(integrationID, ok)
	})
}
