// Package coordinator provides the shared update coordinator for Hearth Core.
//
// A Coordinator is the single point of truth for "the current state of a
// remote resource". Integrations construct one coordinator per configured
// instance, entities subscribe as listeners, and the coordinator performs
// refreshes — on a polling interval, on explicit request, or via push
// (SetUpdatedData) — fanning out exactly one notification per refresh cycle.
//
// # Guarantees
//
//   - At most one refresh is in flight per coordinator. Concurrent
//     RequestRefresh calls join the in-flight cycle and observe its outcome.
//   - Data is only replaced on a successful refresh. A failed refresh keeps
//     the last good data, flips LastUpdateSuccess to false and records the
//     error for callers to inspect.
//   - Listeners are notified exactly once per cycle, in registration order,
//     after the state for that cycle has been applied.
//   - Polling cadence is measured from the completion of each scheduled
//     cycle, so a slow fetch delays the next poll rather than stacking up.
//     Manual refreshes do not reset the schedule.
//
// # Usage
//
//	coord := coordinator.New("weather", fetchForecast,
//	    coordinator.WithInterval(5*time.Minute),
//	    coordinator.WithLogger(log),
//	)
//	remove := coord.AddListener(func() {
//	    render(coord.Data(), coord.LastUpdateSuccess())
//	})
//	defer remove()
//
//	if err := coord.FirstRefresh(ctx); err != nil {
//	    return err // abort integration setup
//	}
//	defer coord.Shutdown()
//
// # Thread Safety
//
// All methods are safe for concurrent use. Data returned by Data() is shared
// with every listener; callers must treat it as read-only. The coordinator
// only ever replaces it wholesale, never edits it in place.
package coordinator
