// Package integration manages the lifecycle of configured integration
// instances for Hearth Core.
//
// An integration instance pairs one external data source (a polled API, an
// MQTT topic set, a local probe) with the coordinator that mediates its
// refreshes and the entities that render its data. The Manager is the
// explicit registry of live instances — state is always reached through it,
// never through package-level maps — and owns setup and teardown:
//
//	inst := integration.NewInstance("Weather Office", "met", coord)
//	if err := manager.Setup(ctx, inst); err != nil {
//	    return err // setup aborted, coordinator already shut down
//	}
//	defer manager.Teardown(inst.ID) //nolint:errcheck
//
// Setup performs the coordinator's first refresh. Transient failures
// (coordinator.ErrUpdateFailed) are retried with exponential backoff;
// credential failures (coordinator.ErrAuthFailed) and anything wrapped in
// ErrSetupFailed abort immediately.
//
// Thread Safety: all Manager methods are safe for concurrent use.
package integration
