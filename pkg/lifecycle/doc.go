// Package lifecycle provides the station state machine and worker tracking.
//
// Create a manager, move it through the states as the node boots and
// stops, and wait for its workers on shutdown:
//
//	manager := lifecycle.NewManager(logger, emitter)
//
//	if !manager.CanStart() {
//	    return lifecycle.ErrAlreadyRunning
//	}
//	if err := manager.TransitionTo(lifecycle.StateBooting, "start requested"); err != nil {
//	    return err
//	}
//
//	// ... run the node in a worker ...
//
//	if err := manager.WaitWithTimeout(lifecycle.ShutdownTimeout); err != nil {
//	    return err
//	}
//
// # State Machine
//
// Valid state transitions:
//   - Stopped -> Booting
//   - Booting -> Running, Stopping, Crashed
//   - Running -> Stopping, Crashed
//   - Stopping -> Stopped, Crashed
//   - Crashed -> Booting
package lifecycle
