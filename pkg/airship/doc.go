// Package airship provides an embeddable sensor node station.
//
// A station joins the network, synchronizes its clock from network time and
// then measures and transmits telemetry once per configured slot, applying
// remote configuration commands received in the downlink windows. It can be
// run by the airship CLI or embedded as a library.
//
// # Basic Usage
//
//	cfg := airship.DefaultConfig()
//	cfg.DevEUI = "70b3d57ed0000001"
//	cfg.JoinEUI = "0000000000000000"
//	cfg.StateDir = "/var/lib/airship"
//
//	st, err := airship.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := st.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... run until shutdown signal ...
//
//	if err := st.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// # Hardware
//
// Without options a station runs fully simulated: a memory or file store, a
// software clock, a stub radio and simulated sensors. Real hardware is
// injected with [WithStore], [WithClock], [WithRadio] and [WithSensors].
//
// # Event Handling
//
// Implement [EventHandler] and pass it via [WithEventHandler] to observe
// lifecycle transitions and radio traffic. Embed [BaseEventHandler] to
// handle only some events.
//
// # Lifecycle States
//
// A station is in one of [StateStopped], [StateBooting], [StateRunning],
// [StateStopping] or [StateCrashed]. Booting covers the network join and
// the first time synchronization.
//
// # Plugins
//
// Plugins run beside the node and are given the radio's downlink queue:
//
//	import "github.com/bft-labs/airship/plugins/inbox"
//
//	st, err := airship.New(cfg, airship.WithPlugin(inbox.New(inbox.DefaultConfig())))
package airship
