// Package log provides a logging abstraction for airship components.
//
// Every component receives a Logger in its constructor. The zerolog adapter
// is what the airship command wires in; the no-op logger is the library
// default and what tests use.
//
//	logger := log.NewZerologAdapter(zerolog.InfoLevel)
//	logger.Info("uplink sent", log.Int("port", 1), log.Hex("payload", frame))
//
// Byte slices passed through Hex or EUI are rendered as hex strings, so
// payloads and device EUIs read the same as on the network server. Node
// clock readings go through Epoch.
//
// With scopes any Logger to a set of fields; a Station uses it to tag every
// line with its run ID and DevEUI.
package log
