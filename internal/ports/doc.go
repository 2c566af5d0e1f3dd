// Package ports defines the interfaces that connect the node core to the
// hardware and network it runs against.
//
// # Port Interfaces
//
//   - [ByteStore]: byte-addressable persistent memory (EEPROM or an image file)
//   - [Clock]: epoch clock, volatile or battery-backed
//   - [Thermometer]: optional die temperature on a hardware clock
//   - [Sleeper]: one discrete low-power sleep step
//   - [Waiter]: plain blocking wait that keeps the radio live
//   - [Radio]: network join, uplink with downlink window, network time
//   - [Sensors]: weather and particulate sensors
//   - [HTTPClient]: HTTP request abstraction for the radio bridge
//
// The application layer (internal/app) and the components below it depend
// only on these interfaces. internal/adapters holds the implementations.
package ports
