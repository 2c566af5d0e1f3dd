// Package domain contains the core entities of an airship station.
//
// It has no dependencies on hardware, radio or logging. The node control
// loop owns one Configuration and one ScheduleState and passes them by
// pointer into the components that update them.
//
// # Entities
//
//   - [Configuration]: operator-tunable behavior, persisted field by field
//   - [ScheduleState]: transient slot bookkeeping for the scheduler
//   - [DeviceIdentity]: radio credentials used to detect a re-provisioned node
package domain
