// Package scheduler decides when a node wakes to transmit and blocks until
// that instant.
//
// In synchronized mode transmissions are aligned to epoch boundaries that are
// multiples of the send interval, and each boundary is served at most once.
// In override mode the node ignores the clock and waits one full interval
// between transmissions.
//
// Long waits become a sequence of discrete low-power sleep steps when deep
// sleep is allowed, or one plain wait otherwise.
package scheduler
