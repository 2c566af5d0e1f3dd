package domain

// ScheduleState is the scheduler's bookkeeping for one process lifetime.
type ScheduleState struct {
	// NextSlotEpoch is the boundary the node is committed to transmit at.
	NextSlotEpoch uint32

	// LastSentSlot is the index of the last committed slot.
	LastSentSlot uint32

	// LastSyncEpoch is the clock reading right after the last successful
	// time synchronization. Zero means never synchronized.
	LastSyncEpoch uint32
}
