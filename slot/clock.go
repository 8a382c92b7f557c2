package slot

import "time"

// Clock converts between slots and wall-clock time given the process-wide
// timing configuration: slot (p,t) occurs at
// genesisTimestamp + p*t0 + t*(t0/threadCount).
//
// Grounded on the teacher's consensus.SlotClock (pkg/consensus/slots.go),
// adapted from a single-thread (period-only) clock to the two-dimensional
// (period, thread) coordinate this sequencer needs.
type Clock struct {
	genesisTimestamp time.Time
	t0               time.Duration
	threadCount      uint8
}

// NewClock constructs a Clock. Panics if threadCount is zero, mirroring
// the teacher's convention of treating nonsensical configuration as a
// startup-time programmer error rather than a runtime one.
func NewClock(genesisTimestamp time.Time, t0 time.Duration, threadCount uint8) *Clock {
	if threadCount == 0 {
		panic("slot: thread count must be > 0")
	}
	return &Clock{
		genesisTimestamp: genesisTimestamp,
		t0:               t0,
		threadCount:      threadCount,
	}
}

// GenesisTimestamp returns the configured genesis instant.
func (c *Clock) GenesisTimestamp() time.Time { return c.genesisTimestamp }

// T0 returns the configured period duration.
func (c *Clock) T0() time.Duration { return c.t0 }

// ThreadCount returns the configured thread count.
func (c *Clock) ThreadCount() uint8 { return c.threadCount }

// TimestampOf returns the timestamp at which the given slot occurs.
func (c *Clock) TimestampOf(s Slot) time.Time {
	perThread := c.t0 / time.Duration(c.threadCount)
	offset := time.Duration(s.Period)*c.t0 + time.Duration(s.Thread)*perThread
	return c.genesisTimestamp.Add(offset)
}

// SlotAt returns the latest slot whose timestamp is at or before now. If
// now precedes genesis, it returns (Slot{}, false) so the caller can apply
// whatever before-genesis fallback its invariant requires (see §4.3/§7).
func (c *Clock) SlotAt(now time.Time) (Slot, bool) {
	if now.Before(c.genesisTimestamp) {
		return Slot{}, false
	}
	elapsed := now.Sub(c.genesisTimestamp)
	period := uint64(elapsed / c.t0)
	remainder := elapsed % c.t0
	perThread := c.t0 / time.Duration(c.threadCount)
	thread := uint8(remainder / perThread)
	if thread >= c.threadCount {
		thread = c.threadCount - 1
	}
	return Slot{Period: period, Thread: thread}, true
}
