package apu

// Timer is the shared fractional-rate clock primitive embedded by all
// four tone-producing channels (pulse ×2, triangle, noise — the DMC
// uses the same shape but drives its own DMA/shift logic directly; see
// dmc.go). Centralising the underflow arithmetic here guarantees every
// channel sees identical overflow semantics (§4.1).
type Timer struct {
	Period   uint16
	Counter  uint16
	PrevCycle uint64
}

// Run advances the timer to targetCycle and reports whether the
// counter underflowed. The caller is expected to call Run in a loop:
// each true return corresponds to exactly one timer clock, after which
// the channel advances its own sequencer and may emit a sample before
// calling Run again for the same targetCycle (which will then return
// false once caught up).
func (t *Timer) Run(targetCycle uint64) bool {
	delta := targetCycle - t.PrevCycle
	if delta <= uint64(t.Counter) {
		t.Counter -= uint16(delta)
		t.PrevCycle = targetCycle
		return false
	}

	delta -= uint64(t.Counter) + 1
	t.Counter = t.Period
	t.PrevCycle = targetCycle - delta
	return true
}

// Reset rebases PrevCycle to zero, used by the aggregator's
// end-of-frame bookkeeping (§4.7).
func (t *Timer) Reset() {
	t.PrevCycle = 0
}
