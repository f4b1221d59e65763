package apu

// LengthCounter silences a channel after a programmed number of
// half-frame ticks (§3.3). It only decrements when Halt is clear and
// the count is non-zero (§3.4), and defers a same-cycle reload that
// collides with a half-frame tick by one step (§4.7).
type LengthCounter struct {
	Value   uint8
	Halt    bool
	Enable  bool
	pending uint8
	hasPend bool
}

// Clock runs on a half-frame tick.
func (l *LengthCounter) Clock() {
	if l.hasPend {
		l.Value = l.pending
		l.hasPend = false
		return
	}
	if !l.Halt && l.Value > 0 {
		l.Value--
	}
}

// Load sets the counter from the length table, deferring the write if
// a half-frame tick is pending on the same CPU cycle (collidesWithHalf
// is supplied by the aggregator, which alone knows whether a
// half-frame dispatch is scheduled for this cycle).
func (l *LengthCounter) Load(index uint8, collidesWithHalf bool) {
	if !l.Enable {
		return
	}
	v := lengthTable[index&0x1F]
	if collidesWithHalf {
		l.pending = v
		l.hasPend = true
		return
	}
	l.Value = v
}

// SetEnable applies a write to the channel's $4015 enable bit. Clearing
// it forces the length counter to zero immediately (§3.4).
func (l *LengthCounter) SetEnable(enabled bool) {
	l.Enable = enabled
	if !enabled {
		l.Value = 0
		l.hasPend = false
	}
}

// Active reports whether the channel should be considered "playing"
// for $4015 status purposes.
func (l *LengthCounter) Active() bool {
	return l.Value > 0
}
