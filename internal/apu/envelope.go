package apu

// Envelope produces either a constant volume or a decaying volume ramp,
// clocked on quarter-frame ticks (§3.3). Shared by both pulse channels
// and the noise channel.
type Envelope struct {
	Start         bool
	Loop          bool
	ConstantFlag  bool
	DividerPeriod uint8 // 4-bit: the constant-volume / envelope-period value written by the channel
	Decay         uint8 // 4-bit decay-level counter
	divider       uint8
}

// Clock advances the envelope by one quarter-frame tick.
func (e *Envelope) Clock() {
	if e.Start {
		e.Start = false
		e.Decay = 15
		e.divider = e.DividerPeriod
		return
	}

	if e.divider == 0 {
		e.divider = e.DividerPeriod
		if e.Decay > 0 {
			e.Decay--
		} else if e.Loop {
			e.Decay = 15
		}
		return
	}

	e.divider--
}

// Volume returns the channel's current volume: the constant value when
// ConstantFlag is set, otherwise the decaying level.
func (e *Envelope) Volume() uint8 {
	if e.ConstantFlag {
		return e.DividerPeriod
	}
	return e.Decay
}
