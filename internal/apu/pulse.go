package apu

// dutyTable holds the four 8-step duty waveforms addressed by a
// PulseChannel's duty index (§3.2), one entry per sequencer position.
var dutyTable = [4][8]uint8{
	{0, 1, 0, 0, 0, 0, 0, 0}, // 12.5%
	{0, 1, 1, 0, 0, 0, 0, 0}, // 25%
	{0, 1, 1, 1, 1, 0, 0, 0}, // 50%
	{1, 0, 0, 1, 1, 1, 1, 1}, // 75% (25% inverted)
}

// PulseChannel is a square-wave generator with duty selector, envelope,
// length counter and sweep unit (§3.2, §4.2).
type PulseChannel struct {
	channelIndex uint8

	DutyIndex uint8
	dutyPos   uint8

	timer   Timer
	Enabled bool

	Length   LengthCounter
	Envelope Envelope
	Sweep    Sweep
}

func newPulseChannel(channelIndex uint8) *PulseChannel {
	p := &PulseChannel{channelIndex: channelIndex}
	p.Sweep.channelIndex = channelIndex
	return p
}

func (p *PulseChannel) reset() {
	idx := p.channelIndex
	*p = PulseChannel{channelIndex: idx}
	p.Sweep.channelIndex = idx
}

// WriteControl applies a write to $4000/$4004.
func (p *PulseChannel) WriteControl(value uint8) {
	p.DutyIndex = value >> 6
	p.Length.Halt = value&0x20 != 0
	p.Envelope.Loop = p.Length.Halt
	p.Envelope.ConstantFlag = value&0x10 != 0
	p.Envelope.DividerPeriod = value & 0x0F
}

// WriteSweep applies a write to $4001/$4005.
func (p *PulseChannel) WriteSweep(value uint8) {
	p.Sweep.WriteRegister(value)
}

// WriteTimerLow applies a write to $4002/$4006.
func (p *PulseChannel) WriteTimerLow(value uint8) {
	p.timer.Period = (p.timer.Period & 0xFF00) | uint16(value)
}

// WriteTimerHigh applies a write to $4003/$4007.
func (p *PulseChannel) WriteTimerHigh(value uint8, collidesWithHalf bool) {
	p.timer.Period = (p.timer.Period & 0x00FF) | (uint16(value&0x07) << 8)
	p.Length.Load(value>>3, collidesWithHalf)
	p.dutyPos = 0
	p.Envelope.Start = true
}

// run advances the channel's timer to targetCycle, emitting one sample
// per timer underflow via sink.
func (p *PulseChannel) run(target uint64, ch Channel, sink Sink) {
	for p.timer.Run(target) {
		p.dutyPos = (p.dutyPos + 1) & 0x07
		sink.AddSample(ch, p.timer.PrevCycle, p.output())
	}
}

func (p *PulseChannel) output() uint8 {
	if p.Length.Value == 0 || p.Sweep.Muted(p.timer.Period) {
		return 0
	}
	if dutyTable[p.DutyIndex][p.dutyPos] == 0 {
		return 0
	}
	return p.Envelope.Volume()
}

func (p *PulseChannel) clockHalfFrame() {
	p.Length.Clock()
	p.Sweep.Clock(&p.timer.Period)
}

func (p *PulseChannel) clockQuarterFrame() {
	p.Envelope.Clock()
}

func (p *PulseChannel) setEnabled(enabled bool) {
	p.Enabled = enabled
	p.Length.SetEnable(enabled)
}

func (p *PulseChannel) statusBit() bool {
	return p.Length.Active()
}
