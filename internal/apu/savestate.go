package apu

// saveStateVersion identifies the layout of SaveState. Bump it whenever
// a field is added, renamed, or reinterpreted (§6.3).
const saveStateVersion = 1

// SaveState is a flat, named snapshot of the channel registers,
// counters and frame-sequencer state, versioned so a caller can detect
// an incompatible blob before RestoreState touches any channel (§6.3,
// §7). It does not hold the envelope and sweep dividers, a length
// load deferred by a half-frame collision, a $4017 write still in its
// delay, the DMC disable-delay countdown, or the aggregator's
// write-parity and half-frame tracking; RestoreState leaves those as
// they are in the receiving Apu. The caller owns encoding; json tags
// are provided so encoding/json is a drop-in choice, matching the rest
// of this package's config surface.
type SaveState struct {
	Version int `json:"version"`

	Region Region `json:"region"`
	Cycle  uint64 `json:"cycle"`

	Pulse1 PulseState    `json:"pulse1"`
	Pulse2 PulseState    `json:"pulse2"`
	Tri    TriangleState `json:"triangle"`
	Noise  NoiseState    `json:"noise"`
	DMC    DMCState      `json:"dmc"`
	Frame  FrameState    `json:"frame"`
}

// PulseState is the saved state of one pulse channel.
type PulseState struct {
	DutyIndex uint8  `json:"duty_index"`
	DutyPos   uint8  `json:"duty_pos"`
	Enabled   bool   `json:"enabled"`
	Period    uint16 `json:"period"`
	Counter   uint16 `json:"counter"`

	LengthValue uint8 `json:"length_value"`
	LengthHalt  bool  `json:"length_halt"`

	EnvStart    bool  `json:"env_start"`
	EnvLoop     bool  `json:"env_loop"`
	EnvConstant bool  `json:"env_constant"`
	EnvPeriod   uint8 `json:"env_period"`
	EnvDecay    uint8 `json:"env_decay"`

	SweepEnabled bool  `json:"sweep_enabled"`
	SweepNegate  bool  `json:"sweep_negate"`
	SweepShift   uint8 `json:"sweep_shift"`
	SweepPeriod  uint8 `json:"sweep_period"`
	SweepReload  bool  `json:"sweep_reload"`
}

// TriangleState is the saved state of the triangle channel.
type TriangleState struct {
	Pos          uint8  `json:"pos"`
	Enabled      bool   `json:"enabled"`
	Period       uint16 `json:"period"`
	Counter      uint16 `json:"counter"`
	LinearVal    uint8  `json:"linear_value"`
	LinearReload uint8  `json:"linear_reload"`
	ReloadFlag   bool   `json:"reload_flag"`
	Control      bool   `json:"control"`

	LengthValue uint8 `json:"length_value"`
	LengthHalt  bool  `json:"length_halt"`
}

// NoiseState is the saved state of the noise channel.
type NoiseState struct {
	Shift     uint16 `json:"shift"`
	Mode      bool   `json:"mode"`
	RateIndex uint8  `json:"rate_index"`
	Enabled   bool   `json:"enabled"`
	Period    uint16 `json:"period"`
	Counter   uint16 `json:"counter"`

	LengthValue uint8 `json:"length_value"`
	LengthHalt  bool  `json:"length_halt"`

	EnvStart    bool  `json:"env_start"`
	EnvLoop     bool  `json:"env_loop"`
	EnvConstant bool  `json:"env_constant"`
	EnvPeriod   uint8 `json:"env_period"`
	EnvDecay    uint8 `json:"env_decay"`
}

// DMCState is the saved state of the delta-modulation channel.
type DMCState struct {
	SampleAddress  uint16 `json:"sample_address"`
	SampleLength   uint16 `json:"sample_length"`
	CurrentAddress uint16 `json:"current_address"`
	BytesRemaining uint16 `json:"bytes_remaining"`
	Buffer         uint8  `json:"buffer"`
	BufferEmpty    bool   `json:"buffer_empty"`
	ShiftRegister  uint8  `json:"shift_register"`
	BitsRemaining  uint8  `json:"bits_remaining"`
	OutputLevel    uint8  `json:"output_level"`
	RateIndex      uint8  `json:"rate_index"`
	IRQEnable      bool   `json:"irq_enable"`
	Loop           bool   `json:"loop"`
	Silence        bool   `json:"silence"`
	IRQFlag        bool   `json:"irq_flag"`
	Enabled        bool   `json:"enabled"`
	Period         uint16 `json:"period"`
	Counter        uint16 `json:"counter"`
}

// FrameState is the saved state of the frame sequencer.
type FrameState struct {
	Step        uint8  `json:"step"`
	Mode        uint8  `json:"mode"`
	PrevCycle   uint64 `json:"prev_cycle"`
	Base        uint64 `json:"base"`
	Inhibit     bool   `json:"inhibit"`
	IRQFlag     bool   `json:"irq_flag"`
	IRQClearAt  uint64 `json:"irq_clear_at"`
	IRQClearSet bool   `json:"irq_clear_set"`
	Block       int    `json:"block"`
}

// SaveState captures the entire APU into a versioned, flat snapshot.
func (a *Apu) SaveState() SaveState {
	return SaveState{
		Version: saveStateVersion,
		Region:  a.region,
		Cycle:   a.cycle,
		Pulse1:  a.Pulse1.saveState(),
		Pulse2:  a.Pulse2.saveState(),
		Tri:     a.Triangle.saveState(),
		Noise:   a.Noise.saveState(),
		DMC:     a.DMC.saveState(),
		Frame:   a.Frame.saveState(),
	}
}

// RestoreState replaces the APU's entire state with s. It rejects a
// version it does not recognise rather than guessing at a layout
// (§6.3, §7); the APU is left untouched on error.
func (a *Apu) RestoreState(s SaveState) error {
	if s.Version != saveStateVersion {
		return newSaveStateVersionError(s.Version, saveStateVersion)
	}

	a.SetRegion(s.Region)
	a.cycle = s.Cycle

	a.Pulse1.restoreState(s.Pulse1)
	a.Pulse2.restoreState(s.Pulse2)
	a.Triangle.restoreState(s.Tri)
	a.Noise.restoreState(s.Noise)
	a.DMC.restoreState(s.DMC)
	a.Frame.restoreState(s.Frame)

	// A length counter's enable always follows its channel's $4015
	// bit, and channel timers sit on the aggregator's cycle scale.
	a.Pulse1.Length.Enable = s.Pulse1.Enabled
	a.Pulse2.Length.Enable = s.Pulse2.Enabled
	a.Triangle.Length.Enable = s.Tri.Enabled
	a.Noise.Length.Enable = s.Noise.Enabled
	a.Pulse1.timer.PrevCycle = s.Cycle
	a.Pulse2.timer.PrevCycle = s.Cycle
	a.Triangle.timer.PrevCycle = s.Cycle
	a.Noise.timer.PrevCycle = s.Cycle
	a.DMC.timer.PrevCycle = s.Cycle
	return nil
}

func (p *PulseChannel) saveState() PulseState {
	return PulseState{
		DutyIndex:    p.DutyIndex,
		DutyPos:      p.dutyPos,
		Enabled:      p.Enabled,
		Period:       p.timer.Period,
		Counter:      p.timer.Counter,
		LengthValue:  p.Length.Value,
		LengthHalt:   p.Length.Halt,
		EnvStart:     p.Envelope.Start,
		EnvLoop:      p.Envelope.Loop,
		EnvConstant:  p.Envelope.ConstantFlag,
		EnvPeriod:    p.Envelope.DividerPeriod,
		EnvDecay:     p.Envelope.Decay,
		SweepEnabled: p.Sweep.Enabled,
		SweepNegate:  p.Sweep.Negate,
		SweepShift:   p.Sweep.Shift,
		SweepPeriod:  p.Sweep.Period,
		SweepReload:  p.Sweep.reload,
	}
}

func (p *PulseChannel) restoreState(s PulseState) {
	p.DutyIndex = s.DutyIndex
	p.dutyPos = s.DutyPos
	p.Enabled = s.Enabled
	p.timer.Period = s.Period
	p.timer.Counter = s.Counter
	p.Length.Value = s.LengthValue
	p.Length.Halt = s.LengthHalt
	p.Envelope.Start = s.EnvStart
	p.Envelope.Loop = s.EnvLoop
	p.Envelope.ConstantFlag = s.EnvConstant
	p.Envelope.DividerPeriod = s.EnvPeriod
	p.Envelope.Decay = s.EnvDecay
	p.Sweep.Enabled = s.SweepEnabled
	p.Sweep.Negate = s.SweepNegate
	p.Sweep.Shift = s.SweepShift
	p.Sweep.Period = s.SweepPeriod
	p.Sweep.reload = s.SweepReload
}

func (t *TriangleChannel) saveState() TriangleState {
	return TriangleState{
		Pos:          t.pos,
		Enabled:      t.Enabled,
		Period:       t.timer.Period,
		Counter:      t.timer.Counter,
		LinearVal:    t.Linear,
		LinearReload: t.LinearReload,
		ReloadFlag:   t.reloadFlag,
		Control:      t.Control,
		LengthValue:  t.Length.Value,
		LengthHalt:   t.Length.Halt,
	}
}

func (t *TriangleChannel) restoreState(s TriangleState) {
	t.pos = s.Pos
	t.Enabled = s.Enabled
	t.timer.Period = s.Period
	t.timer.Counter = s.Counter
	t.Linear = s.LinearVal
	t.LinearReload = s.LinearReload
	t.reloadFlag = s.ReloadFlag
	t.Control = s.Control
	t.Length.Value = s.LengthValue
	t.Length.Halt = s.LengthHalt
}

func (n *NoiseChannel) saveState() NoiseState {
	return NoiseState{
		Shift:       n.shift,
		Mode:        n.Mode,
		RateIndex:   n.rateIndex,
		Enabled:     n.Enabled,
		Period:      n.timer.Period,
		Counter:     n.timer.Counter,
		LengthValue: n.Length.Value,
		LengthHalt:  n.Length.Halt,
		EnvStart:    n.Envelope.Start,
		EnvLoop:     n.Envelope.Loop,
		EnvConstant: n.Envelope.ConstantFlag,
		EnvPeriod:   n.Envelope.DividerPeriod,
		EnvDecay:    n.Envelope.Decay,
	}
}

func (n *NoiseChannel) restoreState(s NoiseState) {
	n.shift = s.Shift
	n.Mode = s.Mode
	n.rateIndex = s.RateIndex
	n.Enabled = s.Enabled
	n.timer.Period = s.Period
	n.timer.Counter = s.Counter
	n.Length.Value = s.LengthValue
	n.Length.Halt = s.LengthHalt
	n.Envelope.Start = s.EnvStart
	n.Envelope.Loop = s.EnvLoop
	n.Envelope.ConstantFlag = s.EnvConstant
	n.Envelope.DividerPeriod = s.EnvPeriod
	n.Envelope.Decay = s.EnvDecay
}

func (d *DMC) saveState() DMCState {
	return DMCState{
		SampleAddress:  d.sampleAddress,
		SampleLength:   d.sampleLength,
		CurrentAddress: d.currentAddress,
		BytesRemaining: d.bytesRemaining,
		Buffer:         d.buffer,
		BufferEmpty:    d.bufferEmpty,
		ShiftRegister:  d.shiftRegister,
		BitsRemaining:  d.bitsRemaining,
		OutputLevel:    d.outputLevel,
		RateIndex:      d.rateIndex,
		IRQEnable:      d.irqEnable,
		Loop:           d.loop,
		Silence:        d.silence,
		IRQFlag:        d.IRQFlag,
		Enabled:        d.Enabled,
		Period:         d.timer.Period,
		Counter:        d.timer.Counter,
	}
}

func (d *DMC) restoreState(s DMCState) {
	d.sampleAddress = s.SampleAddress
	d.sampleLength = s.SampleLength
	d.currentAddress = s.CurrentAddress
	d.bytesRemaining = s.BytesRemaining
	d.buffer = s.Buffer
	d.bufferEmpty = s.BufferEmpty
	d.shiftRegister = s.ShiftRegister
	d.bitsRemaining = s.BitsRemaining
	d.outputLevel = s.OutputLevel
	d.rateIndex = s.RateIndex
	d.irqEnable = s.IRQEnable
	d.loop = s.Loop
	d.silence = s.Silence
	d.IRQFlag = s.IRQFlag
	d.Enabled = s.Enabled
	d.timer.Period = s.Period
	d.timer.Counter = s.Counter
}

func (f *FrameCounter) saveState() FrameState {
	return FrameState{
		Step:        f.step,
		Mode:        f.mode,
		PrevCycle:   f.prevCycle,
		Base:        f.base,
		Inhibit:     f.inhibit,
		IRQFlag:     f.irqFlag,
		IRQClearAt:  f.irqClearAt,
		IRQClearSet: f.irqClearSet,
		Block:       f.block,
	}
}

func (f *FrameCounter) restoreState(s FrameState) {
	f.step = s.Step
	f.mode = s.Mode
	f.prevCycle = s.PrevCycle
	f.base = s.Base
	f.inhibit = s.Inhibit
	f.irqFlag = s.IRQFlag
	f.irqClearAt = s.IRQClearAt
	f.irqClearSet = s.IRQClearSet
	f.block = s.Block
}
