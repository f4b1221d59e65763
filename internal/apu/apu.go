// Package apu implements a cycle-accurate model of the NES Audio
// Processing Unit: the five sound channels, the frame sequencer that
// drives them, and the bus glue (register decode, DMA-stall and IRQ
// contracts) that lets the APU interact with a host CPU.
package apu

// Channel identifies which of the five sound generators a sink sample
// came from.
type Channel uint8

const (
	ChannelPulse1 Channel = iota
	ChannelPulse2
	ChannelTriangle
	ChannelNoise
	ChannelDMC
)

// IRQSource identifies which of the APU's two IRQ lines an aggregator
// is asserting or clearing (§6.2).
type IRQSource uint8

const (
	IRQFrameCounter IRQSource = iota
	IRQDMC
)

// Sink receives one (channel, cycle, level) event per timer underflow,
// append-only and flushed by the caller at frame boundaries (§5). The
// APU never reads back what it writes.
type Sink interface {
	AddSample(ch Channel, cycle uint64, level uint8)
}

// Collaborator is the narrow set of capabilities the APU needs from
// the CPU it is embedded in (§6.2, §9): a DMA-stall hook, a
// cartridge-memory read for DMC fetches, and the two IRQ lines. The
// APU never retains a pointer to the CPU itself.
type Collaborator interface {
	StallForDMC(cycles uint8)
	DMCRead(addr uint16) uint8
	SetIRQ(source IRQSource)
	ClearIRQ(source IRQSource)
}

// Apu aggregates the five channels and the frame sequencer, and is the
// sole entry point the CPU collaborator drives (§2, §4.7).
type Apu struct {
	Pulse1   *PulseChannel
	Pulse2   *PulseChannel
	Triangle *TriangleChannel
	Noise    *NoiseChannel
	DMC      *DMC
	Frame    *FrameCounter

	region     Region
	tables     *regionTables
	masterEven bool

	sink   Sink
	collab Collaborator

	cycle uint64

	lastHalfCycle uint64
	haveLastHalf  bool

	config Config
}

// New constructs an Apu wired to the given sink and collaborator. Both
// must be non-nil for the lifetime of the Apu.
func New(sink Sink, collab Collaborator) *Apu {
	a := &Apu{sink: sink, collab: collab, config: DefaultConfig()}
	a.tables = &regionTableSet[RegionNTSC]
	a.region = RegionNTSC

	a.Pulse1 = newPulseChannel(0)
	a.Pulse2 = newPulseChannel(1)
	a.Triangle = &TriangleChannel{}
	a.Noise = newNoiseChannel(a.tables)
	a.DMC = newDMC(a.tables)
	a.Frame = &FrameCounter{region: a.tables}

	a.applyConfig()
	a.hardReset()
	return a
}

// SetConfig applies the two documented accuracy toggles (§9). Safe to
// call at any time; it does not otherwise alter channel state.
func (a *Apu) SetConfig(cfg Config) {
	a.config = cfg
	a.applyConfig()
}

func (a *Apu) applyConfig() {
	a.Triangle.SilenceHighFreq = a.config.SilenceTriangleHighFreq
	a.Noise.ForceMode0 = a.config.DisableNoiseModeFlag
}

// SetRegion selects the regional timing tables (§6.1). Per §7, this is
// only valid at a reset boundary; callers must follow it with Reset.
// A Region that does not resolve to one of the known regions (the
// contract-violation case spec.md §7 calls "Region = Auto") is a
// no-op: the previously selected region is retained.
func (a *Apu) SetRegion(region Region) {
	if !region.valid() {
		return
	}
	a.region = region
	a.tables = &regionTableSet[region]
	a.Noise.setRegion(a.tables)
	a.DMC.setRegion(a.tables)
	a.Frame.setRegion(a.tables)
}

// Region returns the currently selected region.
func (a *Apu) Region() Region {
	return a.region
}

// Reset performs a power-on (hard) or soft reset (§3.5).
func (a *Apu) Reset(soft bool) {
	if soft {
		a.softReset()
		return
	}
	a.hardReset()
}

func (a *Apu) hardReset() {
	a.Pulse1.reset()
	a.Pulse2.reset()
	a.Triangle.reset()
	a.Noise.reset()
	a.DMC.reset()
	a.Frame.reset()
	a.cycle = 0
	a.masterEven = true
	a.applyConfig()
}

func (a *Apu) softReset() {
	mode := a.Frame.mode
	a.writeChannelEnable(0x00)
	a.writeFrameCounter(uint8(mode) << 7)
}

// Run advances all APU state to targetCycle (§4.7, §6.1). It must be
// called before any register read/write is observed, so the CPU
// collaborator always sees the APU caught up to the current cycle.
func (a *Apu) Run(targetCycle uint64) {
	for a.cycle < targetCycle {
		// Advance one CPU cycle at a time, so channel timers and the
		// DMC DMA service happen in lockstep with frame-sequencer
		// dispatch (§5 ordering guarantee).
		next := a.cycle + 1
		if next > targetCycle {
			next = targetCycle
		}

		a.haveLastHalf = false
		a.Frame.run(next, a)

		if a.Pulse1.Enabled {
			a.Pulse1.run(next, ChannelPulse1, a.sink)
		}
		if a.Pulse2.Enabled {
			a.Pulse2.run(next, ChannelPulse2, a.sink)
		}
		if a.Triangle.Enabled {
			a.Triangle.run(next, ChannelTriangle, a.sink)
		}
		if a.Noise.Enabled {
			a.Noise.run(next, ChannelNoise, a.sink)
		}
		a.DMC.run(next, ChannelDMC, a.sink, a.collab)

		a.cycle = next
		a.masterEven = a.cycle%2 == 0
	}

	a.syncIRQ()
}

// dispatchQuarter and dispatchHalf implement frameDispatcher, fanning
// a sequencer tick out to every channel (§4.6, §4.7).
func (a *Apu) dispatchQuarter() {
	a.Pulse1.clockQuarterFrame()
	a.Pulse2.clockQuarterFrame()
	a.Triangle.clockQuarterFrame()
	a.Noise.clockQuarterFrame()
}

func (a *Apu) dispatchHalf() {
	a.lastHalfCycle = a.cycle + 1
	a.haveLastHalf = true
	a.Pulse1.clockHalfFrame()
	a.Pulse2.clockHalfFrame()
	a.Triangle.clockHalfFrame()
	a.Noise.clockHalfFrame()
}

func (a *Apu) syncIRQ() {
	if a.Frame.IRQPending() {
		a.collab.SetIRQ(IRQFrameCounter)
	} else {
		a.collab.ClearIRQ(IRQFrameCounter)
	}
	if a.DMC.IRQFlag {
		a.collab.SetIRQ(IRQDMC)
	} else {
		a.collab.ClearIRQ(IRQDMC)
	}
}

// EndFrame rebases per-component cycle bookkeeping at a frame edge
// (§4.7: "does not affect semantics", pure bookkeeping).
func (a *Apu) EndFrame() {
	// Shift the frame sequencer's absolute markers back by the same
	// amount as the cycle count, so the distance to the next step
	// boundary is unchanged. base may wrap below zero; the unsigned
	// sum base+offset still lands on the same boundary.
	shift := a.cycle
	a.cycle = 0
	a.Frame.prevCycle = 0
	a.Frame.base -= shift
	if a.Frame.irqClearSet {
		a.Frame.irqClearAt -= shift
	}
	a.lastHalfCycle -= shift
	a.Pulse1.timer.Reset()
	a.Pulse2.timer.Reset()
	a.Triangle.timer.Reset()
	a.Noise.timer.Reset()
	a.DMC.timer.Reset()
}

// NeedsToRun hints that the CPU should tick the APU again soon: an
// imminent frame event, a pending $4017 write, or a required DMC DMA
// fetch (§6.1). cyclesAhead is accepted for interface symmetry with
// the CPU's lookahead scheduling but is not otherwise consulted: the
// frame counter's own threshold already covers the common lookahead
// window.
func (a *Apu) NeedsToRun(cyclesAhead uint32) bool {
	_ = cyclesAhead
	return a.Frame.needsToRun() || a.DMC.NeedToRun()
}

// IrqPending reports whether either IRQ source is currently asserted.
func (a *Apu) IrqPending() bool {
	return a.Frame.IRQPending() || a.DMC.IRQFlag
}

// Write applies a register write in [$4000, $4017] (§4.7, §6.4).
// Callers must have already caught the APU up via Run(currentCycle).
func (a *Apu) Write(addr uint16, value uint8) {
	half := a.collidesWithHalfFrame()
	switch addr {
	case 0x4000:
		a.Pulse1.WriteControl(value)
	case 0x4001:
		a.Pulse1.WriteSweep(value)
	case 0x4002:
		a.Pulse1.WriteTimerLow(value)
	case 0x4003:
		a.Pulse1.WriteTimerHigh(value, half)

	case 0x4004:
		a.Pulse2.WriteControl(value)
	case 0x4005:
		a.Pulse2.WriteSweep(value)
	case 0x4006:
		a.Pulse2.WriteTimerLow(value)
	case 0x4007:
		a.Pulse2.WriteTimerHigh(value, half)

	case 0x4008:
		a.Triangle.WriteControl(value)
	case 0x400A:
		a.Triangle.WriteTimerLow(value)
	case 0x400B:
		a.Triangle.WriteTimerHigh(value, half)

	case 0x400C:
		a.Noise.WriteControl(value)
	case 0x400E:
		a.Noise.WritePeriod(value)
	case 0x400F:
		a.Noise.WriteLength(value, half)

	case 0x4010:
		a.DMC.WriteControl(value)
	case 0x4011:
		a.DMC.WriteDirectLoad(value)
	case 0x4012:
		a.DMC.WriteSampleAddress(value)
	case 0x4013:
		a.DMC.WriteSampleLength(value)

	case 0x4015:
		a.writeChannelEnable(value)
	case 0x4017:
		a.writeFrameCounter(value)
	}
}

// collidesWithHalfFrame reports whether the frame sequencer dispatched
// a half-frame tick on the current cycle, which defers a same-cycle
// length-counter load by one step (§3.4, §4.7).
func (a *Apu) collidesWithHalfFrame() bool {
	return a.haveLastHalf && a.lastHalfCycle == a.cycle
}

func (a *Apu) writeChannelEnable(value uint8) {
	a.Pulse1.setEnabled(value&0x01 != 0)
	a.Pulse2.setEnabled(value&0x02 != 0)
	a.Triangle.setEnabled(value&0x04 != 0)
	a.Noise.setEnabled(value&0x08 != 0)
	a.DMC.setEnabled(value&0x10 != 0)
	a.DMC.IRQFlag = false
}

func (a *Apu) writeFrameCounter(value uint8) {
	a.Frame.write(value, a.masterEven)
}

// ReadStatus reads $4015 (§4.7, §6.4). Clears the frame-counter IRQ
// flag per the §4.6 deadline; does not clear the DMC IRQ flag.
func (a *Apu) ReadStatus() uint8 {
	var status uint8
	if a.Pulse1.statusBit() {
		status |= 0x01
	}
	if a.Pulse2.statusBit() {
		status |= 0x02
	}
	if a.Triangle.statusBit() {
		status |= 0x04
	}
	if a.Noise.statusBit() {
		status |= 0x08
	}
	if a.DMC.statusBit() {
		status |= 0x10
	}
	if a.Frame.IRQPending() {
		status |= 0x40
	}
	if a.DMC.IRQFlag {
		status |= 0x80
	}

	a.Frame.acknowledgeRead(a.cycle)
	return status
}

// Diagnostics is a read-only snapshot of per-channel state, useful for
// a host's debug overlay or the reference CLI (not part of the
// hardware-facing contract).
type Diagnostics struct {
	Pulse1Active   bool
	Pulse2Active   bool
	TriangleActive bool
	NoiseActive    bool
	DMCActive      bool
	FrameIRQ       bool
	DMCIRQ         bool
	Cycle          uint64
}

// Snapshot returns a Diagnostics describing the current state.
func (a *Apu) Snapshot() Diagnostics {
	return Diagnostics{
		Pulse1Active:   a.Pulse1.statusBit(),
		Pulse2Active:   a.Pulse2.statusBit(),
		TriangleActive: a.Triangle.statusBit(),
		NoiseActive:    a.Noise.statusBit(),
		DMCActive:      a.DMC.statusBit(),
		FrameIRQ:       a.Frame.IRQPending(),
		DMCIRQ:         a.DMC.IRQFlag,
		Cycle:          a.cycle,
	}
}
