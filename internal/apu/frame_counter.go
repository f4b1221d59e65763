package apu

// frameBlockCycles is how long a dispatched tick blocks a following
// $4017 write from double-clocking the sequencer (§3.2, §4.6).
const frameBlockCycles = 2

// FrameCounter is the 4/5-step sequencer at $4017 dispatching
// quarter-frame and half-frame ticks and the frame IRQ (§3.2, §4.6).
type FrameCounter struct {
	step uint8
	mode uint8 // 0 = 4-step, 1 = 5-step

	// prevCycle is the absolute master cycle, on the same scale as
	// Apu.cycle: it is never reset except at a hard reset or
	// EndFrame's bookkeeping rebase. base is the absolute cycle at
	// which the current step sequence began, reset at each wrap or
	// mode switch; cyclesFor's cumulative table entries are offsets
	// from base, not from prevCycle (§3.1, §4.6).
	prevCycle uint64
	base      uint64

	inhibit    bool
	irqFlag    bool
	irqClearAt uint64
	irqClearSet bool

	pendingMode  uint8
	pendingDelay int
	hasPending   bool

	block int

	region *regionTables
}

func (f *FrameCounter) reset() {
	region := f.region
	*f = FrameCounter{region: region}
}

func (f *FrameCounter) setRegion(region *regionTables) {
	f.region = region
}

func (f *FrameCounter) cyclesFor(mode, step uint8) uint32 {
	if mode == 0 {
		return f.region.seqCycles4[step]
	}
	return f.region.seqCycles5[step]
}

// frameSteps is the number of entries in both the 4-step and 5-step
// cycle tables (§3.1 lists six entries for each, the extra entries
// giving the three consecutive-cycle IRQ assertion described in §8).
const frameSteps = 6

// dispatch is implemented by Apu and fans a quarter/half-frame tick
// out to every channel.
type frameDispatcher interface {
	dispatchQuarter()
	dispatchHalf()
}

// write applies a write to $4017. The inhibit bit applies at once (and
// clears the IRQ flag when set); the new mode takes effect after a 3-
// or 4-CPU-cycle delay depending on write parity (§3.2, §4.6);
// evenCycle is supplied by the aggregator.
func (f *FrameCounter) write(value uint8, evenCycle bool) {
	f.pendingMode = value >> 7
	f.inhibit = value&0x40 != 0
	if f.inhibit {
		f.irqFlag = false
		f.irqClearSet = false
	}

	if evenCycle {
		f.pendingDelay = 3
	} else {
		f.pendingDelay = 4
	}
	f.hasPending = true
}

// run advances the sequencer to targetCycle, dispatching ticks through
// d as step boundaries are crossed, and applies any pending $4017
// write once its delay has elapsed.
func (f *FrameCounter) run(targetCycle uint64, d frameDispatcher) {
	for f.prevCycle < targetCycle {
		if f.hasPending {
			f.pendingDelay--
			if f.pendingDelay <= 0 {
				f.mode = f.pendingMode
				f.step = 0
				f.base = f.prevCycle
				f.hasPending = false
				if f.mode == 1 && f.block == 0 {
					d.dispatchHalf()
					d.dispatchQuarter()
					f.block = frameBlockCycles
				}
				continue
			}
		}

		boundary := f.base + uint64(f.cyclesFor(f.mode, f.step))
		if f.prevCycle < boundary {
			// Not yet at this step's boundary: advance one cycle and
			// let the block counter and IRQ-clear deadline tick down.
			f.prevCycle++
			f.tickAuxiliary()
			continue
		}

		f.dispatchStep(d)
		f.tickAuxiliary()
	}
}

func (f *FrameCounter) dispatchStep(d frameDispatcher) {
	action := seqActions[f.step]

	if f.mode == 0 && f.step >= 3 {
		if !f.inhibit {
			f.irqFlag = true
		} else if f.step == frameSteps-1 {
			f.irqFlag = false
		}
	}

	if f.block == 0 {
		switch action {
		case stepQuarter:
			d.dispatchQuarter()
		case stepHalf:
			d.dispatchHalf()
			d.dispatchQuarter()
		}
		if action != stepNone {
			f.block = frameBlockCycles
		}
	}

	f.step++
	if f.step >= frameSteps {
		f.step = 0
		f.base = f.prevCycle
	}
}

func (f *FrameCounter) tickAuxiliary() {
	if f.block > 0 {
		f.block--
	}
	if f.irqClearSet && f.prevCycle >= f.irqClearAt {
		f.irqFlag = false
		f.irqClearSet = false
	}
}

// IRQPending reports the frame-counter IRQ flag.
func (f *FrameCounter) IRQPending() bool {
	return f.irqFlag
}

// acknowledgeRead implements the §4.6 read-then-clear-on-deadline
// semantics: the reader observes the pre-clear value, and the flag is
// cleared at the start of the next APU cycle.
func (f *FrameCounter) acknowledgeRead(masterClock uint64) {
	if !f.irqFlag {
		return
	}
	delay := uint64(2)
	if masterClock%2 != 0 {
		delay = 1
	}
	f.irqClearAt = f.prevCycle + delay
	f.irqClearSet = true
}

// needsToRun hints an imminent frame event or pending write.
func (f *FrameCounter) needsToRun() bool {
	if f.hasPending {
		return true
	}
	boundary := f.base + uint64(f.cyclesFor(f.mode, f.step))
	return boundary-f.prevCycle <= 8
}
