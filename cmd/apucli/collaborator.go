package main

import "github.com/TheAnsarya/nexen-apu/internal/apu"

// prgSize is the flat PRG window the synthetic collaborator exposes to
// DMC DMA fetches; real cartridge mapping is out of scope (§1
// Non-goals), so addresses are simply masked into this buffer.
const prgSize = 0x8000

// syntheticCollaborator is a minimal apu.Collaborator standing in for
// a CPU/cartridge: it tracks the stall cycles requested by the DMC
// DMA protocol and aggregates the two IRQ lines into latches a caller
// can poll, the way console.CPU.stall/interrupt do in a real bus.
type syntheticCollaborator struct {
	prg [prgSize]byte

	stallCycles int

	frameIRQ bool
	dmcIRQ   bool
}

func newSyntheticCollaborator() *syntheticCollaborator {
	return &syntheticCollaborator{}
}

// loadPRG fills the PRG window with data, repeating it if shorter than
// prgSize (mirroring an 8/16KiB cartridge image across the window).
func (c *syntheticCollaborator) loadPRG(data []byte) {
	if len(data) == 0 {
		return
	}
	for i := range c.prg {
		c.prg[i] = data[i%len(data)]
	}
}

// StallForDMC implements apu.Collaborator: a real CPU would halt its
// instruction fetch loop for this many cycles before the next opcode.
func (c *syntheticCollaborator) StallForDMC(cycles uint8) {
	c.stallCycles += int(cycles)
}

// DMCRead implements apu.Collaborator, reading from the flat PRG
// window at addr masked into [$8000, $FFFF].
func (c *syntheticCollaborator) DMCRead(addr uint16) uint8 {
	return c.prg[int(addr)&(prgSize-1)]
}

// SetIRQ/ClearIRQ implement apu.Collaborator's IRQ-line aggregation.
func (c *syntheticCollaborator) SetIRQ(source apu.IRQSource) {
	switch source {
	case apu.IRQFrameCounter:
		c.frameIRQ = true
	case apu.IRQDMC:
		c.dmcIRQ = true
	}
}

func (c *syntheticCollaborator) ClearIRQ(source apu.IRQSource) {
	switch source {
	case apu.IRQFrameCounter:
		c.frameIRQ = false
	case apu.IRQDMC:
		c.dmcIRQ = false
	}
}

// irqLine reports whether either latched IRQ source is currently
// asserted, the way a real CPU would OR the two lines together.
func (c *syntheticCollaborator) irqLine() bool {
	return c.frameIRQ || c.dmcIRQ
}

// takeStall drains and returns the accumulated stall-cycle count.
func (c *syntheticCollaborator) takeStall() int {
	n := c.stallCycles
	c.stallCycles = 0
	return n
}

// countingSink is a apu.Sink that only tallies samples per channel,
// for the run/trace subcommands' summary output.
type countingSink struct {
	counts [5]uint64
	last   [5]uint8
}

func (s *countingSink) AddSample(ch apu.Channel, _ uint64, level uint8) {
	s.counts[ch]++
	s.last[ch] = level
}
