package apu

import "testing"

type mockCollaborator struct {
	mem         [0x10000]uint8
	stalls      []uint8
	frameIRQSet bool
	dmcIRQSet   bool
}

func (m *mockCollaborator) StallForDMC(cycles uint8) {
	m.stalls = append(m.stalls, cycles)
}

func (m *mockCollaborator) DMCRead(addr uint16) uint8 {
	return m.mem[addr]
}

func (m *mockCollaborator) SetIRQ(source IRQSource) {
	switch source {
	case IRQFrameCounter:
		m.frameIRQSet = true
	case IRQDMC:
		m.dmcIRQSet = true
	}
}

func (m *mockCollaborator) ClearIRQ(source IRQSource) {
	switch source {
	case IRQFrameCounter:
		m.frameIRQSet = false
	case IRQDMC:
		m.dmcIRQSet = false
	}
}

func TestDMCWriteSampleAddressAndLength(t *testing.T) {
	d := newDMC(&regionTableSet[RegionNTSC])
	d.WriteSampleAddress(0x01)
	d.WriteSampleLength(0x01)

	if d.sampleAddress != 0xC000+(1<<6) {
		t.Errorf("sampleAddress = %#x, want %#x", d.sampleAddress, 0xC000+(1<<6))
	}
	if d.sampleLength != (1<<4)+1 {
		t.Errorf("sampleLength = %d, want %d", d.sampleLength, (1<<4)+1)
	}
}

func TestDMCSetEnabledRestartsOnlyWhenIdle(t *testing.T) {
	d := newDMC(&regionTableSet[RegionNTSC])
	d.sampleAddress = 0xC100
	d.sampleLength = 16

	d.setEnabled(true)
	if d.currentAddress != 0xC100 || d.bytesRemaining != 16 {
		t.Fatalf("setEnabled(true) from idle did not restart playback: addr=%#x remaining=%d",
			d.currentAddress, d.bytesRemaining)
	}

	d.currentAddress = 0xC108
	d.bytesRemaining = 8
	d.setEnabled(true)
	if d.currentAddress != 0xC108 || d.bytesRemaining != 8 {
		t.Errorf("setEnabled(true) restarted an in-flight transfer: addr=%#x remaining=%d",
			d.currentAddress, d.bytesRemaining)
	}
}

func TestDMCServiceFetchesOneByteAndStalls(t *testing.T) {
	d := newDMC(&regionTableSet[RegionNTSC])
	d.sampleAddress = 0xC000
	d.sampleLength = 2
	d.setEnabled(true)

	collab := &mockCollaborator{}
	collab.mem[0xC000] = 0xAB

	d.service(collab)

	if len(collab.stalls) != 1 || collab.stalls[0] != 4 {
		t.Errorf("stalls = %v, want a single 4-cycle stall", collab.stalls)
	}
	if d.buffer != 0xAB {
		t.Errorf("buffer = %#x, want 0xAB", d.buffer)
	}
	if d.bufferEmpty {
		t.Errorf("bufferEmpty = true, want false after a fetch")
	}
	if d.bytesRemaining != 1 {
		t.Errorf("bytesRemaining = %d, want 1", d.bytesRemaining)
	}
	if d.currentAddress != 0xC001 {
		t.Errorf("currentAddress = %#x, want 0xC001", d.currentAddress)
	}
}

func TestDMCServiceWrapsAddressAt0xFFFF(t *testing.T) {
	d := newDMC(&regionTableSet[RegionNTSC])
	d.sampleAddress = 0xFFFF
	d.sampleLength = 2
	d.setEnabled(true)

	collab := &mockCollaborator{}
	d.service(collab)

	if d.currentAddress != 0x8000 {
		t.Errorf("currentAddress = %#x, want wraparound to 0x8000", d.currentAddress)
	}
}

func TestDMCServiceSetsIRQWhenSampleEndsWithoutLoop(t *testing.T) {
	d := newDMC(&regionTableSet[RegionNTSC])
	d.irqEnable = true
	d.sampleAddress = 0xC000
	d.sampleLength = 1
	d.setEnabled(true)

	collab := &mockCollaborator{}
	d.service(collab)

	if !d.IRQFlag {
		t.Errorf("IRQFlag not set after the last byte with no loop")
	}
	if d.bytesRemaining != 0 {
		t.Errorf("bytesRemaining = %d, want 0", d.bytesRemaining)
	}
}

func TestDMCServiceLoopsInsteadOfIRQ(t *testing.T) {
	d := newDMC(&regionTableSet[RegionNTSC])
	d.irqEnable = true
	d.loop = true
	d.sampleAddress = 0xC000
	d.sampleLength = 1
	d.setEnabled(true)

	collab := &mockCollaborator{}
	d.service(collab)

	if d.IRQFlag {
		t.Errorf("IRQFlag set, want clear when looping")
	}
	if d.bytesRemaining != 1 || d.currentAddress != 0xC000 {
		t.Errorf("loop did not restart playback: addr=%#x remaining=%d", d.currentAddress, d.bytesRemaining)
	}
}

func TestDMCRunSaturatesOutputLevelAtUpperBound(t *testing.T) {
	d := newDMC(&regionTableSet[RegionNTSC])
	d.outputLevel = 126
	d.shiftRegister = 0x01 // bit0 set: every clocked bit pushes output up
	d.bitsRemaining = 8
	d.bufferEmpty = true
	d.silence = false

	collab := &mockCollaborator{}
	sink := &collectSink{}
	d.run(uint64(d.timer.Period)+1, ChannelDMC, sink, collab)

	if d.outputLevel != 127 {
		t.Errorf("outputLevel = %d, want 127 (saturated, not left at 126)", d.outputLevel)
	}
}

func TestDMCRunClampsOutputLevelAtLowerBound(t *testing.T) {
	d := newDMC(&regionTableSet[RegionNTSC])
	d.outputLevel = 1
	d.shiftRegister = 0x00 // bit0 clear: every clocked bit pushes output down
	d.bitsRemaining = 8
	d.bufferEmpty = true
	d.silence = false

	collab := &mockCollaborator{}
	sink := &collectSink{}
	d.run(uint64(d.timer.Period)+1, ChannelDMC, sink, collab)

	if d.outputLevel != 0 {
		t.Errorf("outputLevel = %d, want 0 (clamped, not left at 1)", d.outputLevel)
	}
}

func TestDMCDisableDelayZeroesBytesRemainingAfterDelay(t *testing.T) {
	d := newDMC(&regionTableSet[RegionNTSC])
	d.DisableDelay = 2
	d.sampleAddress = 0xC000
	d.sampleLength = 10
	d.setEnabled(true)

	collab := &mockCollaborator{}
	d.setEnabled(false)

	d.service(collab) // disableTimer: 2 -> 1
	if d.bytesRemaining == 0 {
		t.Fatalf("bytesRemaining cleared too early")
	}
	d.service(collab) // disableTimer: 1 -> 0, clears bytesRemaining
	if d.bytesRemaining != 0 {
		t.Errorf("bytesRemaining = %d, want 0 once the disable delay elapses", d.bytesRemaining)
	}
}
