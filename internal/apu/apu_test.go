package apu

import "testing"

func newTestApu() (*Apu, *mockCollaborator) {
	collab := &mockCollaborator{}
	a := New(&collectSink{}, collab)
	return a, collab
}

func TestApuNewDefaultsToNTSC(t *testing.T) {
	a, _ := newTestApu()
	if a.Region() != RegionNTSC {
		t.Errorf("Region() = %v, want RegionNTSC", a.Region())
	}
}

func TestApuSetRegionRejectsInvalid(t *testing.T) {
	a, _ := newTestApu()
	a.SetRegion(Region(200))
	if a.Region() != RegionNTSC {
		t.Errorf("Region() = %v, want unchanged RegionNTSC after an invalid SetRegion", a.Region())
	}
}

func TestApuWriteControlEnablesChannel(t *testing.T) {
	a, _ := newTestApu()
	a.Run(1)
	a.Write(0x4000, 0x3F) // duty=0, length halt, constant volume 15
	a.Write(0x4003, 0x08) // length load index 1

	if a.Pulse1.Length.Value != 0 {
		t.Errorf("Pulse1.Length.Value = %d, want 0: $4015 enable bit not yet set", a.Pulse1.Length.Value)
	}

	a.Write(0x4015, 0x01)
	a.Run(2)
	a.Write(0x4003, 0x08)
	if a.Pulse1.Length.Value == 0 {
		t.Errorf("Pulse1.Length.Value = 0, want loaded after enabling and rewriting timer-high")
	}
}

func TestApuReadStatusReflectsChannelActivity(t *testing.T) {
	a, _ := newTestApu()
	a.Run(1)
	a.Write(0x4015, 0x01)
	a.Write(0x4000, 0x30)
	a.Write(0x4003, 0x08)

	a.Run(2)
	status := a.ReadStatus()
	if status&0x01 == 0 {
		t.Errorf("status = %#02x, want pulse1 bit set", status)
	}
}

func TestApuFrameIRQAssertsAndClearsOnRead(t *testing.T) {
	a, collab := newTestApu()
	a.SetRegion(RegionNTSC)
	a.Reset(false)

	// Four-step mode (default) asserts the frame IRQ near the end of
	// its ~29830-cycle sequence.
	a.Run(29831)

	if !collab.frameIRQSet {
		t.Fatalf("frame IRQ not asserted to the collaborator after a full 4-step sequence")
	}

	status := a.ReadStatus()
	if status&0x40 == 0 {
		t.Errorf("ReadStatus() = %#02x, want bit 6 set before the clear deadline", status)
	}

	a.Run(29833)
	if status := a.ReadStatus(); status&0x40 != 0 {
		t.Errorf("ReadStatus() = %#02x two cycles after the read, want bit 6 cleared", status)
	}
}

func TestApuSurvivesMultipleFrameSequencerWraps(t *testing.T) {
	// Regression test: the frame sequencer's local step-cycle base must
	// not be confused with the APU's absolute master cycle count, or a
	// single Run() call spanning a wraparound replays whole sequences.
	a, _ := newTestApu()
	a.Write(0x4015, 0x1F)

	const cyclesPerSequence = 29830
	a.Run(cyclesPerSequence * 5)

	if a.cycle != cyclesPerSequence*5 {
		t.Fatalf("cycle = %d, want %d", a.cycle, cyclesPerSequence*5)
	}
	// The frame counter's local step must be small, not still catching
	// up across repeated multi-thousand-cycle replays.
	if a.Frame.step >= frameSteps {
		t.Errorf("Frame.step = %d out of range after multiple wraps", a.Frame.step)
	}
}

func TestApuRunIsIdempotentAtSameTarget(t *testing.T) {
	a, _ := newTestApu()
	a.Write(0x4015, 0x1F)
	a.Run(1000)
	cycleAfterFirst := a.cycle

	a.Run(1000)
	if a.cycle != cycleAfterFirst {
		t.Errorf("cycle = %d after a second Run at the same target, want unchanged %d", a.cycle, cycleAfterFirst)
	}
}

func TestApuDMCDrivesCollaboratorStall(t *testing.T) {
	a, collab := newTestApu()
	a.Write(0x4010, 0x00) // rate index 0, no loop, no irq
	a.Write(0x4012, 0x00) // sample address $C000
	a.Write(0x4013, 0x00) // sample length 1
	a.Write(0x4015, 0x10) // enable DMC

	a.Run(2000)

	if len(collab.stalls) == 0 {
		t.Errorf("expected at least one DMA stall while the DMC services its sample")
	}
}

func TestApuFrameCounterWriteAtCycleZeroUsesEvenDelay(t *testing.T) {
	// Regression test: masterEven must already be correct (cycle 0 is
	// even) before the first Run() call ever flips it, or a $4017 write
	// issued at power-on sees the wrong write-delay parity.
	a, _ := newTestApu()
	a.Write(0x4017, 0x00)

	if a.Frame.pendingDelay != 3 {
		t.Errorf("pendingDelay = %d, want 3 for a write at even cycle 0", a.Frame.pendingDelay)
	}
}

func TestApuSoftResetClearsChannelsButKeepsMode(t *testing.T) {
	a, _ := newTestApu()
	a.Run(1)
	a.Write(0x4015, 0x1F)
	a.Write(0x4017, 0x80) // switch to 5-step mode
	a.Run(10)

	a.Reset(true)

	if a.Pulse1.Enabled || a.Noise.Enabled {
		t.Errorf("channels still enabled after soft reset")
	}
	if a.Frame.mode != 1 {
		t.Errorf("Frame.mode = %d after soft reset, want 5-step mode (1) kept", a.Frame.mode)
	}
}
