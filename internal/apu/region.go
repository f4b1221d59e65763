package apu

// Region selects the regional timing tables that govern the DMC rate
// table, the noise period table, and the frame-sequencer step-cycle
// table. Values are fixed by hardware and must be reproduced exactly.
type Region uint8

const (
	// RegionNTSC is the North American / Japanese timing (default).
	RegionNTSC Region = iota
	// RegionPAL is the European timing.
	RegionPAL
	// RegionDendy is the Russian Famicom clone timing; it shares the
	// NTSC DMC/noise/frame tables but runs the CPU at a different
	// overall clock (a concern for the CPU collaborator, not the APU).
	RegionDendy

	regionCount
)

// sequenceStep is the action dispatched at a frame-sequencer step.
type sequenceStep uint8

const (
	stepNone sequenceStep = iota
	stepQuarter
	stepHalf
)

// regionTables bundles the three lookup tables a region selects.
type regionTables struct {
	dmcRates     [16]uint16
	noisePeriods [16]uint16
	seqCycles4   [6]uint32
	seqCycles5   [6]uint32
}

// seqActions is the per-step action dispatched by the frame sequencer,
// identical across 4-step and 5-step mode and across all regions
// (§3.1: "Per-step action for both modes").
var seqActions = [6]sequenceStep{stepQuarter, stepHalf, stepQuarter, stepNone, stepHalf, stepNone}

// lengthTable is region-independent: the 32-entry length-counter load
// table written via the high 5 bits of $4003/$4007/$400B/$400F.
var lengthTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6,
	160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 18, 48, 20, 96, 22,
	192, 24, 72, 26, 16, 28, 32, 30,
}

var regionTableSet = [regionCount]regionTables{
	RegionNTSC: {
		dmcRates: [16]uint16{
			428, 380, 340, 320, 286, 254, 226, 214,
			190, 160, 142, 128, 106, 84, 72, 54,
		},
		noisePeriods: [16]uint16{
			4, 8, 16, 32, 64, 96, 128, 160,
			202, 254, 380, 508, 762, 1016, 2034, 4068,
		},
		seqCycles4: [6]uint32{7457, 14913, 22371, 29828, 29829, 29830},
		seqCycles5: [6]uint32{7457, 14913, 22371, 29829, 37281, 37282},
	},
	RegionPAL: {
		dmcRates: [16]uint16{
			398, 354, 316, 298, 276, 236, 210, 198,
			176, 148, 132, 118, 98, 78, 66, 50,
		},
		noisePeriods: [16]uint16{
			4, 8, 14, 30, 60, 88, 118, 148,
			188, 236, 354, 472, 708, 944, 1890, 3778,
		},
		seqCycles4: [6]uint32{8313, 16627, 24939, 33252, 33253, 33254},
		seqCycles5: [6]uint32{8313, 16627, 24939, 33253, 41565, 41566},
	},
}

func init() {
	// Dendy shares the NTSC DMC/noise/frame-sequencer tables (§3.1).
	regionTableSet[RegionDendy] = regionTableSet[RegionNTSC]
}

// valid reports whether r names one of the three resolved regions.
// There is deliberately no "Auto" value in this type: a collaborator
// that has not resolved a region must not call SetRegion at all (see
// Apu.SetRegion).
func (r Region) valid() bool {
	return r < regionCount
}
