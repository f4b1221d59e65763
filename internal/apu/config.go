package apu

// Config holds the APU's documented accuracy toggles (§9) plus the
// selected region, tagged for JSON the way the teacher's
// internal/app.Config tags its own settings tree.
type Config struct {
	Region Region `json:"region"`

	// SilenceTriangleHighFreq suppresses triangle output when its
	// period is < 2, avoiding the DC/ultrasonic artefact an unfiltered
	// mixer would otherwise pass through. Default false (more
	// accurate): real hardware does not suppress it.
	SilenceTriangleHighFreq bool `json:"silence_triangle_high_freq"`

	// DisableNoiseModeFlag pins the noise channel's feedback tap to
	// bit 1 regardless of the mode bit written to $400E, for emulators
	// targeting homebrew that assumed mode 1 never worked. Default
	// false (more accurate).
	DisableNoiseModeFlag bool `json:"disable_noise_mode_flag"`
}

// DefaultConfig returns the accurate-by-default configuration (§9).
func DefaultConfig() Config {
	return Config{
		Region:                  RegionNTSC,
		SilenceTriangleHighFreq: false,
		DisableNoiseModeFlag:    false,
	}
}

// Validate reports whether the config names a resolvable region. It
// does not itself call SetRegion — §7 restricts region changes to a
// reset boundary, which is the caller's to enforce.
func (c Config) Validate() error {
	if !c.Region.valid() {
		return errInvalidRegion
	}
	return nil
}
