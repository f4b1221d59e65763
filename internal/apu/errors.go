package apu

import "github.com/pkg/errors"

// Sentinel errors for the boundary-facing operations described in §7:
// region selection and save-state restore are the only two APU calls
// that can fail, and both failures are caller mistakes rather than
// recoverable runtime conditions.
var (
	// errInvalidRegion is returned by Config.Validate when the region
	// does not name one of the resolved regions (§7, "Region = Auto").
	errInvalidRegion = errors.New("apu: invalid region")

	// errSaveStateVersion is wrapped with the encountered/expected
	// version numbers by RestoreState (§6.3, §7).
	errSaveStateVersion = errors.New("apu: save state version mismatch")
)

// SaveStateVersionError reports an incompatible save-state format,
// carrying both the version found in the blob and the version this
// build expects.
type SaveStateVersionError struct {
	Found, Want int
	err         error
}

func (e *SaveStateVersionError) Error() string {
	return errors.Wrapf(e.err, "found %d, want %d", e.Found, e.Want).Error()
}

func (e *SaveStateVersionError) Unwrap() error {
	return e.err
}

func newSaveStateVersionError(found, want int) error {
	return &SaveStateVersionError{Found: found, Want: want, err: errSaveStateVersion}
}
