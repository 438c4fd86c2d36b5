// Package version exposes this module's own version and validates the
// passport_firmware_version string carried by x-passport-response values
// (spec.md §4.7), using the same semver library the teacher used to
// compare client/daemon versions against a published latest.
package version

import (
	"github.com/blang/semver"

	"github.com/foundationdevices/passport-ur/urerr"
)

// CURRENT_VERSION is this module's own version.
var CURRENT_VERSION = semver.MustParse("0.1.0")

// ParseFirmwareVersion validates a passport_firmware_version string as
// semver, the wire shape a PassportResponse carries it in.
func ParseFirmwareVersion(s string) (semver.Version, error) {
	v, err := semver.Parse(s)
	if err != nil {
		return semver.Version{}, urerr.Wrap(urerr.MalformedCbor, "passport_firmware_version is not valid semver", err)
	}
	return v, nil
}

// IsFirmwareAtLeast reports whether reported satisfies a minimum required
// firmware version, e.g. to gate bridge features on a device capability.
func IsFirmwareAtLeast(reported, minimum string) (bool, error) {
	r, err := ParseFirmwareVersion(reported)
	if err != nil {
		return false, err
	}
	m, err := ParseFirmwareVersion(minimum)
	if err != nil {
		return false, err
	}
	return r.GTE(m), nil
}
