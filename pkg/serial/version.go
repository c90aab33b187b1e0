package serial

import "github.com/blang/semver/v4"

// moduleVersion is a library-release compatibility marker surfaced in logs
// and metrics only. The binary wire format has no version marker of its
// own (spec §6/§9); this never touches the wire.
var moduleVersion = semver.MustParse("0.1.0")

// Version returns the library's semantic version.
func Version() semver.Version {
	return moduleVersion
}
