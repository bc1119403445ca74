// Package version reports the build version of the helpdesk binary.
package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Current is overridden at build time:
//
//	go build -ldflags "-X github.com/openhelpdesk/helpdesk/internal/shared/version.Current=1.2.0"
var Current = "dev"

// Normalize adds the "v" prefix semver expects: "1.2.3" becomes "v1.2.3".
func Normalize(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// IsRelease is false for development and otherwise unparseable builds.
func IsRelease(v string) bool {
	return semver.IsValid(Normalize(v)) && semver.Prerelease(Normalize(v)) == ""
}
