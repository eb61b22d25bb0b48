package realmbridge

import (
	"fmt"

	"github.com/bft-labs/realmbridge/pkg/analytics"
	"github.com/bft-labs/realmbridge/pkg/debugserver"
	"github.com/bft-labs/realmbridge/pkg/devenv"
	"github.com/bft-labs/realmbridge/pkg/lifecycle"
	"github.com/bft-labs/realmbridge/pkg/log"
	"github.com/bft-labs/realmbridge/pkg/state"
	"github.com/bft-labs/realmbridge/pkg/taskloop"
)

// Version information for the realmbridge module.
const (
	Version              = "1.0.0"
	MinCompatibleVersion = "1.0.0"
)

type moduleVersion struct {
	version    string
	minVersion string
}

func modules() map[string]moduleVersion {
	return map[string]moduleVersion{
		"analytics":   {analytics.Version, analytics.MinCompatibleVersion},
		"debugserver": {debugserver.Version, debugserver.MinCompatibleVersion},
		"devenv":      {devenv.Version, devenv.MinCompatibleVersion},
		"lifecycle":   {lifecycle.Version, lifecycle.MinCompatibleVersion},
		"log":         {log.Version, log.MinCompatibleVersion},
		"state":       {state.Version, state.MinCompatibleVersion},
		"taskloop":    {taskloop.Version, taskloop.MinCompatibleVersion},
	}
}

// ModuleVersions returns the version of every sub-module.
func ModuleVersions() map[string]string {
	out := map[string]string{"realmbridge": Version}
	for name, m := range modules() {
		out[name] = m.version
	}
	return out
}

// CompatibilityMatrix returns the minimum compatible version of every sub-module.
func CompatibilityMatrix() map[string]string {
	out := map[string]string{"realmbridge": MinCompatibleVersion}
	for name, m := range modules() {
		out[name] = m.minVersion
	}
	return out
}

// validateModuleVersions checks that all module versions are compatible.
// Returns an error if any module version is below its minimum compatible version.
func validateModuleVersions() error {
	for name, m := range modules() {
		if !isVersionCompatible(m.version, m.minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, m.version, m.minVersion)
		}
	}
	return nil
}

// isVersionCompatible checks if version >= minVersion using semantic versioning.
// Assumes versions are in format "major.minor.patch".
func isVersionCompatible(version, minVersion string) bool {
	var vMajor, vMinor, vPatch int
	var mMajor, mMinor, mPatch int

	_, _ = fmt.Sscanf(version, "%d.%d.%d", &vMajor, &vMinor, &vPatch)
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &mMajor, &mMinor, &mPatch)

	if vMajor != mMajor {
		return vMajor > mMajor
	}
	if vMinor != mMinor {
		return vMinor > mMinor
	}
	return vPatch >= mPatch
}
