package dataset

import (
	"fmt"

	"github.com/pueo/pueonav/pkg/log"
	"github.com/pueo/pueonav/pkg/record"
	"github.com/pueo/pueonav/pkg/state"
	"github.com/pueo/pueonav/pkg/store"
)

type moduleVersion struct {
	name          string
	version       string
	minCompatible string
}

// builtAgainst records the module versions this package was written for.
var builtAgainst = map[string]string{
	"record": "1.0.0",
	"store":  "1.0.0",
	"log":    "1.0.0",
	"state":  "1.0.0",
}

func linkedModules() []moduleVersion {
	return []moduleVersion{
		{"record", record.Version, record.MinCompatibleVersion},
		{"store", store.Version, store.MinCompatibleVersion},
		{"log", log.Version, log.MinCompatibleVersion},
		{"state", state.Version, state.MinCompatibleVersion},
		{"dataset", Version, MinCompatibleVersion},
	}
}

func validateModuleVersions() error {
	return checkModules(linkedModules(), builtAgainst)
}

// checkModules fails when a module's version is below its own minimum, or
// when the module no longer accepts the version we were built against.
func checkModules(mods []moduleVersion, want map[string]string) error {
	for _, m := range mods {
		if !isVersionCompatible(m.version, m.minCompatible) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				m.name, m.version, m.minCompatible)
		}
		if w, ok := want[m.name]; ok && !isVersionCompatible(w, m.minCompatible) {
			return fmt.Errorf("module %s %s requires at least %s, built against %s",
				m.name, m.version, m.minCompatible, w)
		}
	}
	return nil
}

// isVersionCompatible reports version >= minVersion, both "major.minor.patch".
func isVersionCompatible(version, minVersion string) bool {
	var v, m [3]int
	_, _ = fmt.Sscanf(version, "%d.%d.%d", &v[0], &v[1], &v[2])
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &m[0], &m[1], &m[2])
	for i := range v {
		if v[i] != m[i] {
			return v[i] > m[i]
		}
	}
	return true
}
