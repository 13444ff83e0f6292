package dataset

import (
	"github.com/pueo/pueonav/internal/blind"
	"github.com/pueo/pueonav/internal/locate"
	"github.com/pueo/pueonav/internal/runindex"
	"github.com/pueo/pueonav/internal/version"
	"github.com/pueo/pueonav/pkg/log"
)

// Options configures a Dataset. The zero value reads real data from the
// environment-selected data root without blinding.
type Options struct {
	// DataRoot overrides environment resolution of the data root.
	DataRoot string

	// CalibDir overrides environment resolution of the calibration
	// directory (blinding files, HiCal track, cross-run caches).
	CalibDir string

	// Version selects the data root of one epoch. Zero derives it.
	Version int

	// Simulated selects the Monte Carlo data root.
	Simulated bool

	// Decimated navigates the decimated header store.
	Decimated bool

	// Blinding is applied to runs of an eligible version.
	Blinding blind.Strategy

	// Logger defaults to the no-op logger.
	Logger log.Logger

	// Registry defaults to the process-wide cross-run index, or to a
	// private one when DataRoot is set.
	Registry *runindex.Registry

	// Versions maps realtimes to epochs. Defaults to version.DefaultTable.
	Versions version.Table
}

// Selector returns the data directory selector: version.Simulated, an
// epoch, or version.Unknown for "use the default".
func (o Options) Selector() int {
	switch {
	case o.Simulated:
		return version.Simulated
	case o.Version > 0:
		return o.Version
	}
	return version.Unknown
}

func (o *Options) setDefaults() {
	o.Logger = log.OrNoop(o.Logger)
	if o.Versions.Count() == 0 {
		o.Versions = version.DefaultTable
	}
	if o.CalibDir == "" {
		o.CalibDir = locate.CalibDir()
	}
	if o.Registry == nil {
		if o.DataRoot != "" {
			root := o.DataRoot
			o.Registry = runindex.NewRegistry(
				runindex.WithDataDir(func(int) (string, error) { return root, nil }),
				runindex.WithCacheDir(o.CalibDir),
				runindex.WithLogger(o.Logger),
			)
		} else {
			o.Registry = runindex.Default()
		}
	}
}

func (o Options) dataRoot() (string, error) {
	if o.DataRoot != "" {
		return o.DataRoot, nil
	}
	return locate.DataDir(o.Selector())
}
