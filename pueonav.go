// Package pueonav navigates PUEO detector runs: a cursor over the header,
// event, GPS and truth stores of one run, with cross-run lookup by event
// number or time, playlists, selections and blinding.
//
// Example usage:
//
//	ds, err := pueonav.Open(1234, pueonav.Options{
//	    Logger: pueonav.NewLogger(pueonav.Logger()),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ds.Close()
//
//	if _, err := ds.GetEvent(61234567, false); err != nil {
//	    log.Fatal(err)
//	}
//	h, _ := ds.Header()
//	fmt.Println(h.Run, h.EventNumber)
package pueonav

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/pueo/pueonav/pkg/dataset"
	"github.com/pueo/pueonav/pkg/log"
)

// Dataset is a cursor over the stores of one loaded run.
type Dataset = dataset.Dataset

// Options configures a Dataset.
type Options = dataset.Options

// Open returns a Dataset with run loaded and its first entry selected.
func Open(run int, opts Options) (*Dataset, error) {
	return dataset.Open(run, opts)
}

// New returns a Dataset with no run loaded.
func New(opts Options) (*Dataset, error) {
	return dataset.New(opts)
}

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	With().Timestamp().Logger()

// Logger returns the package-level zerolog logger writing to stderr.
func Logger() zerolog.Logger {
	return logger
}

// NewLogger adapts a zerolog logger for Options.Logger.
func NewLogger(zl zerolog.Logger) log.Logger {
	return log.NewZerologAdapterWithLogger(zl)
}
