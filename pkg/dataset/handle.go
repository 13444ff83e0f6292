package dataset

import (
	"errors"
	"fmt"

	"github.com/pueo/pueonav/internal/blind"
	"github.com/pueo/pueonav/internal/locate"
	"github.com/pueo/pueonav/pkg/log"
	"github.com/pueo/pueonav/pkg/store"
)

// Indexed fields.
const (
	fieldEventNumber = "eventNumber"
	fieldRealTime    = "realTime"
)

// owned collects stores so they can be released together.
type owned []store.Store

func (o *owned) open(path string) (*store.FileStore, error) {
	s, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	*o = append(*o, s)
	return s, nil
}

func (o *owned) closeAll() error {
	var errs []error
	for i := len(*o) - 1; i >= 0; i-- {
		errs = append(errs, (*o)[i].Close())
	}
	*o = nil
	return errors.Join(errs...)
}

// runHandle owns the open stores of one run. Nil fields are unavailable.
type runHandle struct {
	files locate.RunFiles
	owned owned

	header    *store.FileStore
	headerIx  *store.Index
	decimated *store.FileStore
	decIx     *store.Index

	gps   *store.FileStore
	gpsIx *store.Index // realtime index when files.GPSByTime

	event *store.FileStore
	truth *store.FileStore

	blinder *blind.Blinder
}

// openRun opens every store of files. On failure nothing stays open.
func openRun(files locate.RunFiles, logger log.Logger) (*runHandle, error) {
	h := &runHandle{files: files}
	ok := false
	defer func() {
		if !ok {
			h.owned.closeAll()
		}
	}()

	var err error
	if h.header, err = h.owned.open(files.Header); err != nil {
		return nil, fmt.Errorf("open header: %w", err)
	}
	if h.header.Len() == 0 {
		return nil, fmt.Errorf("header file %s is empty", files.Header)
	}
	if err := h.header.BuildIndex(fieldEventNumber); err != nil {
		return nil, err
	}
	h.headerIx, _ = h.header.Index(fieldEventNumber)

	if files.Decimated != "" {
		if h.decimated, err = h.owned.open(files.Decimated); err != nil {
			return nil, fmt.Errorf("open decimated header: %w", err)
		}
		if h.decimated.Len() == 0 {
			return nil, fmt.Errorf("decimated header file %s is empty", files.Decimated)
		}
		if err := h.decimated.BuildIndex(fieldEventNumber); err != nil {
			return nil, err
		}
		h.decIx, _ = h.decimated.Index(fieldEventNumber)
	}

	if files.GPS != "" {
		if h.gps, err = h.owned.open(files.GPS); err != nil {
			return nil, fmt.Errorf("open gps: %w", err)
		}
		if files.GPSByTime {
			if err := h.gps.BuildIndex(fieldRealTime); err != nil {
				return nil, err
			}
			h.gpsIx, _ = h.gps.Index(fieldRealTime)
		}
	} else {
		logger.Debug("no gps file", log.Run(files.Run))
	}

	if files.Event != "" {
		if h.event, err = h.owned.open(files.Event); err != nil {
			return nil, fmt.Errorf("open events: %w", err)
		}
	} else {
		logger.Debug("no event file", log.Run(files.Run))
	}

	if files.Truth != "" {
		if h.truth, err = h.owned.open(files.Truth); err != nil {
			logger.Warn("truth file unreadable", log.Run(files.Run), log.Path(files.Truth), log.Err(err))
			h.truth = nil
		}
	}

	ok = true
	return h, nil
}

// headers is the store the cursor navigates.
func (h *runHandle) headers() *store.FileStore {
	if h.decimated != nil {
		return h.decimated
	}
	return h.header
}

// index is the event-number index of headers().
func (h *runHandle) index() *store.Index {
	if h.decimated != nil {
		return h.decIx
	}
	return h.headerIx
}

func (h *runHandle) close() error {
	return errors.Join(h.blinder.Close(), h.owned.closeAll())
}
