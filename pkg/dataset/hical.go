package dataset

import (
	"path/filepath"

	"github.com/pueo/pueonav/pkg/log"
	"github.com/pueo/pueonav/pkg/record"
	"github.com/pueo/pueonav/pkg/store"
)

// HiCalMissing is returned for each coordinate when no HiCal fix exists.
const HiCalMissing = -9999

// HiCalStem names the interpolated HiCal track in the calibration directory.
const HiCalStem = "H1b_GPS_time_interp"

const feetToMeters = 0.3048

func (d *Dataset) loadHiCal() *store.FileStore {
	if d.hicalTried {
		return d.hical
	}
	d.hicalTried = true
	for _, ext := range store.Extensions {
		p := filepath.Join(d.opts.CalibDir, HiCalStem+ext)
		s, err := store.Open(p)
		if err != nil {
			continue
		}
		if err := s.BuildIndex("unixTime"); err != nil {
			d.logger.Warn("indexing hical track", log.Path(p), log.Err(err))
			s.Close()
			return nil
		}
		d.hical = s
		return s
	}
	d.logger.Warn("no hical track", log.Path(filepath.Join(d.opts.CalibDir, HiCalStem)))
	return nil
}

// HiCal returns the HiCal balloon position at realTime, altitude in
// meters. Each coordinate is HiCalMissing when there is no fix.
func (d *Dataset) HiCal(realTime uint32) (lon, lat, alt float64) {
	s := d.loadHiCal()
	if s == nil {
		return HiCalMissing, HiCalMissing, HiCalMissing
	}
	pos := s.PositionForKey("unixTime", int64(realTime))
	if pos < 0 {
		return HiCalMissing, HiCalMissing, HiCalMissing
	}
	var fix record.HiCalFix
	if err := s.Get(pos, &fix); err != nil {
		d.logger.Warn("reading hical fix", log.Entry(pos), log.Err(err))
		return HiCalMissing, HiCalMissing, HiCalMissing
	}
	return fix.Longitude, fix.Latitude, fix.Altitude * feetToMeters
}

// HiCalNow is HiCal at the current header's realtime.
func (d *Dataset) HiCalNow() (lon, lat, alt float64) {
	var rt uint32
	if h, err := d.Header(); err == nil {
		rt = h.RealTime
	}
	return d.HiCal(rt)
}
