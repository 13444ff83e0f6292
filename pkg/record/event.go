package record

// RawEvent holds uncalibrated per-channel ADC samples.
type RawEvent struct {
	EventNumber uint64    `json:"eventNumber"`
	Run         int       `json:"run"`
	YMax        []int16   `json:"yMax,omitempty"`
	YMin        []int16   `json:"yMin,omitempty"`
	Mean        []float32 `json:"mean,omitempty"`
	RMS         []float32 `json:"rms,omitempty"`
	Data        [][]int16 `json:"data"`
}

// UsefulEvent is a RawEvent with calibrated voltages and timing.
type UsefulEvent struct {
	RawEvent
	Volts [][]float64 `json:"volts"`
	T0    []float64   `json:"t0"`
	DT    []float64   `json:"dt"`
}

// Calibration constants applied by Calibrate.
const (
	// MillivoltsPerADC converts pedestal-subtracted ADC counts.
	MillivoltsPerADC = 0.5
	// SamplePeriodNs is the nominal digitizer sample spacing.
	SamplePeriodNs = 1.0 / 3.0
	// timingWindowNs folds the trigger time into one readout window.
	timingWindowNs = 1024
)

// T returns the time of sample i on channel ch.
func (u *UsefulEvent) T(ch, i int) float64 {
	return u.T0[ch] + float64(i)*u.DT[ch]
}

// Calibrate derives a UsefulEvent from raw samples and the paired header.
// The header contributes the trigger-time offset of every channel, so the
// header must be the one for the same entry as raw.
func Calibrate(raw *RawEvent, h *Header) *UsefulEvent {
	u := &UsefulEvent{RawEvent: cloneRaw(raw)}
	n := len(raw.Data)
	u.Volts = make([][]float64, n)
	u.T0 = make([]float64, n)
	u.DT = make([]float64, n)
	offset := -float64(h.TriggerTimeNs % timingWindowNs)
	for ch, samples := range raw.Data {
		v := make([]float64, len(samples))
		for i, s := range samples {
			v[i] = float64(s) * MillivoltsPerADC
		}
		u.Volts[ch] = v
		u.T0[ch] = offset
		u.DT[ch] = SamplePeriodNs
	}
	return u
}

// Clone returns a deep copy of u.
func (u *UsefulEvent) Clone() *UsefulEvent {
	if u == nil {
		return nil
	}
	c := &UsefulEvent{RawEvent: cloneRaw(&u.RawEvent)}
	c.Volts = make([][]float64, len(u.Volts))
	for i, v := range u.Volts {
		c.Volts[i] = append([]float64(nil), v...)
	}
	c.T0 = append([]float64(nil), u.T0...)
	c.DT = append([]float64(nil), u.DT...)
	return c
}

// InvertPolarity negates every calibrated and raw sample in place.
func (u *UsefulEvent) InvertPolarity() {
	for _, v := range u.Volts {
		for i := range v {
			v[i] = -v[i]
		}
	}
	for _, d := range u.Data {
		for i := range d {
			d[i] = -d[i]
		}
	}
}

func cloneRaw(r *RawEvent) RawEvent {
	c := RawEvent{
		EventNumber: r.EventNumber,
		Run:         r.Run,
		YMax:        append([]int16(nil), r.YMax...),
		YMin:        append([]int16(nil), r.YMin...),
		Mean:        append([]float32(nil), r.Mean...),
		RMS:         append([]float32(nil), r.RMS...),
		Data:        make([][]int16, len(r.Data)),
	}
	for i, d := range r.Data {
		c.Data[i] = append([]int16(nil), d...)
	}
	return c
}
