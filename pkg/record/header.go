package record

// Header is the per-trigger metadata record.
type Header struct {
	Run           int             `json:"run"`
	RealTime      uint32          `json:"realTime"`
	PayloadTime   uint32          `json:"payloadTime"`
	PayloadTimeUs uint32          `json:"payloadTimeUs"`
	GPSSubTime    uint32          `json:"gpsSubTime"`
	EventNumber   uint64          `json:"eventNumber"`
	Priority      uint8           `json:"priority"`
	PhiTrigMask   [NumPols]uint32 `json:"phiTrigMask"`
	Flags         uint32          `json:"flags"`

	PeakThetaBin    uint8  `json:"peakThetaBin"`
	ImagePeak       uint16 `json:"imagePeak"`
	CoherentSumPeak uint16 `json:"coherentSumPeak"`

	TrigType      uint32 `json:"trigType"`
	TrigNum       uint32 `json:"trigNum"`
	TrigTime      uint32 `json:"trigTime"`
	C3PONum       uint32 `json:"c3poNum"`
	PPSNum        uint16 `json:"ppsNum"`
	DeadTime      uint16 `json:"deadTime"`
	BufferDepth   uint8  `json:"bufferDepth"`
	TriggerTime   uint32 `json:"triggerTime"`
	TriggerTimeNs uint32 `json:"triggerTimeNs"`
	GoodTimeFlag  int32  `json:"goodTimeFlag"`

	TriggeringSector int32  `json:"triggeringSector"`
	TriggeringBeam   int32  `json:"triggeringBeam"`
	BeamPower        uint32 `json:"beamPower"`
	TriggerPattern   uint32 `json:"triggerPattern"`
}

// IsInPhiMask reports whether phi sector phi is masked for pol.
func (h *Header) IsInPhiMask(phi int, pol Pol) bool {
	if !pol.Valid() || phi < 0 || phi >= NumPhi {
		return false
	}
	return h.PhiTrigMask[pol]&(1<<uint(phi)) != 0
}

// IsMinBias reports whether the low trigger bit (RF) is clear.
func (h *Header) IsMinBias() bool {
	return h.TrigType&1 == 0
}

// TriggerSeconds is the trigger time rounded to the nearest whole second,
// the key used to match realtime-indexed GPS samples.
func (h *Header) TriggerSeconds() int64 {
	return int64(h.TriggerTime) + int64((h.TriggerTimeNs+500_000_000)/1_000_000_000)
}
