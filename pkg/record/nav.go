package record

// Attitude is a combined position and attitude sample from the navigation
// system. Realtime-indexed GPS stores are keyed on RealTime.
type Attitude struct {
	Source           string    `json:"source"`
	Run              int       `json:"run"`
	EventNumber      uint64    `json:"eventNumber,omitempty"`
	RealTime         uint64    `json:"realTime"`
	RealTimeNsecs    uint32    `json:"realTimeNsecs"`
	NSats            uint16    `json:"nSats"`
	ReadoutTime      uint64    `json:"readoutTime"`
	ReadoutTimeNsecs uint32    `json:"readoutTimeNsecs"`
	Latitude         float32   `json:"latitude"`
	Longitude        float32   `json:"longitude"`
	Altitude         float32   `json:"altitude"`
	Heading          float32   `json:"heading"`
	Pitch            float32   `json:"pitch"`
	Roll             float32   `json:"roll"`
	HeadingSigma     float32   `json:"headingSigma"`
	PitchSigma       float32   `json:"pitchSigma"`
	RollSigma        float32   `json:"rollSigma"`
	VDOP             float32   `json:"vdop"`
	HDOP             float32   `json:"hdop"`
	Flag             int32     `json:"flag"`
	AntennaCurrents  [3]uint16 `json:"antennaCurrents"`
	Temperature      int16     `json:"temperature"`
}

// HiCalFix is one interpolated position of the HiCal calibration balloon.
// Altitude is stored in feet.
type HiCalFix struct {
	UnixTime  int64   `json:"unixTime"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Altitude  float64 `json:"altitude"`
}
