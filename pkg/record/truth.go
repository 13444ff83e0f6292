package record

// Vec3 is a cartesian vector.
type Vec3 [3]float64

// Truth is the simulation ground truth for one event.
type Truth struct {
	Run          int         `json:"run"`
	RealTime     uint32      `json:"realTime"`
	EventNumber  uint64      `json:"eventNumber"`
	BalloonPos   Vec3        `json:"balloonPos"`
	BalloonDir   Vec3        `json:"balloonDir"`
	NuPos        Vec3        `json:"nuPos"`
	NuDir        Vec3        `json:"nuDir"`
	RFExit       Vec3        `json:"rfExit"`
	NuMom        float64     `json:"nuMom"`
	NuPDG        int         `json:"nuPdg"`
	Polarization Vec3        `json:"polarization"`
	Poynting     Vec3        `json:"poynting"`
	PayloadPhi   float64     `json:"payloadPhi"`
	PayloadTheta float64     `json:"payloadTheta"`
	SourceLon    float64     `json:"sourceLon"`
	SourceLat    float64     `json:"sourceLat"`
	SourceAlt    float64     `json:"sourceAlt"`
	Weight       float64     `json:"weight"`
	Signal       [][]float64 `json:"signal,omitempty"`
}
