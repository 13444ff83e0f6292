package record

import "fmt"

// Detector geometry counts.
const (
	NumAntsMI          = 96
	NumAntsLF          = 8
	NumAnts            = NumAntsMI + NumAntsLF
	NumPols            = 2
	NumPhi             = 24
	NumChansPerSurf    = 8
	NumDigitizedChans  = NumAnts * NumPols
	MaxNumberOfSamples = 4096
)

// Pol is an antenna polarization.
type Pol int

const (
	Horizontal Pol = 0
	Vertical   Pol = 1
	NotAPol    Pol = 2
)

// String returns "H", "V" or "?".
func (p Pol) String() string {
	switch p {
	case Horizontal:
		return "H"
	case Vertical:
		return "V"
	default:
		return "?"
	}
}

// Valid reports whether p is Horizontal or Vertical.
func (p Pol) Valid() bool { return p == Horizontal || p == Vertical }

// PolFromInt converts the integer encoding used in control files.
func PolFromInt(i int) (Pol, error) {
	p := Pol(i)
	if !p.Valid() {
		return NotAPol, fmt.Errorf("invalid polarization %d", i)
	}
	return p, nil
}

// Trigger type bits carried in Header.TrigType.
const (
	TrigUnknown uint32 = 0
	TrigRFMI    uint32 = 1
	TrigExt     uint32 = 2
	TrigRFLF    uint32 = 4
	TrigPPS0    uint32 = 8
	TrigPPS1    uint32 = 16
	TrigSoft    uint32 = 32
	TrigVPol    uint32 = 64
	TrigHPol    uint32 = 128
)

// IsRFTrigger reports whether either RF trigger bit is set.
func IsRFTrigger(t uint32) bool {
	return t&(TrigRFMI|TrigRFLF) != 0
}
