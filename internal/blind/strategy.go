package blind

import (
	"fmt"
	"strings"
)

// Strategy selects independent blinding behaviours.
type Strategy struct {
	InsertVPol        bool
	InsertHPol        bool
	RandomizePolarity bool
}

// None disables blinding.
var None = Strategy{}

// Active reports whether any behaviour is enabled.
func (s Strategy) Active() bool {
	return s.InsertVPol || s.InsertHPol || s.RandomizePolarity
}

// Inserts reports whether fake events are inserted for either polarization.
func (s Strategy) Inserts() bool { return s.InsertVPol || s.InsertHPol }

// ParseStrategy parses a comma separated list of "vpol", "hpol" and
// "polarity". "" and "none" mean no blinding.
func ParseStrategy(list string) (Strategy, error) {
	var s Strategy
	for _, tok := range strings.Split(list, ",") {
		switch strings.ToLower(strings.TrimSpace(tok)) {
		case "", "none":
		case "vpol":
			s.InsertVPol = true
		case "hpol":
			s.InsertHPol = true
		case "polarity":
			s.RandomizePolarity = true
		default:
			return None, fmt.Errorf("unknown blinding behaviour %q", tok)
		}
	}
	return s, nil
}

// String is the inverse of ParseStrategy.
func (s Strategy) String() string {
	var parts []string
	if s.InsertVPol {
		parts = append(parts, "vpol")
	}
	if s.InsertHPol {
		parts = append(parts, "hpol")
	}
	if s.RandomizePolarity {
		parts = append(parts, "polarity")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// Description is a human readable summary.
func (s Strategy) Description() string {
	if !s.Active() {
		return "No blinding. "
	}
	var b strings.Builder
	if s.InsertVPol {
		b.WriteString("VPol events inserted. ")
	}
	if s.InsertHPol {
		b.WriteString("HPol events inserted. ")
	}
	if s.RandomizePolarity {
		b.WriteString("Polarity randomized. ")
	}
	return b.String()
}
