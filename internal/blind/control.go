package blind

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pueo/pueonav/pkg/record"
)

// ControlFileName names the list of overwritten events for version v.
func ControlFileName(v int) string {
	return fmt.Sprintf("pueo%dOverwrittenEventInfo.txt", v)
}

// Substitution says that eventNumber is replaced by the record at Position
// of the blind store for Pol.
type Substitution struct {
	EventNumber uint64
	Position    int
	Pol         record.Pol
}

// ParseControl reads a control file: one header line, then whitespace
// separated "eventNumber position pol" triples.
func ParseControl(r io.Reader) ([]Substitution, error) {
	br := bufio.NewReader(r)
	if _, err := br.ReadString('\n'); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	sc := bufio.NewScanner(br)
	sc.Split(bufio.ScanWords)
	return parseTriples(sc)
}

func parseTriples(sc *bufio.Scanner) ([]Substitution, error) {
	var subs []Substitution
	var tok [3]string
	n := 0
	for sc.Scan() {
		tok[n] = sc.Text()
		n++
		if n < 3 {
			continue
		}
		n = 0
		ev, err := strconv.ParseUint(tok[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("control entry %d: event number: %w", len(subs), err)
		}
		pos, err := strconv.Atoi(tok[1])
		if err != nil || pos < 0 {
			return nil, fmt.Errorf("control entry %d: bad position %q", len(subs), tok[1])
		}
		p, err := strconv.Atoi(tok[2])
		if err != nil {
			return nil, fmt.Errorf("control entry %d: polarization: %w", len(subs), err)
		}
		pol, err := record.PolFromInt(p)
		if err != nil {
			return nil, fmt.Errorf("control entry %d: %w", len(subs), err)
		}
		subs = append(subs, Substitution{EventNumber: ev, Position: pos, Pol: pol})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if n != 0 {
		return nil, fmt.Errorf("control file ends with a partial entry %v", strings.Join(tok[:n], " "))
	}
	return subs, nil
}

// LoadControl reads the control file at path.
func LoadControl(path string) ([]Substitution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseControl(f)
}
