// Package pipeline runs a calibration night: standards are fit one at a
// time, then program spectra are calibrated one arm pair at a time against
// the standard or master curve selected for them.
package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal"
)

// Entry is one line of a list file.
type Entry struct {
	Path string
	Arm  fluxcal.Arm
}

// Group is one observation: a single arm, or blue followed by red.
type Group []Entry

// ReadList parses a list with one path per line. A line may carry an
// explicit "blue" or "red" tag before the path; otherwise the arm is
// inferred from the file name. Blank lines and # comments are ignored.
func ReadList(r io.Reader, name string) ([]Entry, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		switch len(fields) {
		case 1:
			entries = append(entries, Entry{Path: fields[0], Arm: fluxcal.ArmFromName(fields[0])})
		case 2:
			arm, err := fluxcal.ParseArm(fields[0])
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", name, line, err)
			}
			entries = append(entries, Entry{Path: fields[1], Arm: arm})
		default:
			return nil, fmt.Errorf("%w: %s:%d: expected [arm] path, got %q",
				fluxcal.ErrInputFormat, name, line, text)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fluxcal.ErrInputFormat, name, err)
	}
	return entries, nil
}

// LoadList reads the list file at path.
func LoadList(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fluxcal.ErrInputFormat, err)
	}
	defer f.Close()
	return ReadList(f, path)
}

// Paths returns the entry paths in order.
func Paths(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

func hasArm(entries []Entry, arm fluxcal.Arm) bool {
	for _, e := range entries {
		if e.Arm == arm {
			return true
		}
	}
	return false
}

// GroupStandards groups a standard list. A list holding both arms must be
// strict blue-then-red pairs; a single-arm list yields one group per line.
func GroupStandards(entries []Entry) ([]Group, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: empty standard list", fluxcal.ErrInputFormat)
	}
	if !hasArm(entries, fluxcal.ArmBlue) || !hasArm(entries, fluxcal.ArmRed) {
		groups := make([]Group, len(entries))
		for i, e := range entries {
			groups[i] = Group{e}
		}
		return groups, nil
	}

	groups := make([]Group, 0, len(entries)/2)
	for i := 0; i < len(entries); i += 2 {
		if i+1 >= len(entries) || entries[i].Arm != fluxcal.ArmBlue || entries[i+1].Arm != fluxcal.ArmRed {
			return nil, fmt.Errorf("%w: standard %s is not part of a blue/red pair",
				fluxcal.ErrInputFormat, entries[i].Path)
		}
		groups = append(groups, Group{entries[i], entries[i+1]})
	}
	return groups, nil
}

// GroupPrograms groups a program list: a blue entry directly followed by a
// red one forms a pair, anything else stands alone.
func GroupPrograms(entries []Entry) ([]Group, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: empty program list", fluxcal.ErrInputFormat)
	}
	var groups []Group
	for i := 0; i < len(entries); {
		if entries[i].Arm == fluxcal.ArmBlue && i+1 < len(entries) && entries[i+1].Arm == fluxcal.ArmRed {
			groups = append(groups, Group{entries[i], entries[i+1]})
			i += 2
			continue
		}
		groups = append(groups, Group{entries[i]})
		i++
	}
	return groups, nil
}
