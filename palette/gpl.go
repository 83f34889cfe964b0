package palette

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const gplMagic = "GIMP Palette"

// ParseGPL reads a GIMP palette (.gpl). Entry lines are "R G B [name]" with
// channels in 0-255; "Name:" and "Columns:" headers and "#" comments are
// recognized.
func ParseGPL(r io.Reader) (*Palette, error) {
	sc := bufio.NewScanner(r)
	lineNo := 0
	p := &Palette{}
	sawMagic := false
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if !sawMagic {
			// Some writers emit a UTF-8 BOM.
			line = strings.TrimPrefix(line, "\ufeff")
			if line != gplMagic {
				return nil, fmt.Errorf("%w: line %d: missing %q header", ErrFormat, lineNo, gplMagic)
			}
			sawMagic = true
			continue
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if v, ok := strings.CutPrefix(line, "Name:"); ok {
			p.Name = strings.TrimSpace(v)
			continue
		}
		if v, ok := strings.CutPrefix(line, "Columns:"); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: line %d: bad column count %q", ErrFormat, lineNo, v)
			}
			p.Columns = n
			continue
		}
		e, err := parseGPLEntry(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, lineNo, err)
		}
		p.Entries = append(p.Entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !sawMagic {
		return nil, fmt.Errorf("%w: empty file", ErrFormat)
	}
	return p, nil
}

func parseGPLEntry(line string) (Entry, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Entry{}, fmt.Errorf("expected R G B, got %q", line)
	}
	var ch [3]float64
	for i := range 3 {
		v, err := strconv.Atoi(fields[i])
		if err != nil || v < 0 || v > 255 {
			return Entry{}, fmt.Errorf("channel %q not in 0-255", fields[i])
		}
		ch[i] = float64(v) / 255.0
	}
	return Entry{
		Name:  strings.Join(fields[3:], " "),
		Color: colorful.Color{R: ch[0], G: ch[1], B: ch[2]},
	}, nil
}

// LoadGPL reads a GIMP palette file. A palette without a Name header is
// named after the file.
func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := ParseGPL(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = stem(path)
	}
	return p, nil
}

// WriteGPL serializes the palette in GIMP palette format.
func (p *Palette) WriteGPL(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, gplMagic)
	if p.Name != "" {
		fmt.Fprintf(bw, "Name: %s\n", p.Name)
	}
	if p.Columns > 0 {
		fmt.Fprintf(bw, "Columns: %d\n", p.Columns)
	}
	fmt.Fprintln(bw, "#")
	for _, e := range p.Entries {
		r, g, b := e.Color.Clamped().RGB255()
		if e.Name == "" {
			fmt.Fprintf(bw, "%3d %3d %3d\n", r, g, b)
			continue
		}
		fmt.Fprintf(bw, "%3d %3d %3d\t%s\n", r, g, b, e.Name)
	}
	return bw.Flush()
}
