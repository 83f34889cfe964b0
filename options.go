package inksplit

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidOptions = errors.New("inksplit: invalid options")
	ErrUnknownFont    = errors.New("inksplit: unknown font")
	ErrEmptyImage     = errors.New("inksplit: empty image")
)

// Location is the print location on the garment, which decides where the
// art sits horizontally on the film.
type Location int

const (
	Left Location = iota
	Right
	Center
)

func (l Location) String() string {
	switch l {
	case Right:
		return "right"
	case Center:
		return "center"
	default:
		return "left"
	}
}

func ParseLocation(s string) (Location, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	case "center", "centre":
		return Center, nil
	}
	return Left, fmt.Errorf("%w: location %q", ErrInvalidOptions, s)
}

// Options controls a separation. Lengths are in inches and become pixels
// through Resolution.
type Options struct {
	// Film size.
	CanvasWidth  float64
	CanvasHeight float64
	// Distance from the top of the film to the top of the art.
	CanvasMargin float64
	// Dots per inch of the film and of the scaled art.
	Resolution int
	Location   Location
	// Horizontal distance from the film centre line for Left and Right prints.
	CenterOffset float64
	// Moves art and registration mark down.
	VerticalOffset float64
	// Maximum print size. Zero leaves the dimension unconstrained; both zero
	// skips cropping and scaling entirely.
	PrintWidth  float64
	PrintHeight float64
	// Generate an underbase layer.
	Underbase bool
	// Inks whose LCh lightness (0-1) is below this are cut out of the
	// underbase. Lower value => less underbase.
	UnderbaseThreshold float64
	// Label font name and pixel size.
	Font     string
	FontSize int
	// Horizontal gap between labels, in pixels.
	LabelSpacing int
	// Floyd-Steinberg dithering during indexed conversion. Without it every
	// pixel takes the nearest ink in Lab.
	Dither bool
	// Registration mark edge length.
	RegistrationSize float64
	// Rename ink layers after their closest entry in MatchPalette.
	ColorMatch   bool
	MatchPalette string
}

func DefaultOptions() Options {
	return Options{
		CanvasWidth:        17.5,
		CanvasHeight:       21.5,
		CanvasMargin:       1.25,
		Resolution:         300,
		Location:           Left,
		CenterOffset:       4,
		VerticalOffset:     0,
		PrintWidth:         3.5,
		PrintHeight:        0,
		Underbase:          true,
		UnderbaseThreshold: 0.35,
		Font:               "Sans-Serif Bold",
		FontSize:           60,
		LabelSpacing:       40,
		Dither:             true,
		RegistrationSize:   0.5,
		ColorMatch:         false,
		MatchPalette:       "graphic-design",
	}
}

func (o Options) Validate() error {
	var errs []error
	if o.CanvasWidth <= 0 || o.CanvasHeight <= 0 {
		errs = append(errs, fmt.Errorf("canvas %gx%g must be positive", o.CanvasWidth, o.CanvasHeight))
	}
	if o.Resolution <= 0 {
		errs = append(errs, fmt.Errorf("resolution %d must be positive", o.Resolution))
	}
	if o.PrintWidth < 0 || o.PrintHeight < 0 {
		errs = append(errs, fmt.Errorf("print size %gx%g must not be negative", o.PrintWidth, o.PrintHeight))
	}
	if o.UnderbaseThreshold < 0 || o.UnderbaseThreshold > 1 {
		errs = append(errs, fmt.Errorf("underbase threshold %g not in [0,1]", o.UnderbaseThreshold))
	}
	if o.FontSize <= 0 {
		errs = append(errs, fmt.Errorf("font size %d must be positive", o.FontSize))
	}
	if o.RegistrationSize < 0 {
		errs = append(errs, fmt.Errorf("registration size %g must not be negative", o.RegistrationSize))
	}
	if o.ColorMatch && strings.TrimSpace(o.MatchPalette) == "" {
		errs = append(errs, errors.New("color match needs a palette name"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, errors.Join(errs...))
	}
	return nil
}

// px converts inches to pixels, truncating like the film layout does.
func (o Options) px(inches float64) int {
	return int(inches * float64(o.Resolution))
}
