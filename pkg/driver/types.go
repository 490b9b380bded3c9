// pkg/driver/types.go
package driver

import "time"

// ePOS2 parameter values. Drivers receive these typed constants, never the
// tokens that appear in command records.

// Sentinels shared by every parameter family.
const ParamDefault = -2

// Toggle is a tri-state on/off flag
type Toggle int

const (
	ToggleFalse   Toggle = 0
	ToggleTrue    Toggle = 1
	ToggleDefault Toggle = ParamDefault
)

// ToggleOf converts a boolean to its protocol value
func ToggleOf(b bool) Toggle {
	if b {
		return ToggleTrue
	}
	return ToggleFalse
}

func (t Toggle) String() string {
	switch t {
	case ToggleFalse:
		return "FALSE"
	case ToggleTrue:
		return "TRUE"
	case ToggleDefault:
		return "DEFAULT"
	default:
		return "UNKNOWN"
	}
}

// CutMode selects how the paper is cut
type CutMode int

const (
	CutNoFeed  CutMode = 0
	CutFeed    CutMode = 1
	CutReserve CutMode = 2
	CutDefault CutMode = ParamDefault
)

func (c CutMode) String() string {
	switch c {
	case CutNoFeed:
		return "CUT_NO_FEED"
	case CutFeed:
		return "CUT_FEED"
	case CutReserve:
		return "CUT_RESERVE"
	case CutDefault:
		return "DEFAULT"
	default:
		return "UNKNOWN"
	}
}

// Align is the horizontal text alignment
type Align int

const (
	AlignLeft    Align = 0
	AlignCenter  Align = 1
	AlignRight   Align = 2
	AlignDefault Align = ParamDefault
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "LEFT"
	case AlignCenter:
		return "CENTER"
	case AlignRight:
		return "RIGHT"
	case AlignDefault:
		return "DEFAULT"
	default:
		return "UNKNOWN"
	}
}

// Font selects a device font
type Font int

const (
	FontA Font = 0
	FontB Font = 1
	FontC Font = 2
	FontD Font = 3
	FontE Font = 4
)

func (f Font) String() string {
	if f >= FontA && f <= FontE {
		return "FONT_" + string(rune('A'+int(f)))
	}
	return "UNKNOWN"
}

// Color selects the print color
type Color int

const (
	ColorNone    Color = 0
	Color1       Color = 1
	Color2       Color = 2
	Color3       Color = 3
	Color4       Color = 4
	ColorDefault Color = ParamDefault
)

func (c Color) String() string {
	switch {
	case c == ColorNone:
		return "COLOR_NONE"
	case c >= Color1 && c <= Color4:
		return "COLOR_" + string(rune('0'+int(c)))
	case c == ColorDefault:
		return "DEFAULT"
	default:
		return "UNKNOWN"
	}
}

// ColorMode is the raster color depth
type ColorMode int

const (
	ModeMono   ColorMode = 0
	ModeGray16 ColorMode = 1
)

// Halftone is the raster halftoning method
type Halftone int

const (
	HalftoneDither         Halftone = 0
	HalftoneErrorDiffusion Halftone = 1
	HalftoneThreshold      Halftone = 2
)

// Compress is the raster compression mode
type Compress int

const (
	CompressDeflate Compress = 0
	CompressNone    Compress = 1
	CompressAuto    Compress = 2
)

// BrightnessDefault lets the driver pick the raster brightness
const BrightnessDefault = float64(ParamDefault)

// PrinterInfo contains basic printer information
type PrinterInfo struct {
	PrinterID      string `json:"printer_id"`
	Brand          string `json:"brand"`
	Model          string `json:"model"`
	ConnectionType string `json:"connection_type"`
	PaperWidth     int    `json:"paper_width"`
}

// PrinterStatus represents the last known transport state
type PrinterStatus struct {
	Connected    bool      `json:"connected"`
	BufferedSize int       `json:"buffered_size"`
	LastSent     time.Time `json:"last_sent,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}
