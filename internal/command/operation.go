// internal/command/operation.go
package command

import (
	"image"

	"epos-bridge/pkg/driver"
)

// Recognised command ids
const (
	CmdAppendText    = "appendText"
	CmdPrintRawData  = "printRawData"
	CmdAddImage      = "addImage"
	CmdAddFeedLine   = "addFeedLine"
	CmdAddLineSpace  = "addLineSpace"
	CmdAddCut        = "addCut"
	CmdAddTextAlign  = "addTextAlign"
	CmdAddTextFont   = "addTextFont"
	CmdAddTextSmooth = "addTextSmooth"
	CmdAddTextSize   = "addTextSize"
	CmdAddTextStyle  = "addTextStyle"
)

// Operation is a validated instruction ready for the driver. Applying an
// operation performs exactly one driver call.
type Operation interface {
	Apply(p driver.Printer) error
}

type Text struct {
	Value string
}

func (o Text) Apply(p driver.Printer) error {
	return p.AddText(o.Value)
}

type RawData struct {
	Data []byte
}

func (o RawData) Apply(p driver.Printer) error {
	return p.AddCommand(o.Data)
}

// Image is forwarded with fixed raster parameters: monochrome, first
// color, dithered, default brightness, automatic compression.
type Image struct {
	Image  image.Image
	X      int
	Y      int
	Width  int
	Height int
}

func (o Image) Apply(p driver.Printer) error {
	return p.AddImage(o.Image, o.X, o.Y, o.Width, o.Height,
		driver.Color1, driver.ModeMono, driver.HalftoneDither,
		driver.BrightnessDefault, driver.CompressAuto)
}

type FeedLine struct {
	Lines int
}

func (o FeedLine) Apply(p driver.Printer) error {
	return p.AddFeedLine(o.Lines)
}

type Cut struct {
	Mode driver.CutMode
}

func (o Cut) Apply(p driver.Printer) error {
	return p.AddCut(o.Mode)
}

type TextAlign struct {
	Align driver.Align
}

func (o TextAlign) Apply(p driver.Printer) error {
	return p.AddTextAlign(o.Align)
}

type TextFont struct {
	Font driver.Font
}

func (o TextFont) Apply(p driver.Printer) error {
	return p.AddTextFont(o.Font)
}

type TextSmooth struct {
	Smooth driver.Toggle
}

func (o TextSmooth) Apply(p driver.Printer) error {
	return p.AddTextSmooth(o.Smooth)
}

type TextSize struct {
	Width  int
	Height int
}

func (o TextSize) Apply(p driver.Printer) error {
	return p.AddTextSize(o.Width, o.Height)
}

type TextStyle struct {
	Reverse   driver.Toggle
	Underline driver.Toggle
	Emphasis  driver.Toggle
	Color     driver.Color
}

func (o TextStyle) Apply(p driver.Printer) error {
	return p.AddTextStyle(o.Reverse, o.Underline, o.Emphasis, o.Color)
}

// rule extracts one operation kind from a record
type rule func(r Record) (Operation, error)

var rules = map[string]rule{
	CmdAppendText:    parseText,
	CmdPrintRawData:  parseRawData,
	CmdAddImage:      parseImage,
	CmdAddFeedLine:   parseFeedLine(CmdAddFeedLine),
	CmdAddLineSpace:  parseFeedLine(CmdAddLineSpace),
	CmdAddCut:        parseCut,
	CmdAddTextAlign:  parseTextAlign,
	CmdAddTextFont:   parseTextFont,
	CmdAddTextSmooth: parseTextSmooth,
	CmdAddTextSize:   parseTextSize,
	CmdAddTextStyle:  parseTextStyle,
}

// Supported reports whether id names a recognised command
func Supported(id string) bool {
	_, ok := rules[id]
	return ok
}

func parseText(r Record) (Operation, error) {
	fr := newFieldReader(r, CmdAppendText)
	value := fr.text(FieldValue)
	if fr.err != nil {
		return nil, fr.err
	}
	return Text{Value: value}, nil
}

func parseRawData(r Record) (Operation, error) {
	fr := newFieldReader(r, CmdPrintRawData)
	data := fr.binary(FieldValue)
	if fr.err != nil {
		return nil, fr.err
	}
	return RawData{Data: data}, nil
}

func parseImage(r Record) (Operation, error) {
	fr := newFieldReader(r, CmdAddImage)
	payload := fr.text(FieldValue)
	width := fr.integer(FieldWidth)
	height := fr.integer(FieldHeight)
	x := fr.integer(FieldPosX)
	y := fr.integer(FieldPosY)
	if fr.err != nil {
		return nil, fr.err
	}

	img, err := DecodeImage(payload)
	if err != nil {
		return nil, &FieldError{Command: CmdAddImage, Field: FieldValue, Err: err}
	}

	return Image{Image: img, X: x, Y: y, Width: width, Height: height}, nil
}

func parseFeedLine(command string) rule {
	return func(r Record) (Operation, error) {
		fr := newFieldReader(r, command)
		lines := fr.integer(FieldValue)
		if fr.err != nil {
			return nil, fr.err
		}
		return FeedLine{Lines: lines}, nil
	}
}

func parseCut(r Record) (Operation, error) {
	fr := newFieldReader(r, CmdAddCut)
	token := fr.text(FieldValue)
	if fr.err != nil {
		return nil, fr.err
	}
	mode := CutTable.Map(token)
	return Cut{Mode: mode}, nil
}

func parseTextAlign(r Record) (Operation, error) {
	fr := newFieldReader(r, CmdAddTextAlign)
	token := fr.text(FieldValue)
	if fr.err != nil {
		return nil, fr.err
	}
	align := AlignTable.Map(token)
	return TextAlign{Align: align}, nil
}

func parseTextFont(r Record) (Operation, error) {
	fr := newFieldReader(r, CmdAddTextFont)
	token := fr.text(FieldValue)
	if fr.err != nil {
		return nil, fr.err
	}
	font, ok := FontTable.Lookup(token)
	if !ok {
		return nil, &FieldError{Command: CmdAddTextFont, Field: FieldValue, Err: ErrUnmappedToken}
	}
	return TextFont{Font: font}, nil
}

func parseTextSmooth(r Record) (Operation, error) {
	fr := newFieldReader(r, CmdAddTextSmooth)
	smooth := fr.boolean(FieldValue)
	if fr.err != nil {
		return nil, fr.err
	}
	return TextSmooth{Smooth: driver.ToggleOf(smooth)}, nil
}

func parseTextSize(r Record) (Operation, error) {
	fr := newFieldReader(r, CmdAddTextSize)
	width := fr.integer(FieldWidth)
	height := fr.integer(FieldHeight)
	if fr.err != nil {
		return nil, fr.err
	}
	return TextSize{Width: width, Height: height}, nil
}

// parseTextStyle requires color; reverse, ul and em are optional and fall
// back to the default sentinel when missing or not boolean.
func parseTextStyle(r Record) (Operation, error) {
	fr := newFieldReader(r, CmdAddTextStyle)
	token := fr.text(FieldColor)
	if fr.err != nil {
		return nil, fr.err
	}
	color := ColorTable.Map(token)

	return TextStyle{
		Reverse:   optionalToggle(r, FieldReverse),
		Underline: optionalToggle(r, FieldUnderline),
		Emphasis:  optionalToggle(r, FieldEmphasis),
		Color:     color,
	}, nil
}

func optionalToggle(r Record, field string) driver.Toggle {
	v, err := r.Bool(field)
	if err != nil {
		return driver.ToggleDefault
	}
	return driver.ToggleOf(v)
}
