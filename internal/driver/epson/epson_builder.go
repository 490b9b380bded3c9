// internal/driver/epson/epson_builder.go
package epson

import (
	"fmt"
	"image"

	"epos-bridge/pkg/driver"
)

const (
	maxFeedLines = 255
	maxTextScale = 8
)

// AddText buffers text bytes as-is
func (d *EPSONDriver) AddText(text string) error {
	return d.write([]byte(text))
}

// AddCommand buffers raw ESC/POS bytes
func (d *EPSONDriver) AddCommand(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("raw command is empty")
	}
	return d.write(append([]byte(nil), data...))
}

// AddImage rasterizes the (x, y, width, height) region of img. Wider
// regions are scaled down to the paper width. GS v 0 carries no
// compression, so compress is ignored.
func (d *EPSONDriver) AddImage(img image.Image, x, y, width, height int, color driver.Color, mode driver.ColorMode, halftone driver.Halftone, brightness float64, compress driver.Compress) error {
	if img == nil {
		return fmt.Errorf("image is required")
	}
	if x < 0 || y < 0 {
		return fmt.Errorf("image origin (%d,%d) must not be negative", x, y)
	}
	if width < 1 || height < 1 {
		return fmt.Errorf("image size %dx%d must be at least 1x1", width, height)
	}
	if mode != driver.ModeMono {
		return fmt.Errorf("color mode %d not supported", mode)
	}
	colorCmd, err := printColor(color)
	if err != nil {
		return err
	}

	gray, err := cropAndFit(img, x, y, width, height, d.paperWidth)
	if err != nil {
		return err
	}
	adjustBrightness(gray, brightness)
	raster, rowBytes, rows := monochrome(gray, halftone)

	cmds := rasterCommands(raster, rowBytes, rows)
	if colorCmd != nil {
		cmds = append([][]byte{colorCmd}, cmds...)
	}
	return d.write(cmds...)
}

// AddFeedLine feeds n lines
func (d *EPSONDriver) AddFeedLine(lines int) error {
	if lines < 0 || lines > maxFeedLines {
		return fmt.Errorf("feed lines %d out of range 0..%d", lines, maxFeedLines)
	}
	return d.write(withParam(ESC_POS_COMMANDS.FEED_LINES, byte(lines)))
}

// AddCut buffers a paper cut
func (d *EPSONDriver) AddCut(mode driver.CutMode) error {
	switch mode {
	case driver.CutFeed, driver.CutDefault:
		return d.write(withParam(ESC_POS_COMMANDS.CUT_FEED))
	case driver.CutNoFeed:
		return d.write(withParam(ESC_POS_COMMANDS.CUT_NO_FEED))
	case driver.CutReserve:
		return d.write(withParam(ESC_POS_COMMANDS.CUT_RESERVE))
	default:
		return fmt.Errorf("cut mode %d not supported", mode)
	}
}

// AddTextAlign sets justification for following lines
func (d *EPSONDriver) AddTextAlign(align driver.Align) error {
	switch align {
	case driver.AlignDefault:
		return nil
	case driver.AlignLeft, driver.AlignCenter, driver.AlignRight:
		return d.write(withParam(ESC_POS_COMMANDS.ALIGN, byte(align)))
	default:
		return fmt.Errorf("alignment %d not supported", align)
	}
}

// AddTextFont selects a device font
func (d *EPSONDriver) AddTextFont(font driver.Font) error {
	if font < driver.FontA || font > driver.FontE {
		return fmt.Errorf("font %d not supported", font)
	}
	return d.write(withParam(ESC_POS_COMMANDS.SELECT_FONT, byte(font)))
}

// AddTextSmooth toggles glyph smoothing
func (d *EPSONDriver) AddTextSmooth(smooth driver.Toggle) error {
	cmd, err := toggleCommand(ESC_POS_COMMANDS.SMOOTHING, smooth)
	if err != nil || cmd == nil {
		return err
	}
	return d.write(cmd)
}

// AddTextSize sets the character magnification, 1..8 in each direction.
// The default sentinel means 1.
func (d *EPSONDriver) AddTextSize(width, height int) error {
	if width == driver.ParamDefault {
		width = 1
	}
	if height == driver.ParamDefault {
		height = 1
	}
	if width < 1 || width > maxTextScale || height < 1 || height > maxTextScale {
		return fmt.Errorf("text size %dx%d out of range 1..%d", width, height, maxTextScale)
	}
	n := byte((width-1)<<4 | (height - 1))
	return d.write(withParam(ESC_POS_COMMANDS.CHARACTER_SIZE, n))
}

// AddTextStyle sets reverse, underline, emphasis and color. Each default
// sentinel leaves that attribute unchanged. Nothing is buffered if any
// argument is invalid.
func (d *EPSONDriver) AddTextStyle(reverse, underline, emphasis driver.Toggle, color driver.Color) error {
	var cmds [][]byte

	for _, attr := range []struct {
		prefix []byte
		value  driver.Toggle
	}{
		{ESC_POS_COMMANDS.REVERSE, reverse},
		{ESC_POS_COMMANDS.UNDERLINE, underline},
		{ESC_POS_COMMANDS.EMPHASIS, emphasis},
	} {
		cmd, err := toggleCommand(attr.prefix, attr.value)
		if err != nil {
			return err
		}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	colorCmd, err := printColor(color)
	if err != nil {
		return err
	}
	if colorCmd != nil {
		cmds = append(cmds, colorCmd)
	}

	if len(cmds) == 0 {
		return nil
	}
	return d.write(cmds...)
}

// toggleCommand returns prefix+n, or nil for the default sentinel
func toggleCommand(prefix []byte, t driver.Toggle) ([]byte, error) {
	switch t {
	case driver.ToggleDefault:
		return nil, nil
	case driver.ToggleFalse, driver.ToggleTrue:
		return withParam(prefix, byte(t)), nil
	default:
		return nil, fmt.Errorf("toggle value %d not supported", t)
	}
}

// printColor maps a color to ESC r. TM two-color models have a first
// and second color only.
func printColor(c driver.Color) ([]byte, error) {
	switch c {
	case driver.ColorNone, driver.ColorDefault:
		return nil, nil
	case driver.Color1:
		return withParam(ESC_POS_COMMANDS.PRINT_COLOR, 0), nil
	case driver.Color2:
		return withParam(ESC_POS_COMMANDS.PRINT_COLOR, 1), nil
	default:
		return nil, fmt.Errorf("color %s not supported", c)
	}
}
