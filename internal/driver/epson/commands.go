// internal/driver/epson/commands.go
package epson

// ESC_POS_COMMANDS contains the ESC/POS sequences the driver emits.
// Entries ending in a parameter byte are prefixes; the driver appends n.
var ESC_POS_COMMANDS = struct {
	// Basic commands
	INITIALIZE []byte

	// Text formatting, each followed by n
	SELECT_FONT    []byte
	SMOOTHING      []byte
	CHARACTER_SIZE []byte
	REVERSE        []byte
	UNDERLINE      []byte
	EMPHASIS       []byte
	PRINT_COLOR    []byte
	ALIGN          []byte
	SELECT_CHARSET []byte

	// Paper handling
	FEED_LINES     []byte
	SET_WIDTH_58MM []byte
	SET_WIDTH_80MM []byte

	// Graphics
	RASTER_IMAGE []byte

	// Cutting
	CUT_NO_FEED []byte
	CUT_FEED    []byte
	CUT_RESERVE []byte
}{
	INITIALIZE: []byte{0x1B, 0x40}, // ESC @

	SELECT_FONT:    []byte{0x1B, 0x4D}, // ESC M
	SMOOTHING:      []byte{0x1D, 0x62}, // GS b
	CHARACTER_SIZE: []byte{0x1D, 0x21}, // GS !
	REVERSE:        []byte{0x1D, 0x42}, // GS B
	UNDERLINE:      []byte{0x1B, 0x2D}, // ESC -
	EMPHASIS:       []byte{0x1B, 0x45}, // ESC E
	PRINT_COLOR:    []byte{0x1B, 0x72}, // ESC r
	ALIGN:          []byte{0x1B, 0x61}, // ESC a
	SELECT_CHARSET: []byte{0x1B, 0x74}, // ESC t

	FEED_LINES:     []byte{0x1B, 0x64},             // ESC d
	SET_WIDTH_58MM: []byte{0x1D, 0x57, 0x80, 0x01}, // GS W 384
	SET_WIDTH_80MM: []byte{0x1D, 0x57, 0x40, 0x02}, // GS W 576

	RASTER_IMAGE: []byte{0x1D, 0x76, 0x30, 0x00}, // GS v 0, normal density

	CUT_NO_FEED: []byte{0x1D, 0x56, 0x01},       // GS V 1
	CUT_FEED:    []byte{0x1D, 0x56, 0x42, 0x00}, // GS V B 0
	CUT_RESERVE: []byte{0x1D, 0x56, 0x68, 0x00}, // GS V h 0
}

// withParam returns a fresh copy of prefix followed by params
func withParam(prefix []byte, params ...byte) []byte {
	cmd := make([]byte, 0, len(prefix)+len(params))
	cmd = append(cmd, prefix...)
	return append(cmd, params...)
}
