package command

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"epos-bridge/pkg/driver"
)

type call struct {
	method string
	args   []interface{}
}

type recordingPrinter struct {
	calls []call
	err   error
}

func (p *recordingPrinter) record(method string, args ...interface{}) error {
	p.calls = append(p.calls, call{method: method, args: args})
	return p.err
}

func (p *recordingPrinter) AddText(text string) error { return p.record("AddText", text) }
func (p *recordingPrinter) AddCommand(data []byte) error {
	return p.record("AddCommand", data)
}
func (p *recordingPrinter) AddImage(img image.Image, x, y, width, height int, c driver.Color, mode driver.ColorMode, halftone driver.Halftone, brightness float64, compress driver.Compress) error {
	return p.record("AddImage", img.Bounds().Size(), x, y, width, height, c, mode, halftone, brightness, compress)
}
func (p *recordingPrinter) AddFeedLine(lines int) error { return p.record("AddFeedLine", lines) }
func (p *recordingPrinter) AddCut(mode driver.CutMode) error {
	return p.record("AddCut", mode)
}
func (p *recordingPrinter) AddTextAlign(align driver.Align) error {
	return p.record("AddTextAlign", align)
}
func (p *recordingPrinter) AddTextFont(font driver.Font) error {
	return p.record("AddTextFont", font)
}
func (p *recordingPrinter) AddTextSmooth(smooth driver.Toggle) error {
	return p.record("AddTextSmooth", smooth)
}
func (p *recordingPrinter) AddTextSize(width, height int) error {
	return p.record("AddTextSize", width, height)
}
func (p *recordingPrinter) AddTextStyle(reverse, ul, em driver.Toggle, c driver.Color) error {
	return p.record("AddTextStyle", reverse, ul, em, c)
}

func pngBase64(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.SetGray(x, 0, color.Gray{Y: 0})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestTranslateDropsRecordsWithoutID(t *testing.T) {
	tr := NewTranslator(zap.NewNop())

	records := []Record{
		{},
		{"value": "Hello"},
		{"id": ""},
		{"id": 12, "value": "Hello"},
		{"id": nil},
	}

	for _, r := range records {
		p := &recordingPrinter{}
		out := tr.Translate(p, r)
		if len(p.calls) != 0 {
			t.Errorf("record %v: expected no calls, got %v", r, p.calls)
		}
		if out.Status != StatusMissingID {
			t.Errorf("record %v: status = %s, want %s", r, out.Status, StatusMissingID)
		}
	}
}

func TestTranslateUnknownCommandLogsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tr := NewTranslator(zap.New(core))
	p := &recordingPrinter{}

	out := tr.Translate(p, Record{"id": "addBarcode", "value": "123"})

	if len(p.calls) != 0 {
		t.Fatalf("expected no calls, got %v", p.calls)
	}
	if out.Status != StatusUnknownCommand {
		t.Fatalf("status = %s, want %s", out.Status, StatusUnknownCommand)
	}
	if !errors.Is(out.Err, ErrUnknownCommand) {
		t.Fatalf("err = %v, want ErrUnknownCommand", out.Err)
	}

	warnings := logs.FilterMessage("Command not supported").All()
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %d", len(warnings))
	}
	if warnings[0].Level != zapcore.WarnLevel {
		t.Errorf("level = %s, want warn", warnings[0].Level)
	}
	if got := warnings[0].ContextMap()["command"]; got != "addBarcode" {
		t.Errorf("logged command = %v", got)
	}
}

func TestTranslateNilPrinter(t *testing.T) {
	tr := NewTranslator(nil)
	out := tr.Translate(nil, Record{"id": CmdAppendText, "value": "Hello"})
	if out.Status != StatusNoPrinter {
		t.Fatalf("status = %s, want %s", out.Status, StatusNoPrinter)
	}
}

func TestTranslateForwardsOperations(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   call
	}{
		{
			name:   "append text",
			record: Record{"id": "appendText", "value": "Hello"},
			want:   call{"AddText", []interface{}{"Hello"}},
		},
		{
			name:   "raw data",
			record: Record{"id": "printRawData", "value": []byte{0x1B, 0x40}},
			want:   call{"AddCommand", []interface{}{[]byte{0x1B, 0x40}}},
		},
		{
			name:   "feed line",
			record: Record{"id": "addFeedLine", "value": 3},
			want:   call{"AddFeedLine", []interface{}{3}},
		},
		{
			name:   "feed line from json number",
			record: Record{"id": "addFeedLine", "value": float64(2)},
			want:   call{"AddFeedLine", []interface{}{2}},
		},
		{
			name:   "line space forwards to feed line",
			record: Record{"id": "addLineSpace", "value": int64(5)},
			want:   call{"AddFeedLine", []interface{}{5}},
		},
		{
			name:   "cut feed",
			record: Record{"id": "addCut", "value": "CUT_FEED"},
			want:   call{"AddCut", []interface{}{driver.CutFeed}},
		},
		{
			name:   "epos2 cut feed maps to no feed",
			record: Record{"id": "addCut", "value": "EPOS2_CUT_FEED"},
			want:   call{"AddCut", []interface{}{driver.CutNoFeed}},
		},
		{
			name:   "cut reserve",
			record: Record{"id": "addCut", "value": "CUT_RESERVE"},
			want:   call{"AddCut", []interface{}{driver.CutReserve}},
		},
		{
			name:   "unknown cut falls back to default",
			record: Record{"id": "addCut", "value": "BOGUS"},
			want:   call{"AddCut", []interface{}{driver.CutDefault}},
		},
		{
			name:   "align center",
			record: Record{"id": "addTextAlign", "value": "CENTER"},
			want:   call{"AddTextAlign", []interface{}{driver.AlignCenter}},
		},
		{
			name:   "unknown align falls back to default",
			record: Record{"id": "addTextAlign", "value": "JUSTIFY"},
			want:   call{"AddTextAlign", []interface{}{driver.AlignDefault}},
		},
		{
			name:   "font b",
			record: Record{"id": "addTextFont", "value": "FONT_B"},
			want:   call{"AddTextFont", []interface{}{driver.FontB}},
		},
		{
			name:   "smooth on",
			record: Record{"id": "addTextSmooth", "value": true},
			want:   call{"AddTextSmooth", []interface{}{driver.ToggleTrue}},
		},
		{
			name:   "smooth off",
			record: Record{"id": "addTextSmooth", "value": false},
			want:   call{"AddTextSmooth", []interface{}{driver.ToggleFalse}},
		},
		{
			name:   "text size",
			record: Record{"id": "addTextSize", "width": 2, "height": float64(3)},
			want:   call{"AddTextSize", []interface{}{2, 3}},
		},
		{
			name:   "style with color only",
			record: Record{"id": "addTextStyle", "color": "COLOR_1"},
			want: call{"AddTextStyle", []interface{}{
				driver.ToggleDefault, driver.ToggleDefault, driver.ToggleDefault, driver.Color1,
			}},
		},
		{
			name:   "style with flags",
			record: Record{"id": "addTextStyle", "color": "COLOR_NONE", "reverse": true, "ul": false, "em": true},
			want: call{"AddTextStyle", []interface{}{
				driver.ToggleTrue, driver.ToggleFalse, driver.ToggleTrue, driver.ColorNone,
			}},
		},
		{
			name:   "style with mistyped flag and unknown color",
			record: Record{"id": "addTextStyle", "color": "PINK", "reverse": "yes"},
			want: call{"AddTextStyle", []interface{}{
				driver.ToggleDefault, driver.ToggleDefault, driver.ToggleDefault, driver.ColorDefault,
			}},
		},
	}

	tr := NewTranslator(zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &recordingPrinter{}
			out := tr.Translate(p, tt.record)
			if !out.Forwarded() {
				t.Fatalf("status = %s (%v), want forwarded", out.Status, out.Err)
			}
			if len(p.calls) != 1 {
				t.Fatalf("expected exactly one call, got %v", p.calls)
			}
			if !reflect.DeepEqual(p.calls[0], tt.want) {
				t.Errorf("call = %#v, want %#v", p.calls[0], tt.want)
			}
		})
	}
}

func TestTranslateRejectsMalformedRecords(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		status Status
	}{
		{"text with number", Record{"id": "appendText", "value": 42}, StatusMalformed},
		{"text missing", Record{"id": "appendText"}, StatusMalformed},
		{"raw data as text", Record{"id": "printRawData", "value": "1B40"}, StatusMalformed},
		{"feed line fractional", Record{"id": "addFeedLine", "value": 1.5}, StatusMalformed},
		{"feed line text", Record{"id": "addFeedLine", "value": "3"}, StatusMalformed},
		{"cut number", Record{"id": "addCut", "value": 1}, StatusMalformed},
		{"align missing", Record{"id": "addTextAlign"}, StatusMalformed},
		{"font unknown", Record{"id": "addTextFont", "value": "FONT_Z"}, StatusUnmapped},
		{"smooth as number", Record{"id": "addTextSmooth", "value": 1}, StatusMalformed},
		{"size missing height", Record{"id": "addTextSize", "width": 2}, StatusMalformed},
		{"style without color", Record{"id": "addTextStyle", "reverse": true, "ul": true}, StatusMalformed},
		{"style with numeric color", Record{"id": "addTextStyle", "color": 1}, StatusMalformed},
		{"image missing posY", Record{"id": "addImage", "value": "", "width": 1, "height": 1, "posX": 0}, StatusMalformed},
	}

	tr := NewTranslator(zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &recordingPrinter{}
			out := tr.Translate(p, tt.record)
			if len(p.calls) != 0 {
				t.Fatalf("expected no calls, got %v", p.calls)
			}
			if out.Status != tt.status {
				t.Errorf("status = %s, want %s (err %v)", out.Status, tt.status, out.Err)
			}
		})
	}
}

func TestTranslateImage(t *testing.T) {
	tr := NewTranslator(zap.NewNop())
	payload := pngBase64(t, 8, 4)

	p := &recordingPrinter{}
	out := tr.Translate(p, Record{
		"id":     "addImage",
		"value":  payload,
		"width":  100,
		"height": 50,
		"posX":   0,
		"posY":   0,
	})
	if !out.Forwarded() {
		t.Fatalf("status = %s (%v)", out.Status, out.Err)
	}
	if len(p.calls) != 1 {
		t.Fatalf("expected one call, got %d", len(p.calls))
	}

	want := call{"AddImage", []interface{}{
		image.Pt(8, 4), 0, 0, 100, 50,
		driver.Color1, driver.ModeMono, driver.HalftoneDither, float64(-2), driver.CompressAuto,
	}}
	if !reflect.DeepEqual(p.calls[0], want) {
		t.Errorf("call = %#v, want %#v", p.calls[0], want)
	}
}

func TestTranslateImageDecodeFailures(t *testing.T) {
	tr := NewTranslator(zap.NewNop())
	payloads := map[string]string{
		"invalid base64": "not base64!!",
		"not an image":   base64.StdEncoding.EncodeToString([]byte("plain text")),
		"empty":          "",
		"oversized":      base64.StdEncoding.EncodeToString(pngHeaderOnly(60000, 60000)),
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			p := &recordingPrinter{}
			out := tr.Translate(p, Record{
				"id": "addImage", "value": payload,
				"width": 100, "height": 50, "posX": 0, "posY": 0,
			})
			if len(p.calls) != 0 {
				t.Fatalf("expected no calls, got %v", p.calls)
			}
			if out.Status != StatusDecodeFailed {
				t.Errorf("status = %s, want %s", out.Status, StatusDecodeFailed)
			}
			if !errors.Is(out.Err, ErrImageDecode) {
				t.Errorf("err = %v, want ErrImageDecode", out.Err)
			}
		})
	}
}

func TestTranslateIsIdempotent(t *testing.T) {
	tr := NewTranslator(zap.NewNop())
	p := &recordingPrinter{}
	r := Record{"id": "addTextStyle", "color": "COLOR_2", "em": true}

	tr.Translate(p, r)
	tr.Translate(p, r)

	if len(p.calls) != 2 {
		t.Fatalf("expected two calls, got %d", len(p.calls))
	}
	if !reflect.DeepEqual(p.calls[0], p.calls[1]) {
		t.Errorf("calls differ: %#v vs %#v", p.calls[0], p.calls[1])
	}
}

func TestTranslateDriverError(t *testing.T) {
	tr := NewTranslator(zap.NewNop())
	p := &recordingPrinter{err: errors.New("buffer full")}

	out := tr.Translate(p, Record{"id": "appendText", "value": "Hello"})
	if out.Status != StatusDriverError {
		t.Fatalf("status = %s, want %s", out.Status, StatusDriverError)
	}
	if len(p.calls) != 1 {
		t.Fatalf("expected the call to be attempted once, got %d", len(p.calls))
	}
}

func TestTranslateAllKeepsOrder(t *testing.T) {
	tr := NewTranslator(zap.NewNop())
	p := &recordingPrinter{}

	outcomes := tr.TranslateAll(p, []Record{
		{"id": "addTextAlign", "value": "CENTER"},
		{"id": "appendText", "value": 7},
		{"id": "appendText", "value": "Total\n"},
		{"id": "addCut", "value": "CUT_FEED"},
	})

	if len(outcomes) != 4 {
		t.Fatalf("expected 4 outcomes, got %d", len(outcomes))
	}
	if outcomes[1].Status != StatusMalformed {
		t.Errorf("second outcome = %s, want malformed", outcomes[1].Status)
	}

	var methods []string
	for _, c := range p.calls {
		methods = append(methods, c.method)
	}
	want := []string{"AddTextAlign", "AddText", "AddCut"}
	if !reflect.DeepEqual(methods, want) {
		t.Errorf("methods = %v, want %v", methods, want)
	}
}

func TestInterpretReturnsFieldError(t *testing.T) {
	tr := NewTranslator(zap.NewNop())

	_, err := tr.Interpret(Record{"id": "addTextSize", "width": 2, "height": "3"})

	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldError, got %v", err)
	}
	if fe.Field != FieldHeight || fe.Command != CmdAddTextSize {
		t.Errorf("field error = %+v", fe)
	}
	if !errors.Is(err, ErrWrongType) {
		t.Errorf("expected ErrWrongType, got %v", err)
	}
}

func TestSupported(t *testing.T) {
	for _, id := range []string{
		CmdAppendText, CmdPrintRawData, CmdAddImage, CmdAddFeedLine, CmdAddLineSpace,
		CmdAddCut, CmdAddTextAlign, CmdAddTextFont, CmdAddTextSmooth, CmdAddTextSize, CmdAddTextStyle,
	} {
		if !Supported(id) {
			t.Errorf("%s should be supported", id)
		}
	}
	if Supported("addBarcode") {
		t.Error("addBarcode should not be supported")
	}
}

// pngHeaderOnly returns a PNG that declares width x height 16-bit RGBA
// pixels but carries no image data
func pngHeaderOnly(width, height uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	chunk := func(kind string, data []byte) {
		_ = binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		body := append([]byte(kind), data...)
		buf.Write(body)
		_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(body))
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], width)
	binary.BigEndian.PutUint32(ihdr[4:], height)
	ihdr[8] = 16 // bit depth
	ihdr[9] = 6  // RGBA
	chunk("IHDR", ihdr)
	chunk("IDAT", nil)
	chunk("IEND", nil)
	return buf.Bytes()
}

func TestDecodeImageChecksDeclaredSize(t *testing.T) {
	if _, err := DecodeImage(base64.StdEncoding.EncodeToString(pngHeaderOnly(60000, 60000))); !errors.Is(err, ErrImageDecode) {
		t.Fatalf("oversized image: err = %v, want ErrImageDecode", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 576, 400))); err != nil {
		t.Fatal(err)
	}
	img, err := DecodeImage(base64.StdEncoding.EncodeToString(buf.Bytes()))
	if err != nil {
		t.Fatalf("receipt-sized image: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 576 || b.Dy() != 400 {
		t.Errorf("bounds = %v", b)
	}
}
