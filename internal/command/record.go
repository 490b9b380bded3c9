// internal/command/record.go
package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Record is one loosely-typed print instruction as received from a bridge
type Record map[string]interface{}

// Field names used across records
const (
	FieldID        = "id"
	FieldValue     = "value"
	FieldWidth     = "width"
	FieldHeight    = "height"
	FieldPosX      = "posX"
	FieldPosY      = "posY"
	FieldReverse   = "reverse"
	FieldUnderline = "ul"
	FieldEmphasis  = "em"
	FieldColor     = "color"
)

var (
	ErrMissingID      = errors.New("command id missing or empty")
	ErrUnknownCommand = errors.New("command not supported")
	ErrMissingField   = errors.New("field missing")
	ErrWrongType      = errors.New("field has wrong type")
	ErrImageDecode    = errors.New("image payload could not be decoded")
	ErrUnmappedToken  = errors.New("token has no protocol constant")
)

// FieldError reports which field of which command failed extraction
type FieldError struct {
	Command string
	Field   string
	Err     error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: field %q: %v", e.Command, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ID returns the command id, or ErrMissingID when it is absent, empty or not text
func (r Record) ID() (string, error) {
	id, ok := r[FieldID].(string)
	if !ok || id == "" {
		return "", ErrMissingID
	}
	return id, nil
}

// Text extracts a text field
func (r Record) Text(field string) (string, error) {
	raw, exists := r[field]
	if !exists || raw == nil {
		return "", ErrMissingField
	}
	v, ok := raw.(string)
	if !ok {
		return "", ErrWrongType
	}
	return v, nil
}

// Bool extracts a boolean field
func (r Record) Bool(field string) (bool, error) {
	raw, exists := r[field]
	if !exists || raw == nil {
		return false, ErrMissingField
	}
	v, ok := raw.(bool)
	if !ok {
		return false, ErrWrongType
	}
	return v, nil
}

// Bytes extracts a binary field
func (r Record) Bytes(field string) ([]byte, error) {
	raw, exists := r[field]
	if !exists || raw == nil {
		return nil, ErrMissingField
	}
	v, ok := raw.([]byte)
	if !ok {
		return nil, ErrWrongType
	}
	return v, nil
}

// Int extracts an integral field. Whole-valued floats are accepted since
// JSON bridges deliver every number as float64; fractions are rejected.
func (r Record) Int(field string) (int, error) {
	raw, exists := r[field]
	if !exists || raw == nil {
		return 0, ErrMissingField
	}

	switch v := raw.(type) {
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		if v < math.MinInt || v > math.MaxInt {
			return 0, ErrWrongType
		}
		return int(v), nil
	case uint:
		if v > math.MaxInt {
			return 0, ErrWrongType
		}
		return int(v), nil
	case uint8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint32:
		return int(v), nil
	case uint64:
		if v > math.MaxInt {
			return 0, ErrWrongType
		}
		return int(v), nil
	case float32:
		return wholeFloat(float64(v))
	case float64:
		return wholeFloat(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			if n < math.MinInt || n > math.MaxInt {
				return 0, ErrWrongType
			}
			return int(n), nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, ErrWrongType
		}
		return wholeFloat(f)
	default:
		return 0, ErrWrongType
	}
}

func wholeFloat(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, ErrWrongType
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, ErrWrongType
	}
	return int(f), nil
}

// fieldReader collects the first extraction failure for one command so a
// rule can read all its fields and check once.
type fieldReader struct {
	record  Record
	command string
	err     error
}

func newFieldReader(r Record, command string) *fieldReader {
	return &fieldReader{record: r, command: command}
}

func (fr *fieldReader) fail(field string, err error) {
	if fr.err == nil {
		fr.err = &FieldError{Command: fr.command, Field: field, Err: err}
	}
}

func (fr *fieldReader) text(field string) string {
	if fr.err != nil {
		return ""
	}
	v, err := fr.record.Text(field)
	if err != nil {
		fr.fail(field, err)
	}
	return v
}

func (fr *fieldReader) integer(field string) int {
	if fr.err != nil {
		return 0
	}
	v, err := fr.record.Int(field)
	if err != nil {
		fr.fail(field, err)
	}
	return v
}

func (fr *fieldReader) boolean(field string) bool {
	if fr.err != nil {
		return false
	}
	v, err := fr.record.Bool(field)
	if err != nil {
		fr.fail(field, err)
	}
	return v
}

func (fr *fieldReader) binary(field string) []byte {
	if fr.err != nil {
		return nil
	}
	v, err := fr.record.Bytes(field)
	if err != nil {
		fr.fail(field, err)
	}
	return v
}
