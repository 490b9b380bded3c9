// internal/bridge/codec.go
package bridge

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"epos-bridge/internal/command"
)

// BinaryKey marks a JSON object carrying base64 bytes: {"$binary": "..."}
const BinaryKey = "$binary"

var ErrEmptyBatch = errors.New("batch contains no commands")

// Batch is the payload shared by the HTTP, WebSocket and MQTT bridges
type Batch struct {
	RequestID string           `json:"request_id,omitempty"`
	Commands  []command.Record `json:"commands"`
}

type wireBatch struct {
	RequestID string        `json:"request_id"`
	Commands  []interface{} `json:"commands"`
}

// DecodeBatch parses a JSON batch. Non-object entries are kept as empty
// records so that outcome indexes line up with the submitted commands.
func DecodeBatch(data []byte) (*Batch, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var wb wireBatch
	if err := dec.Decode(&wb); err != nil {
		return nil, fmt.Errorf("failed to decode batch: %w", err)
	}
	if len(wb.Commands) == 0 {
		return nil, ErrEmptyBatch
	}

	batch := &Batch{
		RequestID: wb.RequestID,
		Commands:  make([]command.Record, 0, len(wb.Commands)),
	}
	for _, raw := range wb.Commands {
		batch.Commands = append(batch.Commands, ToRecord(raw))
	}
	return batch, nil
}

// ToRecord normalizes one decoded JSON value into a command record
func ToRecord(raw interface{}) command.Record {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return command.Record{}
	}
	record := make(command.Record, len(obj))
	for k, v := range obj {
		record[k] = Normalize(v)
	}
	return record
}

// Normalize converts JSON-decoded values into the Go types the translator
// expects: integral numbers become int64, other numbers float64, and
// binary wrappers become []byte.
func Normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]interface{}:
		if b, ok := binaryValue(val); ok {
			return b
		}
		out := make(map[string]interface{}, len(val))
		for k, inner := range val {
			out[k] = Normalize(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, inner := range val {
			out[i] = Normalize(inner)
		}
		return out
	default:
		return v
	}
}

func binaryValue(obj map[string]interface{}) ([]byte, bool) {
	if len(obj) != 1 {
		return nil, false
	}
	encoded, ok := obj[BinaryKey].(string)
	if !ok {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Binary wraps raw bytes for transport in a JSON record
func Binary(data []byte) map[string]interface{} {
	return map[string]interface{}{BinaryKey: base64.StdEncoding.EncodeToString(data)}
}
