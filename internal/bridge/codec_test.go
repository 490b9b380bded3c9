package bridge

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"epos-bridge/internal/command"
)

func TestDecodeBatch(t *testing.T) {
	payload := []byte(`{
		"request_id": "r-1",
		"commands": [
			{"id": "appendText", "value": "Hello"},
			{"id": "addFeedLine", "value": 3},
			{"id": "addTextSize", "width": 2.0, "height": 1.5},
			{"id": "printRawData", "value": {"$binary": "G0A="}},
			"garbage"
		]
	}`)

	batch, err := DecodeBatch(payload)
	if err != nil {
		t.Fatalf("DecodeBatch: %v", err)
	}
	if batch.RequestID != "r-1" {
		t.Errorf("request id = %q", batch.RequestID)
	}
	if len(batch.Commands) != 5 {
		t.Fatalf("commands = %d, want 5", len(batch.Commands))
	}

	if v := batch.Commands[1]["value"]; v != int64(3) {
		t.Errorf("integral number = %#v, want int64(3)", v)
	}
	if v := batch.Commands[2]["width"]; v != float64(2) {
		t.Errorf("2.0 = %#v, want float64(2)", v)
	}
	if v := batch.Commands[2]["height"]; v != 1.5 {
		t.Errorf("1.5 = %#v", v)
	}
	if v, ok := batch.Commands[3]["value"].([]byte); !ok || !reflect.DeepEqual(v, []byte{0x1B, 0x40}) {
		t.Errorf("binary = %#v", batch.Commands[3]["value"])
	}
	if len(batch.Commands[4]) != 0 {
		t.Errorf("non-object entry should become empty record, got %v", batch.Commands[4])
	}
}

func TestDecodeBatchErrors(t *testing.T) {
	if _, err := DecodeBatch([]byte(`{"commands": []}`)); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("empty batch err = %v", err)
	}
	if _, err := DecodeBatch([]byte(`{"commands":`)); err == nil {
		t.Error("expected error for truncated json")
	}
}

func TestNormalizeKeepsInvalidBinary(t *testing.T) {
	v := Normalize(map[string]interface{}{BinaryKey: "%%%"})
	if _, ok := v.(map[string]interface{}); !ok {
		t.Errorf("invalid base64 should stay a map, got %T", v)
	}
}

func TestBinaryRoundTripThroughTranslator(t *testing.T) {
	raw, err := json.Marshal(map[string]interface{}{
		"commands": []interface{}{
			map[string]interface{}{"id": "printRawData", "value": Binary([]byte{0x1D, 0x56, 0x00})},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	batch, err := DecodeBatch(raw)
	if err != nil {
		t.Fatalf("DecodeBatch: %v", err)
	}

	op, err := command.NewTranslator(zap.NewNop()).Interpret(batch.Commands[0])
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	rd, ok := op.(command.RawData)
	if !ok {
		t.Fatalf("operation = %T, want RawData", op)
	}
	if !reflect.DeepEqual(rd.Data, []byte{0x1D, 0x56, 0x00}) {
		t.Errorf("data = %v", rd.Data)
	}
}
