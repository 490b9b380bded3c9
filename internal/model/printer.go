// internal/model/printer.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ConnectionType represents how the printer is reached
type ConnectionType string

const (
	ConnectionTypeSerial ConnectionType = "SERIAL"
	ConnectionTypeUSB    ConnectionType = "USB"
	ConnectionTypeTCP    ConnectionType = "TCP"
)

// Valid reports whether the connection type is supported
func (c ConnectionType) Valid() bool {
	switch c {
	case ConnectionTypeSerial, ConnectionTypeUSB, ConnectionTypeTCP:
		return true
	}
	return false
}

// PrinterBrand represents supported printer brands
type PrinterBrand string

const (
	BrandEpson   PrinterBrand = "EPSON"
	BrandGeneric PrinterBrand = "GENERIC"
)

// JSONObject type for PostgreSQL JSONB objects
type JSONObject map[string]interface{}

func (j *JSONObject) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONB source type %T", value)
	}
	return json.Unmarshal(raw, j)
}

func (j JSONObject) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Printer is a registered receipt printer
type Printer struct {
	ID               uuid.UUID      `json:"id" db:"id"`
	PrinterID        string         `json:"printer_id" db:"printer_id"`
	Name             string         `json:"name" db:"name"`
	Brand            PrinterBrand   `json:"brand" db:"brand"`
	Model            string         `json:"model" db:"model"`
	ConnectionType   ConnectionType `json:"connection_type" db:"connection_type"`
	ConnectionConfig JSONObject     `json:"connection_config" db:"connection_config"`
	PaperWidth       int            `json:"paper_width" db:"paper_width"`
	Enabled          bool           `json:"enabled" db:"enabled"`
	LastPrintAt      *time.Time     `json:"last_print_at" db:"last_print_at"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

// Paper widths in dots for the common roll sizes
const (
	PaperWidth58mm = 384
	PaperWidth80mm = 576
)
