// internal/protocol/connection.go
package protocol

import "time"

// SerialConfig represents serial connection configuration
type SerialConfig struct {
	Port     string        `json:"port"`
	BaudRate int           `json:"baud_rate"`
	DataBits int           `json:"data_bits"`
	StopBits int           `json:"stop_bits"`
	Parity   string        `json:"parity"`
	Timeout  time.Duration `json:"timeout"`
}

// USBConfig represents USB connection configuration
type USBConfig struct {
	VendorID     string        `json:"vendor_id"`
	ProductID    string        `json:"product_id"`
	Endpoint     int           `json:"endpoint"`
	SerialNumber string        `json:"serial_number"`
	Timeout      time.Duration `json:"timeout"`
}

// TCPConfig represents TCP connection configuration
type TCPConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	KeepAlive    bool          `json:"keep_alive"`
	Timeout      time.Duration `json:"timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// Defaults holds the values applied when a printer's connection config
// leaves a setting out
type Defaults struct {
	TCPPort        int
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	KeepAlive      bool
	Serial         SerialConfig
	USBEndpoint    int
	USBTimeout     time.Duration
}

// StandardDefaults returns the stock transport settings
func StandardDefaults() Defaults {
	return Defaults{
		TCPPort:        9100,
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		KeepAlive:      true,
		Serial: SerialConfig{
			BaudRate: 9600,
			DataBits: 8,
			StopBits: 1,
			Parity:   "none",
			Timeout:  5 * time.Second,
		},
		USBEndpoint: 1,
		USBTimeout:  5 * time.Second,
	}
}
