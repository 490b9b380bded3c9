// internal/protocol/factory.go
package protocol

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"epos-bridge/internal/model"
)

// Factory builds transports from stored printer connection configs
type Factory struct {
	defaults Defaults
	logger   *zap.Logger
}

// NewFactory creates a protocol factory
func NewFactory(defaults Defaults, logger *zap.Logger) *Factory {
	return &Factory{
		defaults: defaults,
		logger:   logger,
	}
}

// CreateProtocol creates a protocol based on connection type and configuration
func (f *Factory) CreateProtocol(connectionType model.ConnectionType, config map[string]interface{}) (PrinterProtocol, error) {
	switch connectionType {
	case model.ConnectionTypeSerial:
		return f.createSerialProtocol(config)
	case model.ConnectionTypeUSB:
		return f.createUSBProtocol(config)
	case model.ConnectionTypeTCP:
		return f.createTCPProtocol(config)
	default:
		return nil, fmt.Errorf("unsupported protocol type: %s", connectionType)
	}
}

func (f *Factory) createSerialProtocol(config map[string]interface{}) (PrinterProtocol, error) {
	serialConfig := f.defaults.Serial

	port, ok := config["port"].(string)
	if !ok || port == "" {
		return nil, fmt.Errorf("serial port is required")
	}
	serialConfig.Port = port

	if v, ok := intOption(config, "baud_rate"); ok {
		serialConfig.BaudRate = v
	}
	if v, ok := intOption(config, "data_bits"); ok {
		serialConfig.DataBits = v
	}
	if v, ok := intOption(config, "stop_bits"); ok {
		serialConfig.StopBits = v
	}
	if parity, ok := config["parity"].(string); ok {
		serialConfig.Parity = strings.ToLower(parity)
	}
	if v, ok := durationOption(config, "timeout"); ok {
		serialConfig.Timeout = v
	}

	f.logger.Debug("Creating serial protocol",
		zap.String("port", serialConfig.Port),
		zap.Int("baud_rate", serialConfig.BaudRate),
	)

	return NewSerialConnection(&serialConfig, f.logger), nil
}

func (f *Factory) createUSBProtocol(config map[string]interface{}) (PrinterProtocol, error) {
	usbConfig := &USBConfig{
		Endpoint: f.defaults.USBEndpoint,
		Timeout:  f.defaults.USBTimeout,
	}

	vendorID, ok := config["vendor_id"].(string)
	if !ok {
		return nil, fmt.Errorf("USB vendor_id is required")
	}
	usbConfig.VendorID = vendorID

	productID, ok := config["product_id"].(string)
	if !ok {
		return nil, fmt.Errorf("USB product_id is required")
	}
	usbConfig.ProductID = productID

	if v, ok := intOption(config, "endpoint"); ok {
		usbConfig.Endpoint = v
	}
	if serialNumber, ok := config["serial_number"].(string); ok {
		usbConfig.SerialNumber = serialNumber
	}
	if v, ok := durationOption(config, "timeout"); ok {
		usbConfig.Timeout = v
	}

	f.logger.Debug("Creating USB protocol",
		zap.String("vendor_id", usbConfig.VendorID),
		zap.String("product_id", usbConfig.ProductID),
	)

	return NewUSBConnection(usbConfig, f.logger), nil
}

func (f *Factory) createTCPProtocol(config map[string]interface{}) (PrinterProtocol, error) {
	tcpConfig := &TCPConfig{
		Port:         f.defaults.TCPPort,
		KeepAlive:    f.defaults.KeepAlive,
		Timeout:      f.defaults.ConnectTimeout,
		ReadTimeout:  f.defaults.ReadTimeout,
		WriteTimeout: f.defaults.WriteTimeout,
	}

	host, ok := config["host"].(string)
	if !ok || host == "" {
		return nil, fmt.Errorf("TCP host is required")
	}
	tcpConfig.Host = host

	if v, ok := intOption(config, "port"); ok {
		tcpConfig.Port = v
	}
	if keepAlive, ok := config["keep_alive"].(bool); ok {
		tcpConfig.KeepAlive = keepAlive
	}
	if v, ok := durationOption(config, "timeout"); ok {
		tcpConfig.Timeout = v
	}
	if v, ok := durationOption(config, "read_timeout"); ok {
		tcpConfig.ReadTimeout = v
	}
	if v, ok := durationOption(config, "write_timeout"); ok {
		tcpConfig.WriteTimeout = v
	}

	f.logger.Debug("Creating TCP protocol",
		zap.String("host", tcpConfig.Host),
		zap.Int("port", tcpConfig.Port),
	)

	return NewTCPConnection(tcpConfig, f.logger), nil
}

// ValidateConfig validates configuration for a specific protocol type
func ValidateConfig(connectionType model.ConnectionType, config map[string]interface{}) error {
	switch connectionType {
	case model.ConnectionTypeSerial:
		return validateSerialConfig(config)
	case model.ConnectionTypeUSB:
		return validateUSBConfig(config)
	case model.ConnectionTypeTCP:
		return validateTCPConfig(config)
	default:
		return fmt.Errorf("unsupported connection type: %s", connectionType)
	}
}

var validBaudRates = map[int]bool{
	1200: true, 2400: true, 4800: true, 9600: true,
	19200: true, 38400: true, 57600: true, 115200: true,
}

func validateSerialConfig(config map[string]interface{}) error {
	if port, ok := config["port"].(string); !ok || port == "" {
		return fmt.Errorf("serial port is required")
	}

	if _, present := config["baud_rate"]; present {
		rate, ok := intOption(config, "baud_rate")
		if !ok {
			return fmt.Errorf("invalid baud_rate type")
		}
		if !validBaudRates[rate] {
			return fmt.Errorf("invalid baud rate: %d", rate)
		}
	}

	if parity, ok := config["parity"].(string); ok {
		switch strings.ToLower(parity) {
		case "none", "odd", "even", "mark", "space":
		default:
			return fmt.Errorf("invalid parity: %s", parity)
		}
	}

	return nil
}

func validateUSBConfig(config map[string]interface{}) error {
	for _, key := range []string{"vendor_id", "product_id"} {
		id, ok := config[key].(string)
		if !ok {
			return fmt.Errorf("USB %s is required", key)
		}
		if _, err := parseHexID(id); err != nil {
			return fmt.Errorf("invalid USB %s %q: %w", key, id, err)
		}
	}
	return nil
}

func validateTCPConfig(config map[string]interface{}) error {
	if host, ok := config["host"].(string); !ok || host == "" {
		return fmt.Errorf("TCP host is required")
	}

	if _, present := config["port"]; present {
		port, ok := intOption(config, "port")
		if !ok {
			return fmt.Errorf("invalid port type")
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid port number: %d", port)
		}
	}

	return nil
}

// intOption reads a numeric option. Values arrive as float64 from JSON
// bodies and JSONB columns, as int from code.
func intOption(config map[string]interface{}, key string) (int, bool) {
	switch v := config[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}

// durationOption reads "5s" style strings or a number of milliseconds
func durationOption(config map[string]interface{}, key string) (time.Duration, bool) {
	if s, ok := config[key].(string); ok {
		d, err := time.ParseDuration(s)
		return d, err == nil
	}
	if ms, ok := intOption(config, key); ok {
		return time.Duration(ms) * time.Millisecond, true
	}
	return 0, false
}
