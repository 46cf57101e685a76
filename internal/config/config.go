package config

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// Broker modes. Home Assistant brokers get the auto-discovery transform on
// the outbound path; Domoticz brokers get plain pass-through.
const (
	ModeHomeAssistant = "homeassistant"
	ModeDomoticz      = "domoticz"
)

const maxPins = 16

type Config struct {
	Broker struct {
		// Address is the broker TCP address in the form "host:port".
		// ":1883" is appended when no port is given.
		Address string `json:"address"`

		// WS optionally specifies a WebSocket URL (ws:// or wss://) to
		// reach the broker over WebSocket instead of plain TCP.
		WS string `json:"ws"`

		// Mode selects the outbound transform: "homeassistant" (default)
		// or "domoticz".
		Mode string `json:"mode"`

		// KeepAlive in seconds. Default 60.
		KeepAlive uint16 `json:"keep_alive"`
	} `json:"broker"`

	Device struct {
		// Name overrides the stored device name when set. 1-19 printable
		// characters; it is embedded verbatim in discovery documents.
		Name string `json:"name"`

		// MAC overrides the autodetected interface MAC, 12 hex characters.
		MAC string `json:"mac"`

		// Outputs and Inputs are the number of relay outputs and sense
		// inputs to announce, numbered from 01.
		Outputs int `json:"outputs"`
		Inputs  int `json:"inputs"`

		// Sensor ids to announce, up to 12 characters each.
		Sensors struct {
			Temperature []string `json:"temperature"`
			Pressure    []string `json:"pressure"`
			Humidity    []string `json:"humidity"`
		} `json:"sensors"`
	} `json:"device"`

	// Store is the directory for the persisted settings database.
	Store struct {
		Dir string `json:"dir"`
	} `json:"store"`

	// Log configures optional log output file as well as the log level setting.
	Log struct {
		File  string `json:"file"`
		Level string `json:"level"`
	} `json:"log"`
}

func (c *Config) LoadFromFile(fPath string) error {
	f, err := os.Open(fPath)
	if err != nil {
		return errors.New("error opening config file: " + err.Error())
	}

	defer f.Close()

	if err = json.NewDecoder(f).Decode(&c); err != nil {
		return errors.New("error reading config file: " + err.Error())
	}

	return c.Validate()
}

func (c *Config) Validate() error {
	if c.Broker.Address == "" && c.Broker.WS == "" {
		return errors.New("no broker address configured")
	}

	if c.Broker.Address != "" && !strings.Contains(c.Broker.Address, ":") {
		c.Broker.Address += ":1883" // if just ip/host specified
	}

	if c.Broker.WS != "" && !strings.HasPrefix(c.Broker.WS, "ws://") && !strings.HasPrefix(c.Broker.WS, "wss://") {
		return errors.New("broker ws must be a ws:// or wss:// URL")
	}

	switch c.Broker.Mode {
	case "":
		c.Broker.Mode = ModeHomeAssistant
	case ModeHomeAssistant, ModeDomoticz:
	default:
		return errors.New("unknown broker mode: " + c.Broker.Mode)
	}

	if c.Broker.KeepAlive == 0 {
		c.Broker.KeepAlive = 60
	}

	if c.Device.Outputs < 0 || c.Device.Outputs > maxPins {
		return errors.New("outputs must be 0-16")
	}
	if c.Device.Inputs < 0 || c.Device.Inputs > maxPins {
		return errors.New("inputs must be 0-16")
	}

	if c.Device.MAC != "" {
		if len(c.Device.MAC) != 12 || !isHex(c.Device.MAC) {
			return errors.New("device mac must be 12 hex characters")
		}
		c.Device.MAC = strings.ToLower(c.Device.MAC)
	}

	ids := append([]string{}, c.Device.Sensors.Temperature...)
	ids = append(ids, c.Device.Sensors.Pressure...)
	ids = append(ids, c.Device.Sensors.Humidity...)
	for _, id := range ids {
		if err := validateSensorID(id); err != nil {
			return err
		}
	}

	if c.Store.Dir == "" {
		c.Store.Dir = "settings"
	}

	return nil
}

// Sensor ids go into placeholder markers and topic names: 1-12 printable
// characters, no '%', '/', '#' or '+'.
func validateSensorID(id string) error {
	if len(id) == 0 || len(id) > 12 {
		return errors.New("sensor id must be 1-12 characters: " + id)
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c <= 0x20 || c > 0x7E || c == '%' || c == '/' || c == '#' || c == '+' {
			return errors.New("sensor id contains invalid character: " + id)
		}
	}
	return nil
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
