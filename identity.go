package networkmodule

import (
	"encoding/hex"
	"errors"
	"net"
)

// interfaceMAC returns the first usable hardware address as the device's
// 12-hex-character identity string.
func interfaceMAC() (string, error) {
	ifs, err := net.Interfaces()
	if err != nil {
		return "", err
	}

	for _, ifc := range ifs {
		if ifc.Flags&net.FlagLoopback != 0 || len(ifc.HardwareAddr) != 6 {
			continue
		}
		return hex.EncodeToString(ifc.HardwareAddr), nil
	}

	return "", errors.New("no network interface with a hardware address; set device.mac in config")
}
