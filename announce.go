package networkmodule

import (
	"fmt"
	"net"

	"github.com/hw584/networkmodule/internal/client"
	"github.com/hw584/networkmodule/internal/config"
)

// discoveryTopic returns the Home Assistant discovery config topic for one
// entity of this device.
func discoveryTopic(component, mac, object string) string {
	return "homeassistant/" + component + "/" + mac + "/" + object + "/config"
}

// announce publishes the retained discovery placeholder for every configured
// output, input and sensor, then marks the device available. The placeholders
// are expanded into full discovery documents by the outbound transform; in
// Domoticz mode only the availability message is published.
func (d *Device) announce(conn net.Conn, availTopic string) error {
	if d.config.Broker.Mode == config.ModeHomeAssistant {
		if err := d.announceDiscovery(conn); err != nil {
			return err
		}
	}
	return d.send(conn, client.Publish(availTopic, []byte("online"), true))
}

func (d *Device) announceDiscovery(conn net.Conn) error {
	dev := &d.config.Device

	for pin := 1; pin <= dev.Outputs; pin++ {
		topic := discoveryTopic("switch", d.mac, fmt.Sprintf("output_%02d", pin))
		if err := d.send(conn, client.Publish(topic, client.OutputMarker(pin), true)); err != nil {
			return err
		}
	}

	for pin := 1; pin <= dev.Inputs; pin++ {
		topic := discoveryTopic("binary_sensor", d.mac, fmt.Sprintf("input_%02d", pin))
		if err := d.send(conn, client.Publish(topic, client.InputMarker(pin), true)); err != nil {
			return err
		}
	}

	for _, id := range dev.Sensors.Temperature {
		topic := discoveryTopic("sensor", d.mac, "temp_"+id)
		if err := d.send(conn, client.Publish(topic, client.TemperatureMarker(id), true)); err != nil {
			return err
		}
	}

	for _, id := range dev.Sensors.Pressure {
		topic := discoveryTopic("sensor", d.mac, "pres_"+id)
		if err := d.send(conn, client.Publish(topic, client.PressureMarker(id), true)); err != nil {
			return err
		}
	}

	for _, id := range dev.Sensors.Humidity {
		topic := discoveryTopic("sensor", d.mac, "hum_"+id)
		if err := d.send(conn, client.Publish(topic, client.HumidityMarker(id), true)); err != nil {
			return err
		}
	}

	return nil
}
