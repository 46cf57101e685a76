// Package networkmodule is the control logic for a small network-attached
// relay/sensor controller speaking MQTT, a port of the HW-584 NetworkModule
// firmware. The device announces its outputs, inputs and sensors to Home
// Assistant through MQTT auto-discovery: the client layer publishes short
// in-band placeholders, and the outbound transform expands them into full
// discovery documents inside the shared transmit buffer.
package networkmodule

import (
	"errors"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hw584/networkmodule/internal/client"
	"github.com/hw584/networkmodule/internal/config"
	"github.com/hw584/networkmodule/internal/discovery"
	"github.com/hw584/networkmodule/internal/netstack"
	"github.com/hw584/networkmodule/internal/settings"
	"github.com/hw584/networkmodule/internal/websocket"
	log "github.com/sirupsen/logrus"
)

// Revision is the firmware revision string embedded in discovery documents,
// in the original's "date build" format.
const Revision = "20260826 0900"

const dialTimeout = 30 * time.Second

type Device struct {
	config    config.Config
	settings  *settings.Store
	tx        *netstack.TransmitChannel
	transform discovery.OutboundTransform

	mac      string // 12 hex characters
	clientID string

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func (d *Device) LoadFromFile(fPath string) error {
	return d.config.LoadFromFile(fPath)
}

// Run connects to the configured broker and services it until Shutdown.
// Connection errors are logged and retried; the device is expected to outlive
// broker restarts.
func (d *Device) Run() error {
	if err := d.setupLog(); err != nil {
		return err
	}

	st, err := settings.Open(d.config.Store.Dir)
	if err != nil {
		return err
	}
	d.settings = st
	defer st.Close()

	if d.config.Device.Name != "" {
		if err := st.SetDeviceName(d.config.Device.Name); err != nil {
			return err
		}
	}
	name, err := st.DeviceName()
	if err != nil {
		return err
	}

	d.clientID = name
	if name == settings.DefaultDeviceName {
		d.clientID = client.RandomClientID()
	}

	d.mac = d.config.Device.MAC
	if d.mac == "" {
		if d.mac, err = interfaceMAC(); err != nil {
			return err
		}
	}

	d.tx = netstack.NewTransmitChannel(netstack.DefaultBufferSize)
	if d.config.Broker.Mode == config.ModeDomoticz {
		d.transform = &discovery.Passthrough{TX: d.tx}
	} else {
		d.transform = discovery.NewAutoDiscovery(d.tx, d.mac, Revision, d.deviceName)
	}

	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	defer close(d.done)

	log.WithFields(log.Fields{
		"device": name,
		"mac":    d.mac,
		"mode":   d.config.Broker.Mode,
	}).Info("Starting NetworkModule controller")

	for {
		conn, err := d.dial()
		if err != nil {
			log.Error("broker connection failed: ", err)
		} else if err = d.session(conn); err != nil {
			log.Error("broker session ended: ", err)
		}

		select {
		case <-d.stop:
			return nil
		case <-time.After(5 * time.Second):
		}
	}
}

func (d *Device) Shutdown() error {
	d.stopOnce.Do(func() {
		if d.stop != nil {
			close(d.stop)
		}
	})
	if d.done != nil {
		<-d.done
	}
	return nil
}

func (d *Device) setupLog() error {
	if d.config.Log.File != "" {
		f, err := os.OpenFile(d.config.Log.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		log.SetOutput(f)
	}
	if d.config.Log.Level != "" {
		switch strings.ToLower(d.config.Log.Level) {
		case "error":
			log.SetLevel(log.ErrorLevel)
		case "warn":
			log.SetLevel(log.WarnLevel)
		case "info":
			log.SetLevel(log.InfoLevel)
		case "debug":
			log.SetLevel(log.DebugLevel)
		default:
			return errors.New("unknown log level: " + d.config.Log.Level)
		}
	}
	return nil
}

// deviceName is read per outbound frame so a rename takes effect on the next
// announce without restarting the transform.
func (d *Device) deviceName() string {
	name, err := d.settings.DeviceName()
	if err != nil {
		log.Error("reading device name: ", err)
		return settings.DefaultDeviceName
	}
	return name
}

func (d *Device) dial() (net.Conn, error) {
	if d.config.Broker.WS != "" {
		return websocket.Dial(d.config.Broker.WS)
	}
	return net.DialTimeout("tcp", d.config.Broker.Address, dialTimeout)
}

// session drives one broker connection: CONNECT handshake, the announce
// sequence, then keepalive pings until stop or error. Inbound traffic beyond
// CONNACK is not interpreted; subscribe/command handling lives elsewhere.
func (d *Device) session(conn net.Conn) error {
	defer conn.Close()

	name := d.deviceName()
	availTopic := "NetworkModule/" + name + "/availability"

	connect := client.Connect(d.clientID, d.config.Broker.KeepAlive, availTopic, "offline")
	if err := d.send(conn, connect); err != nil {
		return err
	}

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	connack := make([]byte, 4)
	if _, err := io.ReadFull(conn, connack); err != nil {
		return err
	}
	if err := client.CheckConnack(connack); err != nil {
		return err
	}
	conn.SetReadDeadline(time.Time{})

	log.WithFields(log.Fields{
		"id": d.clientID,
	}).Info("Connected to MQTT broker")

	if err := d.announce(conn, availTopic); err != nil {
		return err
	}

	readErr := make(chan error, 1)
	go drain(conn, readErr)

	keepAlive := time.Duration(d.config.Broker.KeepAlive) * time.Second
	pings := time.NewTicker(keepAlive / 2)
	defer pings.Stop()

	for {
		select {
		case <-d.stop:
			d.send(conn, client.Disconnect())
			return nil
		case err := <-readErr:
			return err
		case <-pings.C:
			if err := d.send(conn, client.PingReq()); err != nil {
				return err
			}
		}
	}
}

// send is the single hand-off point to the network stack: the transform
// decides what ends up in the transmit buffer, and whatever it left pending
// goes on the wire.
func (d *Device) send(conn net.Conn, frame []byte) error {
	d.transform.Send(frame)
	return d.tx.Flush(conn)
}

// drain reads and discards broker traffic (PINGRESP, and any commands this
// build does not service) so the connection's receive side keeps moving.
func drain(conn net.Conn, errs chan<- error) {
	buf := make([]byte, 512)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			errs <- err
			return
		}
		if n > 0 {
			log.WithFields(log.Fields{
				"bytes": n,
			}).Debug("Discarding inbound broker data")
		}
	}
}
