package networkmodule

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/hw584/networkmodule/internal/config"
	"github.com/hw584/networkmodule/internal/discovery"
	"github.com/hw584/networkmodule/internal/model"
	"github.com/hw584/networkmodule/internal/netstack"
	"github.com/hw584/networkmodule/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDevice(t *testing.T) *Device {
	t.Helper()

	st, err := settings.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.SetDeviceName("relay1"))

	d := &Device{
		settings: st,
		mac:      "aabbccddeeff",
		clientID: "relay1",
		tx:       netstack.NewTransmitChannel(netstack.DefaultBufferSize),
		stop:     make(chan struct{}),
	}
	d.config.Broker.Mode = config.ModeHomeAssistant
	d.config.Broker.KeepAlive = 60
	d.config.Device.Outputs = 1
	d.config.Device.Sensors.Temperature = []string{"28FF4B2A0416"}
	d.transform = discovery.NewAutoDiscovery(d.tx, d.mac, Revision, d.deviceName)
	return d
}

// readFrame reads one complete MQTT frame from conn, returning the control
// byte and the bytes after the remaining-length field.
func readFrame(t *testing.T, conn net.Conn) (byte, []byte) {
	t.Helper()

	b := make([]byte, 1)
	_, err := io.ReadFull(conn, b)
	require.NoError(t, err)
	ctl := b[0]

	rl, mul := 0, 1
	for {
		_, err = io.ReadFull(conn, b)
		require.NoError(t, err)
		rl += int(b[0]&127) * mul
		mul *= 128
		if b[0]&128 == 0 {
			break
		}
	}

	rest := make([]byte, rl)
	_, err = io.ReadFull(conn, rest)
	require.NoError(t, err)
	return ctl, rest
}

func splitPublish(t *testing.T, body []byte) (topic string, payload []byte) {
	t.Helper()
	require.GreaterOrEqual(t, len(body), 2)
	tl := int(body[0])<<8 | int(body[1])
	require.GreaterOrEqual(t, len(body), 2+tl)
	return string(body[2 : 2+tl]), body[2+tl:]
}

func TestSessionAnnounceSequence(t *testing.T) {
	d := newTestDevice(t)

	srv, cli := net.Pipe()
	defer srv.Close()

	result := make(chan error, 1)
	go func() { result <- d.session(cli) }()

	// CONNECT with availability will
	ctl, body := readFrame(t, srv)
	assert.Equal(t, byte(model.CONNECT), ctl)
	assert.Contains(t, string(body), "relay1")
	assert.Contains(t, string(body), "NetworkModule/relay1/availability")
	assert.Contains(t, string(body), "offline")

	_, err := srv.Write([]byte{model.CONNACK, 2, 0, 0})
	require.NoError(t, err)

	// output discovery, expanded in flight
	ctl, body = readFrame(t, srv)
	assert.Equal(t, byte(model.PUBLISH|model.PublishRetain), ctl)
	topic, payload := splitPublish(t, body)
	assert.Equal(t, "homeassistant/switch/aabbccddeeff/output_01/config", topic)
	assert.Contains(t, string(payload), `"uniq_id":"aabbccddeeff_output_01"`)
	assert.Contains(t, string(payload), `"name":"relay1"`)
	assert.NotContains(t, string(payload), "%O", "placeholder must not reach the wire")

	// temperature discovery
	_, body = readFrame(t, srv)
	topic, payload = splitPublish(t, body)
	assert.Equal(t, "homeassistant/sensor/aabbccddeeff/temp_28FF4B2A0416/config", topic)
	assert.Contains(t, string(payload), "_temp_28FF4B2A0416")
	assert.Contains(t, string(payload), `"dev_cla":"temperature"`)

	// availability online, announced after every entity
	_, body = readFrame(t, srv)
	topic, payload = splitPublish(t, body)
	assert.Equal(t, "NetworkModule/relay1/availability", topic)
	assert.Equal(t, "online", string(payload))

	require.NoError(t, d.Shutdown())

	ctl, _ = readFrame(t, srv)
	assert.Equal(t, byte(model.DISCONNECT), ctl)

	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end after shutdown")
	}
}

func TestSessionRefusedConnack(t *testing.T) {
	d := newTestDevice(t)

	srv, cli := net.Pipe()
	defer srv.Close()

	result := make(chan error, 1)
	go func() { result <- d.session(cli) }()

	readFrame(t, srv) // CONNECT
	_, err := srv.Write([]byte{model.CONNACK, 2, 0, 5})
	require.NoError(t, err)

	select {
	case err := <-result:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end on refused CONNACK")
	}
}

func TestDiscoveryTopic(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"homeassistant/switch/aabbccddeeff/output_05/config",
		discoveryTopic("switch", "aabbccddeeff", "output_05"))
}
