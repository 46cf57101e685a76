// Package client builds the small set of outbound MQTT 3.1.1 frames the
// device emits. Frames produced here are fully formed; placeholder payloads
// are expanded later, on their way into the transmit buffer. There is no
// session state: everything goes out at QoS 0 and the broker's responses
// beyond CONNACK are not tracked.
package client

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hw584/networkmodule/internal/model"
)

// Connect builds a CONNECT frame with clean session. If willTopic is
// non-empty, willMessage is registered as a retained QoS 0 will.
func Connect(clientID string, keepAlive uint16, willTopic, willMessage string) []byte {
	flags := byte(model.ConnectCleanSession)
	remaining := len(model.ProtocolNameLevel) + 3 + 2 + len(clientID)
	if willTopic != "" {
		flags |= model.ConnectWillFlag | model.ConnectWillRetain
		remaining += 2 + len(willTopic) + 2 + len(willMessage)
	}

	frame := []byte{model.CONNECT}
	frame = model.VariableLengthEncode(frame, remaining)
	frame = append(frame, model.ProtocolNameLevel...)
	frame = append(frame, flags, byte(keepAlive>>8), byte(keepAlive))
	frame = appendString(frame, clientID)
	if willTopic != "" {
		frame = appendString(frame, willTopic)
		frame = appendString(frame, willMessage)
	}
	return frame
}

// Publish builds a QoS 0 PUBLISH frame.
func Publish(topic string, payload []byte, retain bool) []byte {
	frame := []byte{model.PUBLISH}
	if retain {
		frame[0] |= model.PublishRetain
	}
	frame = model.VariableLengthEncode(frame, 2+len(topic)+len(payload))
	frame = appendString(frame, topic)
	return append(frame, payload...)
}

func PingReq() []byte {
	return []byte{model.PINGREQ, 0}
}

func Disconnect() []byte {
	return []byte{model.DISCONNECT, 0}
}

func appendString(frame []byte, s string) []byte {
	frame = append(frame, byte(len(s)>>8), byte(len(s)))
	return append(frame, s...)
}

// CheckConnack validates the broker's CONNACK frame.
func CheckConnack(frame []byte) error {
	if len(frame) < 4 || frame[0] != model.CONNACK || frame[1] != 2 {
		return errors.New("not a CONNACK frame")
	}
	if frame[3] != 0 {
		return fmt.Errorf("connection refused by broker, return code %d", frame[3])
	}
	return nil
}

// RandomClientID generates a client id for devices without a configured name.
func RandomClientID() string {
	return "NetworkModule-" + uuid.NewString()[:8]
}

// Discovery placeholder payloads, recognized and expanded by the outbound
// transform. Pin markers are always 4 bytes, sensor markers 2 bytes plus the
// id, matching what the transform's classifier expects.

func OutputMarker(pin int) []byte {
	return []byte(fmt.Sprintf("%%O%02d", pin))
}

func InputMarker(pin int) []byte {
	return []byte(fmt.Sprintf("%%I%02d", pin))
}

func TemperatureMarker(id string) []byte {
	return append([]byte("%T"), id...)
}

func PressureMarker(id string) []byte {
	return append([]byte("%P"), id...)
}

func HumidityMarker(id string) []byte {
	return append([]byte("%H"), id...)
}
