// Package discovery implements the outbound PUBLISH transform that expands
// in-band Home Assistant auto-discovery placeholders into full discovery
// documents, directly inside the shared transmit buffer.
//
// The MQTT client layer cannot stage a whole discovery document, so it
// publishes a short placeholder payload instead: '%' followed by a kind
// character and an identifier. This package recognizes those frames on their
// way to the wire, re-derives the remaining-length field, and synthesizes the
// final JSON payload in a single forward pass. Everything else is forwarded
// verbatim.
package discovery

// Kind identifies which discovery document a placeholder requests. The value
// is the marker's second character.
type Kind byte

const (
	KindOutput      Kind = 'O'
	KindInput       Kind = 'I'
	KindTemperature Kind = 'T'
	KindPressure    Kind = 'P'
	KindHumidity    Kind = 'H'
)

func (k Kind) valid() bool {
	switch k {
	case KindOutput, KindInput, KindTemperature, KindPressure, KindHumidity:
		return true
	}
	return false
}

// sensor reports whether the kind carries a sensor id (up to 12 bytes)
// rather than a 2-digit pin number.
func (k Kind) sensor() bool {
	return k == KindTemperature || k == KindPressure || k == KindHumidity
}

func (k Kind) String() string {
	switch k {
	case KindOutput:
		return "output"
	case KindInput:
		return "input"
	case KindTemperature:
		return "temperature"
	case KindPressure:
		return "pressure"
	case KindHumidity:
		return "humidity"
	}
	return "unknown"
}
