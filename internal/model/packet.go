package model

// Control Packets
const (
	CONNECT     = 1 << 4
	CONNACK     = 2 << 4
	PUBLISH     = 3 << 4
	PUBACK      = 4 << 4
	PUBREC      = 5 << 4
	PUBREL      = 6 << 4
	PUBCOMP     = 7 << 4
	SUBSCRIBE   = 8 << 4
	SUBACK      = 9 << 4
	UNSUBSCRIBE = 10 << 4
	UNSUBACK    = 11 << 4
	PINGREQ     = 12 << 4
	PINGRESP    = 13 << 4
	DISCONNECT  = 14 << 4
)

// PUBLISH fixed header flags
const (
	PublishRetain = 0x01
	PublishQoS1   = 0x02
	PublishQoS2   = 0x04
	PublishDup    = 0x08
)

// CONNECT variable header flags
const (
	ConnectCleanSession = 0x02
	ConnectWillFlag     = 0x04
	ConnectWillRetain   = 0x20
)

// ProtocolNameLevel is the MQTT 3.1.1 protocol name field plus level byte.
var ProtocolNameLevel = []byte{0, 4, 'M', 'Q', 'T', 'T', 4}

func VariableLengthEncode(packet []byte, l int) []byte {
	for {
		eb := l % 128
		l /= 128
		if l > 0 {
			eb |= 128
		}
		packet = append(packet, byte(eb))
		if l <= 0 {
			break
		}
	}
	return packet
}

// VariableLengthDecode decodes a remaining-length field from the start of b.
// Returns the value and the number of bytes consumed. n is 0 if b does not
// hold a complete valid encoding.
func VariableLengthDecode(b []byte) (l, n int) {
	mul := 1
	for n < len(b) {
		l += int(b[n]&127) * mul
		mul *= 128
		if mul > 128*128*128*128 {
			return 0, 0
		}
		n++
		if b[n-1]&128 == 0 {
			return l, n
		}
	}
	return 0, 0
}

func LengthToNumberOfVariableLengthBytes(l int) int {
	switch {
	case l < 128:
		return 1
	case l < 16384:
		return 2
	case l < 2097152:
		return 3
	default:
		return 4
	}
}
