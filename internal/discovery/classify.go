package discovery

// Placeholder geometry. A pin marker is "%O05" / "%I12" (4 bytes), a sensor
// marker is "%T" / "%P" / "%H" followed by an id of up to 12 bytes.
const (
	pinMarkerLen    = 4
	maxSensorMarker = 14
)

// frameInfo describes an eligible PUBLISH-with-placeholder frame.
type frameInfo struct {
	kind         Kind
	id           []byte // pin number or sensor id, aliases the input frame
	vhLen        int    // variable header length, low byte as read from the frame
	oldRemaining int    // remaining length of the short input frame
	payloadLen   int    // placeholder payload length being replaced
}

// classify decides whether frame is an eligible PUBLISH carrying a discovery
// placeholder, and if so which kind. It never modifies the frame. Any frame
// that fails a check is simply not eligible; there is no error path.
//
// Eligibility requires the control nibble 0x3, a single-byte remaining
// length, and a payload. The payload-present check compares against the low
// variable-header-length byte only; with a single-byte remaining length the
// high byte is necessarily zero for any frame that passes.
func classify(frame []byte) (frameInfo, bool) {
	var fi frameInfo

	if len(frame) < 4 {
		return fi, false
	}
	if frame[0]&0xF0 != 0x30 {
		return fi, false // not PUBLISH
	}
	if frame[1]&0x80 != 0 {
		return fi, false // multi-byte remaining length
	}
	remaining := int(frame[1])
	vhLen := int(frame[3])
	if remaining <= vhLen+2 {
		return fi, false // no payload
	}

	payloadStart := vhLen + 4
	payloadLen := remaining - vhLen - 2
	if payloadStart+payloadLen > len(frame) {
		return fi, false // truncated frame
	}
	payload := frame[payloadStart : payloadStart+payloadLen]

	if payload[0] != '%' || len(payload) < 2 {
		return fi, false
	}
	k := Kind(payload[1])
	if !k.valid() {
		return fi, false
	}

	if k.sensor() {
		if len(payload) < 3 {
			return fi, false // empty sensor id
		}
		end := len(payload)
		if end > maxSensorMarker {
			end = maxSensorMarker
		}
		fi.id = payload[2:end]
	} else {
		if len(payload) < pinMarkerLen {
			return fi, false
		}
		fi.id = payload[2:pinMarkerLen]
	}

	fi.kind = k
	fi.vhLen = vhLen
	fi.oldRemaining = remaining
	fi.payloadLen = payloadLen
	return fi, true
}
