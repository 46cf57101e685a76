package discovery

import (
	"github.com/hw584/networkmodule/internal/netstack"
	log "github.com/sirupsen/logrus"
)

// OutboundTransform places one fully-formed outbound MQTT frame into the
// transmit channel. Send always returns len(frame) for the caller's buffer
// bookkeeping; the true transmitted size is handed to the network stack
// through the channel's pending length. The input frame is never modified.
//
// Which implementation runs is decided once at startup from the broker mode,
// not per call.
type OutboundTransform interface {
	Send(frame []byte) int
}

// Passthrough copies frames to the transmit channel verbatim. It is the whole
// outbound path for brokers without discovery support (Domoticz), and the
// fallback path of the auto-discovery transform.
type Passthrough struct {
	TX *netstack.TransmitChannel
}

func (p *Passthrough) Send(frame []byte) int {
	return forward(p.TX, frame)
}

func forward(tx *netstack.TransmitChannel, frame []byte) int {
	cur := tx.Cursor()
	cur.Write(frame)
	if cur.Overrun() {
		// Frame larger than the transmit buffer. The client layer's send
		// buffer is smaller than the transmit buffer, so this does not
		// happen; leave nothing pending rather than send a torn frame.
		log.WithFields(log.Fields{
			"frame_len": len(frame),
			"capacity":  tx.Capacity(),
		}).Error("outbound frame exceeds transmit buffer")
		return len(frame)
	}
	tx.SetPending(cur.Pos())
	return len(frame)
}

// AutoDiscovery expands placeholder PUBLISH frames into Home Assistant
// discovery documents on their way into the transmit channel. Ineligible
// frames are forwarded verbatim.
type AutoDiscovery struct {
	TX       *netstack.TransmitChannel
	MAC      string // 12 hex characters
	Revision string // firmware revision string
	// DeviceName is read per frame so a renamed device announces correctly
	// without rebuilding the transform.
	DeviceName func() string
}

func NewAutoDiscovery(tx *netstack.TransmitChannel, mac, revision string, deviceName func() string) *AutoDiscovery {
	return &AutoDiscovery{TX: tx, MAC: mac, Revision: revision, DeviceName: deviceName}
}

func (t *AutoDiscovery) Send(frame []byte) int {
	fi, ok := classify(frame)
	if !ok {
		return forward(t.TX, frame)
	}

	v := docValues{
		mac:        t.MAC,
		id:         string(fi.id),
		deviceName: t.DeviceName(),
		revision:   t.Revision,
	}
	segs := templates[fi.kind]

	// The size must be exact before the first byte is written: the new
	// remaining length precedes the document it describes.
	docSize := documentSize(segs, &v)
	newRemaining := fi.oldRemaining - fi.payloadLen + docSize

	encoded, err := encodeRemainingLength(newRemaining)
	if err != nil {
		log.WithFields(log.Fields{
			"kind":          fi.kind.String(),
			"new_remaining": newRemaining,
		}).Warn("discovery document does not fit the two-byte remaining-length window, passing frame through")
		return forward(t.TX, frame)
	}

	cur := t.TX.Cursor()
	cur.WriteByte(frame[0])
	cur.Write(encoded[:])
	// Variable header, including its two length bytes, copied verbatim. In
	// the source frame it starts right after the single remaining-length
	// byte; in the output it lands one byte further out.
	cur.Write(frame[2 : 2+fi.vhLen+2])
	writeDocument(cur, segs, &v)

	if cur.Overrun() {
		log.WithFields(log.Fields{
			"kind":     fi.kind.String(),
			"capacity": t.TX.Capacity(),
		}).Error("expanded discovery frame exceeds transmit buffer, passing frame through")
		return forward(t.TX, frame)
	}

	// control byte + 2 length bytes + remaining length
	t.TX.SetPending(newRemaining + 3)

	log.WithFields(log.Fields{
		"kind": fi.kind.String(),
		"id":   v.id,
		"size": newRemaining + 3,
	}).Debug("Expanded auto-discovery placeholder")

	return len(frame)
}
