package discovery

import (
	"testing"

	"github.com/hw584/networkmodule/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPublish assembles a QoS 0 PUBLISH frame the way the client layer does.
func buildPublish(topic string, payload []byte, retain bool) []byte {
	frame := []byte{model.PUBLISH}
	if retain {
		frame[0] |= model.PublishRetain
	}
	frame = model.VariableLengthEncode(frame, 2+len(topic)+len(payload))
	frame = append(frame, byte(len(topic)>>8), byte(len(topic)))
	frame = append(frame, topic...)
	return append(frame, payload...)
}

func TestClassifyOutputMarker(t *testing.T) {
	t.Parallel()

	frame := buildPublish("home/topic", []byte("%O05"), true)
	fi, ok := classify(frame)
	require.True(t, ok)
	assert.Equal(t, KindOutput, fi.kind)
	assert.Equal(t, "05", string(fi.id))
	assert.Equal(t, 10, fi.vhLen)
	assert.Equal(t, 16, fi.oldRemaining)
	assert.Equal(t, 4, fi.payloadLen)
}

func TestClassifySensorMarkers(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		marker string
		kind   Kind
		id     string
	}{
		{"%T28FF4B2A0416", KindTemperature, "28FF4B2A0416"},
		{"%PBME280-101b6", KindPressure, "BME280-101b6"},
		{"%HBME280-201b6", KindHumidity, "BME280-201b6"},
		{"%T28FF4B2A", KindTemperature, "28FF4B2A"}, // short id
	} {
		fi, ok := classify(buildPublish("t", []byte(tc.marker), false))
		require.True(t, ok, tc.marker)
		assert.Equal(t, tc.kind, fi.kind, tc.marker)
		assert.Equal(t, tc.id, string(fi.id), tc.marker)
		assert.Equal(t, len(tc.marker), fi.payloadLen, tc.marker)
	}
}

func TestClassifyIneligible(t *testing.T) {
	t.Parallel()

	cases := map[string][]byte{
		"not publish":      {model.SUBSCRIBE | 2, 5, 0, 1, 'a', 1},
		"multi-byte rl":    {model.PUBLISH, 0x80, 0x02, 0, 1, 'a'},
		"no payload":       buildPublish("home/topic", nil, false),
		"no marker":        buildPublish("home/topic", []byte("22.5"), false),
		"unknown kind":     buildPublish("home/topic", []byte("%X05"), false),
		"pin marker short": buildPublish("home/topic", []byte("%O5"), false),
		"empty sensor id":  buildPublish("home/topic", []byte("%T"), false),
		"too short":        {model.PUBLISH, 2},
	}
	for name, frame := range cases {
		_, ok := classify(frame)
		assert.False(t, ok, name)
	}
}

func TestClassifyReadsOnly(t *testing.T) {
	t.Parallel()

	frame := buildPublish("home/topic", []byte("%I07"), true)
	orig := append([]byte(nil), frame...)
	classify(frame)
	assert.Equal(t, orig, frame)
}
