package discovery

import "github.com/hw584/networkmodule/internal/netstack"

// A discovery document is synthesized from an ordered list of segments:
// literal JSON text interleaved with device-specific substitutions. The same
// list drives both the size prediction and the write pass, so the two cannot
// drift apart.

type field int

const (
	fieldNone field = iota
	fieldMAC
	fieldID
	fieldName // device name, the only value counted separately per kind
	fieldRevision
)

type segment struct {
	lit string
	sub field
}

func lit(s string) segment { return segment{lit: s} }
func sub(f field) segment  { return segment{sub: f} }

// docValues holds the substitution strings for one document.
type docValues struct {
	mac        string
	id         string
	deviceName string
	revision   string
}

func (v *docValues) get(f field) string {
	switch f {
	case fieldMAC:
		return v.mac
	case fieldID:
		return v.id
	case fieldName:
		return v.deviceName
	case fieldRevision:
		return v.revision
	}
	return ""
}

// Per-kind vocabulary. suffix goes into uniq_id, label into the entity name,
// topicSeg into stat_t (and cmd_t for outputs).
func kindVocab(k Kind) (suffix, label, topicSeg string) {
	switch k {
	case KindOutput:
		return "_output_", "output ", "output/"
	case KindInput:
		return "_input_", "input ", "input/"
	case KindTemperature:
		return "_temp_", "temp ", "temp/"
	case KindPressure:
		return "_pres_", "pres ", "pres/"
	case KindHumidity:
		return "_hum_", "hum ", "hum/"
	}
	return "", "", ""
}

func buildTemplate(k Kind) []segment {
	suffix, label, topicSeg := kindVocab(k)

	segs := []segment{
		lit(`{"uniq_id":"`), sub(fieldMAC), lit(suffix), sub(fieldID),
		lit(`","name":"`), lit(label), sub(fieldID),
		lit(`","~":"NetworkModule/`), sub(fieldName),
		lit(`","avty_t":"~/availability","stat_t":"~/`), lit(topicSeg), sub(fieldID),
		lit(`",`),
	}

	switch k {
	case KindOutput:
		segs = append(segs, lit(`"cmd_t":"~/output/`), sub(fieldID), lit(`/set",`))
	case KindTemperature:
		segs = append(segs, lit(`"unit_of_meas":"°C","dev_cla":"temperature",`))
	case KindPressure:
		segs = append(segs, lit(`"unit_of_meas":"hPa","dev_cla":"pressure",`))
	case KindHumidity:
		segs = append(segs, lit(`"unit_of_meas":"%","dev_cla":"humidity",`))
	}
	if k.sensor() {
		segs = append(segs, lit(`"stat_cla":"measurement",`))
	}

	return append(segs,
		lit(`"dev":{"ids":["NetworkModule_`), sub(fieldMAC),
		lit(`"],"mdl":"HW-584","mf":"NetworkModule","name":"`), sub(fieldName),
		lit(`","sw":"`), sub(fieldRevision), lit(`"}}`),
	)
}

var templates = map[Kind][]segment{
	KindOutput:      buildTemplate(KindOutput),
	KindInput:       buildTemplate(KindInput),
	KindTemperature: buildTemplate(KindTemperature),
	KindPressure:    buildTemplate(KindPressure),
	KindHumidity:    buildTemplate(KindHumidity),
}

// documentSize predicts the exact byte length writeDocument will produce for
// the same template and values. The remaining-length field precedes the data
// it describes, so this must be computed before any document byte is written.
func documentSize(segs []segment, v *docValues) int {
	n := 0
	for _, s := range segs {
		if s.sub == fieldNone {
			n += len(s.lit)
		} else {
			n += len(v.get(s.sub))
		}
	}
	return n
}

// writeDocument appends the document to cur in one forward pass.
func writeDocument(cur *netstack.BufferCursor, segs []segment, v *docValues) {
	for _, s := range segs {
		if s.sub == fieldNone {
			cur.WriteString(s.lit)
		} else {
			cur.WriteString(v.get(s.sub))
		}
	}
}
