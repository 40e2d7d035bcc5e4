package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/matchlog/internal/domain/model"
	"github.com/okian/matchlog/pkg/metrics"
)

// xesHeader carries the standard extension declarations and globals expected
// by process-mining tools (ProM, Disco, PM4Py).
const xesHeader = `<?xml version="1.0" encoding="UTF-8" ?>
<log xes.version="1.0" xes.features="nested-attributes" openxes.version="1.0RC7">
  <extension name="Lifecycle" prefix="lifecycle" uri="http://www.xes-standard.org/lifecycle.xesext"/>
  <extension name="Organizational" prefix="org" uri="http://www.xes-standard.org/org.xesext"/>
  <extension name="Time" prefix="time" uri="http://www.xes-standard.org/time.xesext"/>
  <extension name="Concept" prefix="concept" uri="http://www.xes-standard.org/concept.xesext"/>
  <global scope="trace">
    <string key="concept:name" value="UNKNOWN"/>
  </global>
  <global scope="event">
    <string key="concept:name" value="UNKNOWN"/>
    <string key="lifecycle:transition" value="complete"/>
  </global>
`

// MarshalXES renders the grouped projection: one trace per possession
// episode, events in log order. The log identity is a deterministic UUID of
// the match key so re-exports of the same log are byte-identical.
func MarshalXES(records []model.EventRecord) ([]byte, error) {
	started := time.Now()
	traces, err := GroupTraces(records)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(xesHeader)

	if key := matchKey(records); key != "" {
		logID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
		fmt.Fprintf(&buf, "  <string key=\"identity:id\" value=\"%s\"/>\n", logID)
	}

	for _, tr := range traces {
		buf.WriteString("  <trace>\n")
		writeAttr(&buf, 4, "string", "concept:name", tr.ID)
		writeAttr(&buf, 4, "string", "team", string(tr.Team))
		writeAttr(&buf, 4, "date", "start_timestamp", formatTimestamp(tr.Start))
		for _, ev := range tr.Events {
			buf.WriteString("    <event>\n")
			writeAttr(&buf, 6, "string", "concept:name", string(ev.Action))
			writeAttr(&buf, 6, "date", "time:timestamp", formatTimestamp(ev.Timestamp))
			writeAttr(&buf, 6, "string", "org:resource", fmt.Sprintf("%d", ev.PlayerID))
			writeAttr(&buf, 6, "string", "team", string(ev.Team))
			writeAttr(&buf, 6, "string", "zone", ev.Zone)
			writeAttr(&buf, 6, "int", "pressure", fmt.Sprintf("%d", ev.Pressure))
			writeAttr(&buf, 6, "string", "team_status", string(ev.TeamStatus))
			writeAttr(&buf, 6, "string", "outcome", string(ev.Outcome))
			writeAttr(&buf, 6, "float", "xg_change", formatXG(ev.XGChange))
			buf.WriteString("    </event>\n")
		}
		buf.WriteString("  </trace>\n")
	}
	buf.WriteString("</log>\n")

	metrics.ObserveExport("xes", time.Since(started).Seconds())
	return buf.Bytes(), nil
}

// writeAttr emits one XES attribute element with an escaped value.
func writeAttr(buf *bytes.Buffer, indent int, typ, key, value string) {
	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}
	fmt.Fprintf(buf, "<%s key=\"%s\" value=\"%s\"/>\n", typ, key, escape(value))
}

// escape makes a value safe inside a double-quoted XML attribute.
func escape(s string) string {
	var b bytes.Buffer
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}
