// Package export serializes a completed event record sequence into the two
// log representations consumed by process-mining tools: a flat CSV and a
// grouped XES document. Both are pure projections of the same sequence, so
// regrouping the CSV by possession always reconstructs the XES traces.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/matchlog/internal/domain/model"
	"github.com/okian/matchlog/pkg/metrics"
)

// Columns is the flat export column order. Both exporters and the tests
// treat this as the single definition.
var Columns = []string{
	"possession_id", "timestamp", "team", "player_id",
	"action", "zone", "pressure", "team_status", "outcome", "xg_change",
}

// Trace is one possession episode in the grouped export.
type Trace struct {
	ID     string
	Team   model.Team
	Start  time.Time
	Events []model.EventRecord
}

// validate rejects records that cannot be serialized.
func validate(records []model.EventRecord) error {
	for i, rec := range records {
		if rec.PossessionID == "" {
			return fmt.Errorf("record %d: %w: possession_id", i, ErrMissingField)
		}
		if rec.Timestamp.IsZero() {
			return fmt.Errorf("record %d: %w: timestamp", i, ErrMissingField)
		}
		if rec.Action == "" {
			return fmt.Errorf("record %d: %w: action", i, ErrMissingField)
		}
	}
	return nil
}

// GroupTraces partitions the record sequence into traces, one per distinct
// possession ID, in first-appearance order. Events keep their log order.
func GroupTraces(records []model.EventRecord) ([]Trace, error) {
	if err := validate(records); err != nil {
		return nil, err
	}

	var order []string
	byID := make(map[string]*Trace)
	for _, rec := range records {
		tr, ok := byID[rec.PossessionID]
		if !ok {
			tr = &Trace{
				ID:    rec.PossessionID,
				Team:  rec.Team,
				Start: rec.Timestamp,
			}
			byID[rec.PossessionID] = tr
			order = append(order, rec.PossessionID)
		}
		tr.Events = append(tr.Events, rec)
	}

	traces := make([]Trace, len(order))
	for i, id := range order {
		traces[i] = *byID[id]
	}
	return traces, nil
}

// Export produces both representations from one record sequence.
func Export(records []model.EventRecord) (csvData, xesData []byte, err error) {
	csvData, err = MarshalCSV(records)
	if err != nil {
		metrics.RecordExportError()
		return nil, nil, fmt.Errorf("csv export: %w", err)
	}
	xesData, err = MarshalXES(records)
	if err != nil {
		metrics.RecordExportError()
		return nil, nil, fmt.Errorf("xes export: %w", err)
	}
	return csvData, xesData, nil
}

// matchKey derives the "M<id>" prefix shared by every possession ID.
func matchKey(records []model.EventRecord) string {
	if len(records) == 0 {
		return ""
	}
	id := records[0].PossessionID
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
