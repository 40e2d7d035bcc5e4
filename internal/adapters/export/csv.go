package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/okian/matchlog/internal/domain/model"
	"github.com/okian/matchlog/pkg/metrics"
)

// MarshalCSV renders the flat projection: a header row, then one row per
// record in log order.
func MarshalCSV(records []model.EventRecord) ([]byte, error) {
	started := time.Now()
	if err := validate(records); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, rec := range records {
		if err := w.Write(row(rec)); err != nil {
			return nil, fmt.Errorf("write record %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	metrics.ObserveExport("csv", time.Since(started).Seconds())
	return buf.Bytes(), nil
}

// row projects one record into the fixed column order.
func row(rec model.EventRecord) []string {
	return []string{
		rec.PossessionID,
		formatTimestamp(rec.Timestamp),
		string(rec.Team),
		strconv.Itoa(rec.PlayerID),
		string(rec.Action),
		rec.Zone,
		strconv.Itoa(rec.Pressure),
		string(rec.TeamStatus),
		string(rec.Outcome),
		formatXG(rec.XGChange),
	}
}

// ParseRow is the inverse of row; the round-trip tests and the batch
// analyzer use it to rebuild records from exported rows.
func ParseRow(fields []string) (model.EventRecord, error) {
	if len(fields) != len(Columns) {
		return model.EventRecord{}, fmt.Errorf("row has %d fields, want %d", len(fields), len(Columns))
	}
	ts, err := time.Parse(time.RFC3339, fields[1])
	if err != nil {
		return model.EventRecord{}, fmt.Errorf("parse timestamp: %w", err)
	}
	playerID, err := strconv.Atoi(fields[3])
	if err != nil {
		return model.EventRecord{}, fmt.Errorf("parse player_id: %w", err)
	}
	pressure, err := strconv.Atoi(fields[6])
	if err != nil {
		return model.EventRecord{}, fmt.Errorf("parse pressure: %w", err)
	}
	xg, err := strconv.ParseFloat(fields[9], 64)
	if err != nil {
		return model.EventRecord{}, fmt.Errorf("parse xg_change: %w", err)
	}
	return model.EventRecord{
		PossessionID: fields[0],
		Timestamp:    ts,
		Team:         model.Team(fields[2]),
		PlayerID:     playerID,
		Action:       model.Action(fields[4]),
		Zone:         fields[5],
		Pressure:     pressure,
		TeamStatus:   model.TeamStatus(fields[7]),
		Outcome:      model.Outcome(fields[8]),
		XGChange:     xg,
	}, nil
}

// formatTimestamp renders simulated time as RFC3339 UTC.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// formatXG uses the shortest representation that round-trips.
func formatXG(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
