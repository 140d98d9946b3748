package telemetry

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

var csvHeader = []string{
	"id", "run_id", "time", "phase", "task", "domain", "purpose", "concept", "concept_id",
	"condition", "block", "block_trial", "total_trial", "input", "output", "response",
	"accuracy", "rt_ms",
}

// WriteCSV writes records as a trial table with a header row.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.ID.String(), r.RunID.String(), r.Time.UTC().Format(time.RFC3339Nano),
			r.Phase, r.Task, r.Domain, r.Purpose, r.Concept, r.ConceptID,
			strconv.Itoa(r.Condition), strconv.Itoa(r.Block), strconv.Itoa(r.BlockTrial),
			strconv.Itoa(r.TotalTrial), r.Input, r.Output, r.Response,
			strconv.Itoa(r.Accuracy), strconv.FormatInt(r.RT.Milliseconds(), 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
