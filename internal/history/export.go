package history

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
)

// TimestampFormat is ISO-8601 with microsecond precision.
const TimestampFormat = "2006-01-02T15:04:05.000000Z07:00"

var csvHeader = []string{"timestamp", "gesture", "distance"}

// WriteCSV writes entries to w as CSV with a header row, one row per entry in
// the given order.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return goerr.Wrap(err, "failed to write CSV header")
	}
	for i, e := range entries {
		row := []string{
			e.Timestamp.Format(TimestampFormat),
			e.Gesture.String(),
			strconv.FormatFloat(e.Distance, 'f', 1, 64),
		}
		if err := cw.Write(row); err != nil {
			return goerr.Wrap(err, "failed to write CSV row", goerr.V("index", i))
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return goerr.Wrap(err, "failed to flush CSV")
	}
	return nil
}

// WriteCSV writes a snapshot of the log to w, oldest entry first.
func (r *Recorder) WriteCSV(w io.Writer) error {
	return WriteCSV(w, r.Entries())
}

// Export returns the log as CSV text, oldest entry first.
func (r *Recorder) Export() string {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer cannot fail.
	_ = r.WriteCSV(&buf)
	return buf.String()
}
