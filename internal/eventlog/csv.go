package eventlog

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"wifilayer/internal/model"
)

// WriteCSV writes notices to CSV with a fixed column order.
func WriteCSV(w io.Writer, items []model.LogNotice) error {
	writer := csv.NewWriter(w)

	header := []string{"id", "timestamp", "type", "message"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, n := range items {
		record := []string{
			strconv.FormatUint(n.ID, 10),
			n.Timestamp.UTC().Format(time.RFC3339Nano),
			string(n.Severity),
			n.Message,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
