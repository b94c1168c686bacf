package eventlog

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"wifilayer/internal/model"
)

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	items := []model.LogNotice{
		{ID: 1, Timestamp: time.Unix(1, 0).UTC(), Severity: model.SeverityInfo, Message: "hello"},
		{ID: 2, Timestamp: time.Unix(2, 0).UTC(), Severity: model.SeverityWarning, Message: "a, b"},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, items); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines=%d\n%s", len(lines), buf.String())
	}
	if lines[0] != "id,timestamp,type,message" {
		t.Fatalf("header=%q", lines[0])
	}
	if lines[2] != `2,1970-01-01T00:00:02Z,warning,"a, b"` {
		t.Fatalf("row=%q", lines[2])
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	items := []model.LogNotice{
		{Timestamp: now, Severity: model.SeverityInfo},
		{Timestamp: now.Add(-time.Second), Severity: model.SeverityWarning},
		{Timestamp: now.Add(time.Second), Severity: model.SeveritySuccess},
		{Timestamp: now, Severity: model.SeverityWarning},
	}
	s := Summarize(items)
	if s.Count != 4 || s.Info != 1 || s.Warnings != 2 || s.Success != 1 || s.Errors != 0 {
		t.Fatalf("summary=%+v", s)
	}
	if !s.From.Equal(now.Add(-time.Second)) || !s.To.Equal(now.Add(time.Second)) {
		t.Fatalf("range=%v..%v", s.From, s.To)
	}
	if got := Summarize(nil); got.Count != 0 {
		t.Fatalf("empty=%+v", got)
	}
}
