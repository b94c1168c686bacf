package eventlog

import (
	"time"

	"wifilayer/internal/model"
)

// Summary counts notices per severity.
type Summary struct {
	Count    int
	From     time.Time
	To       time.Time
	Info     int
	Warnings int
	Errors   int
	Success  int
}

// Summarize computes a Summary over items.
func Summarize(items []model.LogNotice) Summary {
	if len(items) == 0 {
		return Summary{}
	}

	s := Summary{Count: len(items), From: items[0].Timestamp, To: items[0].Timestamp}
	for _, n := range items {
		switch n.Severity {
		case model.SeverityInfo:
			s.Info++
		case model.SeverityWarning:
			s.Warnings++
		case model.SeverityError:
			s.Errors++
		case model.SeveritySuccess:
			s.Success++
		}
		if n.Timestamp.Before(s.From) {
			s.From = n.Timestamp
		}
		if n.Timestamp.After(s.To) {
			s.To = n.Timestamp
		}
	}
	return s
}
