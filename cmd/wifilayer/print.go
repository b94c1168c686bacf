package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"wifilayer/internal/eventlog"
	"wifilayer/internal/model"
	"wifilayer/internal/session"
)

var tierColors = map[model.Color]*color.Color{
	model.ColorGreen:  color.New(color.FgGreen, color.Bold),
	model.ColorOrange: color.New(color.FgYellow, color.Bold),
	model.ColorRed:    color.New(color.FgRed, color.Bold),
	model.ColorGray:   color.New(color.FgHiBlack, color.Bold),
}

var severityColors = map[model.Severity]*color.Color{
	model.SeverityInfo:    color.New(color.FgCyan),
	model.SeverityWarning: color.New(color.FgYellow),
	model.SeverityError:   color.New(color.FgRed),
	model.SeveritySuccess: color.New(color.FgGreen),
}

func printAssessment(w io.Writer, a model.RiskAssessment) {
	c, ok := tierColors[a.Color]
	if !ok {
		c = tierColors[model.ColorGray]
	}
	fmt.Fprintf(w, "Risk: %s\n", c.Sprint(a.Tier))
	fmt.Fprintf(w, "  %s\n", a.Message)
}

func printStatus(w io.Writer, st session.Status) {
	fmt.Fprintln(w)
	if obs := st.Observation; obs != nil {
		fmt.Fprintf(w, "SSID:       %s\n", obs.SSID)
		fmt.Fprintf(w, "BSSID:      %s\n", obs.BSSID)
		fmt.Fprintf(w, "Encryption: %s\n", obs.AuthScheme)
		if obs.Signal != nil {
			fmt.Fprintf(w, "Signal:     %d%%\n", *obs.Signal)
		}
	} else {
		fmt.Fprintln(w, "Not connected")
	}
	if exp := st.Exposure; exp != nil {
		fmt.Fprintf(w, "Public:     %s (NAT: %s)\n", exp.PublicAddr, exp.NATType)
	}
	printAssessment(w, st.Assessment)
}

func printSummary(w io.Writer, s eventlog.Summary) {
	if s.Count == 0 {
		fmt.Fprintln(w, "No notices")
		return
	}
	fmt.Fprintf(w, "%d notices (%s to %s): %d info, %d warning, %d error, %d success\n",
		s.Count, s.From.Local().Format("15:04:05"), s.To.Local().Format("15:04:05"),
		s.Info, s.Warnings, s.Errors, s.Success)
}

func printNotices(w io.Writer, notices []model.LogNotice) {
	for _, n := range notices {
		printNotice(w, n)
	}
}

func printNotice(w io.Writer, n model.LogNotice) {
	c, ok := severityColors[n.Severity]
	if !ok {
		c = severityColors[model.SeverityInfo]
	}
	ts := ""
	if !n.Timestamp.IsZero() {
		ts = n.Timestamp.Local().Format("15:04:05") + " "
	}
	fmt.Fprintf(w, "%s%s %s\n", ts, c.Sprintf("[%-7s]", n.Severity), n.Message)
}

// echoNotices prints notices as they are appended until the returned stop
// function is called. stop waits for buffered notices to be printed.
func echoNotices(w io.Writer, l *eventlog.Log) func() {
	ch, cancel := l.Subscribe(256)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for n := range ch {
			printNotice(w, n)
		}
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}
