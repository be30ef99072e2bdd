package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/muesli/termenv"

	"github.com/millrace/flume/pkg/pipeline"
)

var statusColors = map[pipeline.Status]string{
	pipeline.StatusSucceeded: "#4ade80",
	pipeline.StatusFailed:    "#f87171",
	pipeline.StatusSkipped:   "#facc15",
}

// RenderReport prints one line per domain outcome followed by the batch
// summary. Status words are colored when the terminal supports it.
func RenderReport(w io.Writer, report *pipeline.Report) {
	p := termenv.ColorProfile()
	for _, res := range report.Results {
		status := termenv.String(string(res.Status)).Foreground(p.Color(statusColors[res.Status]))
		switch {
		case res.Err != nil:
			fmt.Fprintf(w, "  %-20s %s  [%s] %v\n", res.Domain, status, res.Kind, res.Err)
		case res.Reason != "":
			fmt.Fprintf(w, "  %-20s %s  (%s)\n", res.Domain, status, res.Reason)
		default:
			fmt.Fprintf(w, "  %-20s %s  %s\n", res.Domain, status, res.Duration.Round(time.Millisecond))
		}
	}
	fmt.Fprintf(w, "\nBatch %s: %s\n", report.Batch, report.Summary())
}
