package inspector

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"

	"firestige.xyz/nodo/pkg/codelet"
)

// PrettyPrint renders the final statistics of a report as a console table,
// slowest steppers first.
func PrettyPrint(w io.Writer, report *Report) {
	entries := report.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Statistics.At(codelet.Step).Duration.Total >
			entries[j].Statistics.At(codelet.Step).Duration.Total
	})

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{
		"Name", "Type",
		"Step Skipped", "Step Count", "Step (min-avg-max) [ms]", "Step Total [s]",
		"Period (min-avg-max) [ms]",
		"Start Count", "Start [ms]",
	})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)

	for _, entry := range entries {
		step := entry.Statistics.At(codelet.Step)
		start := entry.Statistics.At(codelet.Start)

		table.Append([]string{
			cutMiddle(entry.Name, 24),
			cutMiddle(entry.TypeName, 32),
			fmt.Sprintf("%d", step.SkippedCount),
			fmt.Sprintf("%d", step.Duration.Count),
			formatMinAvgMax(step.Duration),
			fmt.Sprintf("%.2f", step.Duration.Total.Seconds()),
			formatMinAvgMax(step.Period),
			fmt.Sprintf("%d", start.Duration.Count),
			formatAvg(start.Duration),
		})
	}

	fmt.Fprintln(w)
	table.Render()
}

func formatMinAvgMax(c codelet.CountTotal) string {
	avg, ok := c.Average()
	if !ok {
		return "------"
	}
	return fmt.Sprintf("%6.2f %6.2f %6.2f", ms(c.Min), ms(avg), ms(c.Max))
}

func formatAvg(c codelet.CountTotal) string {
	avg, ok := c.Average()
	if !ok {
		return "------"
	}
	return fmt.Sprintf("%6.2f", ms(avg))
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func cutMiddle(text string, limit int) string {
	if len(text) <= limit || limit <= 6 {
		return text
	}
	return text[0:2] + ".." + text[len(text)-(limit-4):]
}
