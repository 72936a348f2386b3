package notify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ignite/clinic-events-processor/internal/processor"
)

// Human-readable message bodies for the notification channel. Dollar
// amounts are formatted with two decimals here, at display time only.

// FormatStartMessage announces a new processing job.
func FormatStartMessage(jobID, filename string) string {
	return fmt.Sprintf("Processing started for job %s\nFile: %s", jobID, filename)
}

// FormatProgressMessage renders a running-counters snapshot.
func FormatProgressMessage(jobID string, m *processor.Metrics) string {
	return fmt.Sprintf(
		"Progress Update (%s)\nRows processed: %d\nErrors: %d\nRevenue so far: $%.2f\nEvent types: %d\nClinics: %d",
		jobID, m.TotalRows, m.Errors, m.Revenue, len(m.EventTypes), len(m.Clinics),
	)
}

// FormatCompletionMessage renders the final summary plus the week-by-week
// analytics breakdown (or the no-data message).
func FormatCompletionMessage(jobID string, m *processor.Metrics, a *processor.Analytics) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Processing Complete (%s)\n\n", jobID)
	b.WriteString("Summary:\n")
	fmt.Fprintf(&b, "• Total Rows: %d\n", m.TotalRows)
	fmt.Fprintf(&b, "• Errors: %d\n", m.Errors)
	fmt.Fprintf(&b, "• Total Revenue: $%.2f\n", m.Revenue)
	fmt.Fprintf(&b, "• Processing Time: %.2fs\n\n", m.Duration().Seconds())

	if !a.HasData() {
		b.WriteString(a.Message)
		b.WriteString("\n")
		return b.String()
	}

	plural := ""
	if a.TotalWeeks > 1 {
		plural = "s"
	}
	fmt.Fprintf(&b, "Weekly Analytics (%d week%s):\n\n", a.TotalWeeks, plural)

	for _, week := range a.Weeks {
		wm := week.Metrics
		fmt.Fprintf(&b, "%s:\n", week.DateRange)
		fmt.Fprintf(&b, "  Revenue: $%.2f\n", wm.Revenue)

		if len(wm.RevenueByTreatmentType) > 0 {
			b.WriteString("  Revenue by Treatment Type:\n")
			for _, entry := range sortedByAmount(wm.RevenueByTreatmentType) {
				fmt.Fprintf(&b, "    - %s: $%.2f\n", entry.name, entry.amount)
			}
		}

		fmt.Fprintf(&b, "  Appointments: %d\n", wm.Appointments)
		fmt.Fprintf(&b, "  Bookings: %d\n\n", wm.Bookings)
	}

	return b.String()
}

// FormatErrorMessage reports a fatal processing failure.
func FormatErrorMessage(jobID, filename, errMsg string) string {
	return fmt.Sprintf("Error while processing CSV file %s (job %s)\nError: %s", filename, jobID, errMsg)
}

type amountEntry struct {
	name   string
	amount float64
}

// sortedByAmount orders entries by amount descending, name ascending on
// ties so the output is deterministic.
func sortedByAmount(byType map[string]float64) []amountEntry {
	entries := make([]amountEntry, 0, len(byType))
	for name, amount := range byType {
		entries = append(entries, amountEntry{name: name, amount: amount})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].amount != entries[j].amount {
			return entries[i].amount > entries[j].amount
		}
		return entries[i].name < entries[j].name
	})
	return entries
}
