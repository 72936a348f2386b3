package processor

import "strings"

// RequiredColumns are the logical fields every upload is expected to carry.
// Missing columns are counted as errors but do not stop the run: a file
// missing patient_id can still hold usable revenue and clinic data.
var RequiredColumns = []string{
	"event_id",
	"clinic_id",
	"patient_id",
	"event_type",
	"event_timestamp",
}

// eventRow is the typed view of one CSV record. Every field arrives as
// text; coercion happens in the accumulator, never here.
type eventRow struct {
	EventID        string
	ClinicID       string
	PatientID      string
	EventType      string
	EventTimestamp string
	RevenueAmount  string
	Channel        string
	TreatmentType  string
}

// headerIndex maps column names to their position in the CSV record.
type headerIndex map[string]int

func buildHeaderIndex(header []string) headerIndex {
	idx := make(headerIndex, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	return idx
}

// missingColumns returns the required columns absent from the header, in
// declaration order.
func (idx headerIndex) missingColumns() []string {
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

func (idx headerIndex) field(record []string, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (idx headerIndex) decode(record []string) eventRow {
	return eventRow{
		EventID:        idx.field(record, "event_id"),
		ClinicID:       idx.field(record, "clinic_id"),
		PatientID:      idx.field(record, "patient_id"),
		EventType:      idx.field(record, "event_type"),
		EventTimestamp: idx.field(record, "event_timestamp"),
		RevenueAmount:  idx.field(record, "revenue_amount"),
		Channel:        idx.field(record, "channel"),
		TreatmentType:  idx.field(record, "treatment_type"),
	}
}
