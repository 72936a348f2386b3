package processor

import "time"

// Metrics holds the running counters for one processing run. A single
// instance is owned by one pipeline invocation; observers only ever see
// copies made by Snapshot.
type Metrics struct {
	TotalRows  int64            `json:"total_rows"`
	Errors     int64            `json:"errors"`
	Revenue    float64          `json:"revenue"`
	EventTypes map[string]int64 `json:"event_types"`
	Clinics    map[string]int64 `json:"clinics"`
	StartTime  time.Time        `json:"start_time"`
	EndTime    time.Time        `json:"end_time,omitzero"`
}

func newMetrics(start time.Time) *Metrics {
	return &Metrics{
		EventTypes: make(map[string]int64),
		Clinics:    make(map[string]int64),
		StartTime:  start,
	}
}

// Snapshot returns a deep copy safe to hand to an asynchronous observer
// while the run keeps mutating the live instance.
func (m *Metrics) Snapshot() *Metrics {
	cp := *m
	cp.EventTypes = make(map[string]int64, len(m.EventTypes))
	for k, v := range m.EventTypes {
		cp.EventTypes[k] = v
	}
	cp.Clinics = make(map[string]int64, len(m.Clinics))
	for k, v := range m.Clinics {
		cp.Clinics[k] = v
	}
	return &cp
}

// Duration is the wall-clock span of the run. Only meaningful after the
// stream completed and EndTime was recorded.
func (m *Metrics) Duration() time.Duration {
	return m.EndTime.Sub(m.StartTime)
}

// WeekMetrics is one Monday-Sunday bucket of the analytics report.
// RevenuePerTreatment is derived once at finalization, not accumulated.
type WeekMetrics struct {
	Revenue                float64            `json:"revenue"`
	RevenuePerTreatment    float64            `json:"revenue_per_treatment"`
	RevenueByTreatmentType map[string]float64 `json:"revenue_by_treatment_type"`
	Appointments           int64              `json:"appointments"`
	Bookings               int64              `json:"bookings"`
	TreatmentsCompleted    int64              `json:"treatments_completed"`
}

// WeekSummary pairs a bucket with its key and display label.
type WeekSummary struct {
	Week      string       `json:"week"`
	DateRange string       `json:"date_range"`
	Metrics   *WeekMetrics `json:"metrics"`
}

// NoDataMessage is the sentinel returned when no row carried a parseable
// timestamp, so no weekly bucket ever materialized.
const NoDataMessage = "No valid data found"

// Analytics is the finalized weekly report, ascending by week key.
type Analytics struct {
	Weeks      []WeekSummary `json:"weeks,omitempty"`
	TotalWeeks int           `json:"total_weeks"`
	Message    string        `json:"message,omitempty"`
}

// HasData reports whether any weekly bucket was observed.
func (a *Analytics) HasData() bool {
	return len(a.Weeks) > 0
}
