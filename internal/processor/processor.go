package processor

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Streaming CSV aggregation engine. Consumes clinic event rows one at a
// time and maintains global counters plus Monday-Sunday weekly buckets,
// holding O(distinct weeks) of state regardless of row count.

const (
	// Event classification markers, matched against the upper-cased
	// event_type.
	eventTreatmentCompleted = "TREATMENT_COMPLETED"
	patternAppointment      = "APPOINTMENT"
	patternBooking          = "BOOKING"
	patternBooked           = "BOOKED"

	// unknownBucket absorbs rows with a missing event_type or clinic_id so
	// every row increments exactly one entry per counter map.
	unknownBucket = "unknown"

	// unknownTreatmentType attributes positive revenue when the row has no
	// treatment_type column value.
	unknownTreatmentType = "UNKNOWN"
)

// DefaultProgressInterval is the minimum wall-clock gap between progress
// deliveries when Options does not set one.
const DefaultProgressInterval = 10 * time.Second

// ProgressFunc receives a metrics snapshot on the progress cadence. The
// snapshot is a deep copy; the callback must not block for long but may
// do anything with it.
type ProgressFunc func(*Metrics)

// Options tunes one processing run.
type Options struct {
	OnProgress       ProgressFunc
	ProgressInterval time.Duration
}

// Result is the two-part outcome of a completed run.
type Result struct {
	Metrics   *Metrics
	Analytics *Analytics
}

// Process consumes CSV text from r and returns the final metrics and the
// weekly analytics report. Row-level problems (bad revenue, missing
// columns) are tallied in Metrics.Errors and never abort the stream;
// malformed CSV syntax and stream I/O faults are fatal and return an
// error with no partial result.
func Process(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	interval := opts.ProgressInterval
	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	m := newMetrics(time.Now())
	buckets := make(map[string]*WeekMetrics)
	weekStarts := make(map[string]time.Time)
	lastProgress := time.Now()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		// Nothing at all, not even a header row.
		m.EndTime = time.Now()
		return &Result{Metrics: m, Analytics: assemble(buckets, weekStarts)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	idx := buildHeaderIndex(header)
	if missing := idx.missingColumns(); len(missing) > 0 {
		m.Errors += int64(len(missing))
		log.Printf("[Processor] CSV header missing required columns: %s", strings.Join(missing, ", "))
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV record: %w", err)
		}

		accumulate(m, buckets, weekStarts, idx, record)

		if opts.OnProgress != nil && time.Since(lastProgress) >= interval {
			opts.OnProgress(m.Snapshot())
			lastProgress = time.Now()
		}
	}

	m.EndTime = time.Now()
	return &Result{Metrics: m, Analytics: assemble(buckets, weekStarts)}, nil
}

// accumulate applies one CSV record to the running state. A panic from an
// unexpected row shape is converted into an error increment so a single
// bad row can never abort the stream.
func accumulate(m *Metrics, buckets map[string]*WeekMetrics, weekStarts map[string]time.Time, idx headerIndex, record []string) {
	defer func() {
		if r := recover(); r != nil {
			m.Errors++
			log.Printf("[Processor] recovered row fault: %v", r)
		}
	}()

	m.TotalRows++

	row := idx.decode(record)

	amount, revenueValid := parseRevenue(row.RevenueAmount)
	if revenueValid {
		m.Revenue += amount
	} else {
		m.Errors++
	}

	eventType := row.EventType
	if eventType == "" {
		eventType = unknownBucket
	}
	m.EventTypes[eventType]++

	clinicID := row.ClinicID
	if clinicID == "" {
		clinicID = unknownBucket
	}
	m.Clinics[clinicID]++

	// Weekly buckets only exist for rows with a parseable timestamp; the
	// row still counted toward the global totals above.
	if row.EventTimestamp == "" {
		return
	}
	ts, ok := parseTimestamp(row.EventTimestamp)
	if !ok {
		return
	}

	start, _ := weekOf(ts)
	key := weekKey(start)
	bucket, ok := buckets[key]
	if !ok {
		bucket = &WeekMetrics{RevenueByTreatmentType: make(map[string]float64)}
		buckets[key] = bucket
		weekStarts[key] = start
	}

	if revenueValid {
		bucket.Revenue += amount
		if amount > 0 {
			bucket.RevenueByTreatmentType[treatmentKey(row)] += amount
		}
	}

	upper := strings.ToUpper(row.EventType)
	if upper == eventTreatmentCompleted {
		bucket.TreatmentsCompleted++
	}
	if strings.Contains(upper, patternAppointment) {
		bucket.Appointments++
	}
	// Single OR test: a type matching both markers counts once.
	if strings.Contains(upper, patternBooking) || strings.Contains(upper, patternBooked) {
		bucket.Bookings++
	}
}

// treatmentKey picks the grouping key for positive revenue attribution:
// the treatment_type column when present, else a literal UNKNOWN marker.
func treatmentKey(row eventRow) string {
	if row.TreatmentType != "" {
		return row.TreatmentType
	}
	return unknownTreatmentType
}

// parseRevenue coerces the revenue_amount text. An absent value means
// zero; anything that does not parse fully as a finite, non-negative
// number is invalid.
func parseRevenue(s string) (float64, bool) {
	if s == "" {
		s = "0"
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

// assemble finalizes the weekly buckets into the analytics report.
// Derived fields are computed exactly once, here.
func assemble(buckets map[string]*WeekMetrics, weekStarts map[string]time.Time) *Analytics {
	if len(buckets) == 0 {
		return &Analytics{Message: NoDataMessage}
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	weeks := make([]WeekSummary, 0, len(keys))
	for _, key := range keys {
		bucket := buckets[key]
		if bucket.TreatmentsCompleted > 0 {
			bucket.RevenuePerTreatment = bucket.Revenue / float64(bucket.TreatmentsCompleted)
		}
		start, end := weekOf(weekStarts[key])
		weeks = append(weeks, WeekSummary{
			Week:      key,
			DateRange: weekDateRange(start, end),
			Metrics:   bucket,
		})
	}

	return &Analytics{Weeks: weeks, TotalWeeks: len(weeks)}
}
