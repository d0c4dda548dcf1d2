package bench

import (
	"strconv"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Metrics collects capture latencies for a bench run. The bench loop is
// strictly sequential, so Metrics is not safe for concurrent use.
type Metrics struct {
	total     int64
	successes int64
	errors    int64

	// Latency histogram (in microseconds for precision)
	histogram *hdrhistogram.Histogram

	startTime time.Time
	endTime   time.Time
}

// NewMetrics creates a new Metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		// Histogram: 1us to 60s range, 3 significant digits
		histogram: hdrhistogram.New(1, 60_000_000, 3),
	}
}

// Start marks the beginning of the measured window
func (m *Metrics) Start() {
	m.startTime = time.Now()
}

// Stop marks the end of the measured window
func (m *Metrics) Stop() {
	m.endTime = time.Now()
}

// Record records one capture outcome
func (m *Metrics) Record(duration time.Duration, ok bool) {
	m.total++
	if ok {
		m.successes++
	} else {
		m.errors++
	}

	// Record latency in microseconds
	latencyUs := duration.Microseconds()
	if latencyUs < 1 {
		latencyUs = 1
	}
	if latencyUs > 60_000_000 {
		latencyUs = 60_000_000
	}
	_ = m.histogram.RecordValue(latencyUs)
}

// Summary is the final bench result
type Summary struct {
	Duration time.Duration
	Total    int64
	Success  int64
	Errors   int64

	// Calculated rates
	CPS         float64 // captures per second
	SuccessRate float64
	ErrorRate   float64

	// Latency percentiles
	P50    time.Duration
	P95    time.Duration
	P99    time.Duration
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	StdDev time.Duration
}

// GetSummary returns the metrics summary
func (m *Metrics) GetSummary() *Summary {
	duration := m.endTime.Sub(m.startTime)
	if m.endTime.IsZero() {
		duration = time.Since(m.startTime)
	}

	cps := float64(0)
	if duration.Seconds() > 0 {
		cps = float64(m.total) / duration.Seconds()
	}

	successRate := float64(0)
	errorRate := float64(0)
	if m.total > 0 {
		successRate = float64(m.successes) / float64(m.total)
		errorRate = float64(m.errors) / float64(m.total)
	}

	return &Summary{
		Duration:    duration,
		Total:       m.total,
		Success:     m.successes,
		Errors:      m.errors,
		CPS:         cps,
		SuccessRate: successRate,
		ErrorRate:   errorRate,
		P50:         time.Duration(m.histogram.ValueAtQuantile(50)) * time.Microsecond,
		P95:         time.Duration(m.histogram.ValueAtQuantile(95)) * time.Microsecond,
		P99:         time.Duration(m.histogram.ValueAtQuantile(99)) * time.Microsecond,
		Min:         time.Duration(m.histogram.Min()) * time.Microsecond,
		Max:         time.Duration(m.histogram.Max()) * time.Microsecond,
		Mean:        time.Duration(m.histogram.Mean()) * time.Microsecond,
		StdDev:      time.Duration(m.histogram.StdDev()) * time.Microsecond,
	}
}

// Thresholds are pass/fail budgets evaluated against a bench summary
type Thresholds struct {
	P50       time.Duration
	P95       time.Duration
	P99       time.Duration
	Max       time.Duration
	ErrorRate float64
	MinCPS    float64
}

// ThresholdResult is the outcome of one threshold check
type ThresholdResult struct {
	Name     string
	Passed   bool
	Expected string
	Actual   string
}

// Evaluate checks the thresholds against the summary
func (t Thresholds) Evaluate(summary *Summary) []ThresholdResult {
	var results []ThresholdResult

	if t.P50 > 0 {
		results = append(results, ThresholdResult{
			Name:     "p50",
			Passed:   summary.P50 <= t.P50,
			Expected: "< " + t.P50.String(),
			Actual:   summary.P50.String(),
		})
	}

	if t.P95 > 0 {
		results = append(results, ThresholdResult{
			Name:     "p95",
			Passed:   summary.P95 <= t.P95,
			Expected: "< " + t.P95.String(),
			Actual:   summary.P95.String(),
		})
	}

	if t.P99 > 0 {
		results = append(results, ThresholdResult{
			Name:     "p99",
			Passed:   summary.P99 <= t.P99,
			Expected: "< " + t.P99.String(),
			Actual:   summary.P99.String(),
		})
	}

	if t.Max > 0 {
		results = append(results, ThresholdResult{
			Name:     "max latency",
			Passed:   summary.Max <= t.Max,
			Expected: "< " + t.Max.String(),
			Actual:   summary.Max.String(),
		})
	}

	if t.ErrorRate > 0 {
		results = append(results, ThresholdResult{
			Name:     "error rate",
			Passed:   summary.ErrorRate <= t.ErrorRate,
			Expected: formatPercent(t.ErrorRate),
			Actual:   formatPercent(summary.ErrorRate),
		})
	}

	if t.MinCPS > 0 {
		results = append(results, ThresholdResult{
			Name:     "min capture rate",
			Passed:   summary.CPS >= t.MinCPS,
			Expected: "> " + formatFloat(t.MinCPS),
			Actual:   formatFloat(summary.CPS),
		})
	}

	return results
}

func formatPercent(f float64) string {
	return formatFloat(f*100) + "%"
}

func formatFloat(f float64) string {
	if f == float64(int(f)) {
		return strconv.Itoa(int(f))
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
