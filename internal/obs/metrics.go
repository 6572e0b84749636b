package obs

import (
	"sort"
	"strings"
	"sync"
)

// Label is a key/value pair attached to measurements.
type Label struct {
	Key   string
	Value string
}

// Meter is a very small interface for emitting counters/histograms.
// Implementations may no-op or bridge to a metrics system.
type Meter interface {
	Counter(name string, value float64, labels ...Label)
	Histogram(name string, value float64, labels ...Label)
}

// NopMeter is a Meter that discards all measurements.
type NopMeter struct{}

func (NopMeter) Counter(name string, value float64, labels ...Label)   {}
func (NopMeter) Histogram(name string, value float64, labels ...Label) {}

// MeterOrNop returns m, or NopMeter when m is nil.
func MeterOrNop(m Meter) Meter {
	if m == nil {
		return NopMeter{}
	}
	return m
}

// MemMeter keeps running totals in memory. Series are keyed by name plus
// sorted labels, e.g. `requests_total{method=GET,status=200}`.
// Histograms record the observation count and sum.
type MemMeter struct {
	mu       sync.Mutex
	counters map[string]float64
	hcount   map[string]int
	hsum     map[string]float64
}

func NewMemMeter() *MemMeter {
	return &MemMeter{
		counters: make(map[string]float64),
		hcount:   make(map[string]int),
		hsum:     make(map[string]float64),
	}
}

func (m *MemMeter) Counter(name string, value float64, labels ...Label) {
	k := SeriesKey(name, labels...)
	m.mu.Lock()
	m.counters[k] += value
	m.mu.Unlock()
}

func (m *MemMeter) Histogram(name string, value float64, labels ...Label) {
	k := SeriesKey(name, labels...)
	m.mu.Lock()
	m.hcount[k]++
	m.hsum[k] += value
	m.mu.Unlock()
}

// CounterValue returns the total recorded for the series.
func (m *MemMeter) CounterValue(name string, labels ...Label) float64 {
	k := SeriesKey(name, labels...)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[k]
}

// HistogramCount returns how many observations the series received.
func (m *MemMeter) HistogramCount(name string, labels ...Label) int {
	k := SeriesKey(name, labels...)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hcount[k]
}

// Snapshot returns a copy of all counter series.
func (m *MemMeter) Snapshot() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]float64, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out
}

func SeriesKey(name string, labels ...Label) string {
	if len(labels) == 0 {
		return name
	}
	ls := make([]Label, len(labels))
	copy(ls, labels)
	sort.Slice(ls, func(i, j int) bool { return ls[i].Key < ls[j].Key })
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, l := range ls {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(l.Key)
		b.WriteByte('=')
		b.WriteString(l.Value)
	}
	b.WriteByte('}')
	return b.String()
}
