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

// MemMeter keeps counters and histogram summaries in memory. Series are
// keyed by name plus sorted labels, e.g. `requests{method="GET"}`.
type MemMeter struct {
	mu       sync.Mutex
	counters map[string]float64
	hists    map[string]HistSummary
}

// HistSummary is the running count/sum/max of one histogram series.
type HistSummary struct {
	Count int
	Sum   float64
	Max   float64
}

func NewMemMeter() *MemMeter {
	return &MemMeter{
		counters: make(map[string]float64),
		hists:    make(map[string]HistSummary),
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
	h := m.hists[k]
	h.Count++
	h.Sum += value
	if value > h.Max {
		h.Max = value
	}
	m.hists[k] = h
	m.mu.Unlock()
}

// CounterValue returns the current value of a counter series.
func (m *MemMeter) CounterValue(name string, labels ...Label) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[SeriesKey(name, labels...)]
}

// Snapshot copies every counter and histogram series.
func (m *MemMeter) Snapshot() (map[string]float64, map[string]HistSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := make(map[string]float64, len(m.counters))
	for k, v := range m.counters {
		c[k] = v
	}
	h := make(map[string]HistSummary, len(m.hists))
	for k, v := range m.hists {
		h[k] = v
	}
	return c, h
}

// SeriesKey renders name{k="v",...} with labels sorted by key.
func SeriesKey(name string, labels ...Label) string {
	if len(labels) == 0 {
		return name
	}
	ls := append([]Label(nil), labels...)
	sort.Slice(ls, func(i, j int) bool { return ls[i].Key < ls[j].Key })
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, l := range ls {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(l.Key)
		b.WriteString(`="`)
		b.WriteString(l.Value)
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String()
}
