package extract

import (
	"sort"
	"strings"
)

// Kind is the Prometheus metric type a rule produces.
type Kind int

const (
	Gauge Kind = iota
	Counter
)

func (k Kind) String() string {
	switch k {
	case Counter:
		return "counter"
	default:
		return "gauge"
	}
}

// Label is one name/value pair. Labels keep the order declared by their rule.
type Label struct {
	Name  string
	Value string
}

// Sample is a single extracted series value.
type Sample struct {
	Name   string
	Help   string
	Kind   Kind
	Labels []Label
	Value  float64
}

// seriesKey identifies a sample's series independent of label order.
func (s Sample) seriesKey() string {
	var b strings.Builder
	b.WriteString(s.Name)
	for _, l := range sortedLabels(s.Labels) {
		b.WriteByte(0xff)
		b.WriteString(l.Name)
		b.WriteByte(0xfe)
		b.WriteString(l.Value)
	}
	return b.String()
}

// Snapshot is the ordered set of samples produced by one extraction run.
type Snapshot struct {
	Samples []Sample
}

// Len returns the number of samples.
func (s *Snapshot) Len() int { return len(s.Samples) }

// Find returns every sample with the given metric name, in snapshot order.
func (s *Snapshot) Find(name string) []Sample {
	var out []Sample
	for _, smp := range s.Samples {
		if smp.Name == name {
			out = append(out, smp)
		}
	}
	return out
}

func sortedLabels(in []Label) []Label {
	out := make([]Label, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
