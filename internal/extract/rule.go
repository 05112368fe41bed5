package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Jercik/i2pd-webconsole-exporter/internal/normalize"
)

// Rule declares how one metric is located on the console page and how its
// matched text becomes samples. Rules are plain data: adapting to a console
// layout change means editing the table, not the extractor.
type Rule struct {
	Metric string
	Help   string
	Kind   Kind

	// Section, when set, narrows the page before Pattern runs. The text of
	// its first capture group (or the whole match without groups) becomes
	// the search scope. No section match means no samples.
	Section *regexp.Regexp

	// Pattern locates the value. It must contain the named group Value and
	// every group referenced by Labels.
	Pattern *regexp.Regexp

	// Multi emits one sample per Pattern match instead of the first only.
	Multi bool

	// Value is the named capture group holding the raw value text.
	Value string

	Labels    []LabelSpec
	Normalize normalize.Func
}

// LabelSpec produces one label of every sample a rule emits.
type LabelSpec struct {
	Name string

	// Group is the named capture group supplying the value. When empty the
	// label takes Const.
	Group string
	Const string

	// Transform rewrites the captured text, e.g. normalize.ServiceName.
	Transform func(string) string
}

// ID names the rule in failure reports: the metric plus its constant labels,
// which tells apart rules that feed the same metric.
func (r Rule) ID() string {
	var consts []string
	for _, l := range r.Labels {
		if l.Group == "" {
			consts = append(consts, fmt.Sprintf("%s=%q", l.Name, l.Const))
		}
	}
	if len(consts) == 0 {
		return r.Metric
	}
	return r.Metric + "{" + strings.Join(consts, ",") + "}"
}

// Validate checks that every rule is complete and that every capture group it
// references exists. It is meant to run once at startup.
func Validate(rules []Rule) error {
	var errs []error
	for i, r := range rules {
		if err := r.validate(); err != nil {
			errs = append(errs, fmt.Errorf("rule %d (%s): %w", i, r.ID(), err))
		}
	}
	return errors.Join(errs...)
}

func (r Rule) validate() error {
	switch {
	case r.Metric == "":
		return errors.New("metric name is required")
	case r.Pattern == nil:
		return errors.New("pattern is required")
	case r.Normalize == nil:
		return errors.New("normalizer is required")
	case r.Pattern.SubexpIndex(r.Value) < 0:
		return fmt.Errorf("pattern has no capture group %q", r.Value)
	}
	seen := make(map[string]bool, len(r.Labels))
	for _, l := range r.Labels {
		if l.Name == "" {
			return errors.New("label name is required")
		}
		if seen[l.Name] {
			return fmt.Errorf("duplicate label %q", l.Name)
		}
		seen[l.Name] = true
		if l.Group != "" && r.Pattern.SubexpIndex(l.Group) < 0 {
			return fmt.Errorf("label %q: pattern has no capture group %q", l.Name, l.Group)
		}
	}
	return nil
}

// scope returns the part of page the rule's Pattern searches.
func (r Rule) scope(page string) (string, bool) {
	if r.Section == nil {
		return page, true
	}
	m := r.Section.FindStringSubmatch(page)
	if m == nil {
		return "", false
	}
	if len(m) > 1 {
		return m[1], true
	}
	return m[0], true
}

// matches returns the submatches of Pattern within the rule's scope.
func (r Rule) matches(page string) [][]string {
	text, ok := r.scope(page)
	if !ok {
		return nil
	}
	n := 1
	if r.Multi {
		n = -1
	}
	return r.Pattern.FindAllStringSubmatch(text, n)
}

// sample builds one sample from a single submatch.
func (r Rule) sample(m []string) (Sample, error) {
	raw := strings.TrimSpace(m[r.Pattern.SubexpIndex(r.Value)])
	v, err := r.Normalize(raw)
	if err != nil {
		return Sample{}, err
	}
	labels := make([]Label, 0, len(r.Labels))
	for _, spec := range r.Labels {
		val := spec.Const
		if spec.Group != "" {
			val = strings.TrimSpace(m[r.Pattern.SubexpIndex(spec.Group)])
		}
		if spec.Transform != nil {
			val = spec.Transform(val)
		}
		labels = append(labels, Label{Name: spec.Name, Value: val})
	}
	return Sample{
		Name:   r.Metric,
		Help:   r.Help,
		Kind:   r.Kind,
		Labels: labels,
		Value:  v,
	}, nil
}
