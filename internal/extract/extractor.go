package extract

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrEmptyPage is returned when the page holds no text at all.
	ErrEmptyPage = errors.New("empty page")

	// ErrUndecodablePage is returned when the page is not valid UTF-8 text.
	ErrUndecodablePage = errors.New("page is not valid UTF-8 text")
)

// RuleFailure records a rule whose text matched but could not be normalized.
type RuleFailure struct {
	Rule string
	Err  error
}

func (f RuleFailure) Error() string {
	return fmt.Sprintf("rule %s: %v", f.Rule, f.Err)
}

func (f RuleFailure) Unwrap() error { return f.Err }

// Result is the outcome of applying a rule table to one page.
// Failures lists rules that contributed no sample because a matched value was
// malformed. Rules that simply found nothing are not failures.
type Result struct {
	Snapshot Snapshot
	Failures []RuleFailure
}

// Extract applies every rule to page independently. A failing rule never
// stops the others, so a partially changed console layout still yields a
// partial snapshot. Only an empty or non-UTF-8 page is an error.
//
// A rule producing a series already emitted earlier for the same metric is
// skipped; exposition text must not repeat a series.
func Extract(page string, rules []Rule) (*Result, error) {
	if strings.TrimSpace(page) == "" {
		return nil, ErrEmptyPage
	}
	if !utf8.ValidString(page) {
		return nil, ErrUndecodablePage
	}

	res := &Result{}
	seen := make(map[string]bool)
	for _, r := range rules {
		for _, m := range r.matches(page) {
			s, err := r.sample(m)
			if err != nil {
				res.Failures = append(res.Failures, RuleFailure{Rule: r.ID(), Err: err})
				continue
			}
			key := s.seriesKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			res.Snapshot.Samples = append(res.Snapshot.Samples, s)
		}
	}
	return res, nil
}
