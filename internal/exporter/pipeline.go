package exporter

import (
	"context"
	"fmt"
	"time"

	"github.com/Jercik/i2pd-webconsole-exporter/internal/exposition"
	"github.com/Jercik/i2pd-webconsole-exporter/internal/extract"
)

// Stage names the pipeline step an error came from.
type Stage string

const (
	StageFetch   Stage = "fetch"
	StageExtract Stage = "extract"
	StageFormat  Stage = "format"
)

// StageError wraps the error that stopped a Collect call.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("exporter: %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Fetcher returns the current console page. *scraper.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// Outcome is a successfully rendered scrape.
type Outcome struct {
	Body     []byte
	Samples  int                   // upstream samples, excluding the version gauge
	Failures []extract.RuleFailure // rules whose matched text was malformed
	Duration time.Duration
}

// Pipeline turns one console page into one exposition body.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	fetcher Fetcher
	rules   []extract.Rule
	id      exposition.Identity
	now     func() time.Time
}

// New returns a Pipeline using rules against pages from f.
func New(f Fetcher, rules []extract.Rule, id exposition.Identity) *Pipeline {
	return &Pipeline{fetcher: f, rules: rules, id: id, now: time.Now}
}

// Collect fetches the page once, extracts a snapshot and renders it.
//
// Any returned error is a *StageError. Rule failures are not errors: the
// outcome still carries whatever the other rules produced.
func (p *Pipeline) Collect(ctx context.Context) (*Outcome, error) {
	start := p.now()

	page, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return nil, &StageError{Stage: StageFetch, Err: err}
	}

	res, err := extract.Extract(page, p.rules)
	if err != nil {
		return nil, &StageError{Stage: StageExtract, Err: err}
	}

	body, err := exposition.Format(res.Snapshot, p.id)
	if err != nil {
		return nil, &StageError{Stage: StageFormat, Err: err}
	}

	return &Outcome{
		Body:     body,
		Samples:  res.Snapshot.Len(),
		Failures: res.Failures,
		Duration: p.now().Sub(start),
	}, nil
}
