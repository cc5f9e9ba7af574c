package cqlmatch

import (
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/smhanov/cqlmatch/filter"
	"github.com/smhanov/cqlmatch/metacard"
	"github.com/smhanov/cqlmatch/query"
)

const (
	resultMatch   = "match"
	resultNoMatch = "no_match"
	resultError   = "error"
)

// MatcherOptions configures a Matcher. The zero value gives a matcher with
// the default capabilities, no logging and unregistered metrics.
type MatcherOptions struct {
	Logger     log.Logger
	Registerer prometheus.Registerer

	// Capabilities names the evaluator capabilities to enable, as accepted
	// by filter.ParseCapabilities. Empty means filter.DefaultCapabilities.
	Capabilities []string

	// Blacklist lists attributes left out of anyText searches.
	Blacklist []string

	Clock func() time.Time
}

// Matcher compiles CQL filters and tests records against them. Evaluation
// errors are logged and counted, and the record does not match.
type Matcher struct {
	evaluator *filter.Evaluator
	logger    log.Logger

	evaluations *prometheus.CounterVec
	duration    prometheus.Histogram
}

func NewMatcher(registry metacard.Registry, opts MatcherOptions) (*Matcher, error) {
	caps := filter.DefaultCapabilities
	if len(opts.Capabilities) > 0 {
		var err error
		caps, err = filter.ParseCapabilities(opts.Capabilities)
		if err != nil {
			return nil, errors.Wrap(err, "parsing capabilities")
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	evalOpts := []filter.Option{
		filter.WithCapabilities(caps),
		filter.WithBlacklist(opts.Blacklist...),
	}
	if opts.Clock != nil {
		evalOpts = append(evalOpts, filter.WithClock(opts.Clock))
	}

	m := &Matcher{
		evaluator: filter.NewEvaluator(registry, evalOpts...),
		logger:    logger,
		evaluations: promauto.With(opts.Registerer).NewCounterVec(prometheus.CounterOpts{
			Name: "cqlmatch_evaluations_total",
			Help: "Total number of record evaluations, by result.",
		}, []string{"result"}),
		duration: promauto.With(opts.Registerer).NewHistogram(prometheus.HistogramOpts{
			Name:    "cqlmatch_evaluation_duration_seconds",
			Help:    "Time taken to evaluate a filter against one record.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}
	for _, result := range []string{resultMatch, resultNoMatch, resultError} {
		m.evaluations.WithLabelValues(result)
	}

	level.Debug(logger).Log("msg", "matcher created", "capabilities", caps.String())
	return m, nil
}

// Capabilities returns the evaluator capability set in use.
func (m *Matcher) Capabilities() filter.Capability {
	return m.evaluator.Capabilities()
}

// Compile parses CQL text into a filter tree.
func (m *Matcher) Compile(cql string, params query.Parameters) (*filter.Filter, error) {
	f, err := query.ParseWithParameters(cql, params)
	if err != nil {
		return nil, errors.Wrap(err, "compiling filter")
	}
	level.Debug(m.logger).Log("msg", "compiled filter", "filter", f.String())
	return f, nil
}

// Match reports whether rec satisfies f.
func (m *Matcher) Match(rec *metacard.Record, f *filter.Filter) bool {
	start := time.Now()
	ok, err := m.evaluator.Evaluate(rec, f)
	m.duration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		m.evaluations.WithLabelValues(resultError).Inc()
		level.Warn(m.logger).Log("msg", "failed to evaluate filter", "record", rec.ID(), "err", err)
		return false
	case ok:
		m.evaluations.WithLabelValues(resultMatch).Inc()
	default:
		m.evaluations.WithLabelValues(resultNoMatch).Inc()
	}
	return ok
}

// Filter returns the records that satisfy f, in their original order.
func (m *Matcher) Filter(records []*metacard.Record, f *filter.Filter) []*metacard.Record {
	var matched []*metacard.Record
	for _, rec := range records {
		if m.Match(rec, f) {
			matched = append(matched, rec)
		}
	}
	return matched
}

// Count returns how many records satisfy f.
func (m *Matcher) Count(records []*metacard.Record, f *filter.Filter) int {
	n := 0
	for _, rec := range records {
		if m.Match(rec, f) {
			n++
		}
	}
	return n
}
