package finder

import (
	"sort"
	"time"

	"github.com/elliotchance/orderedmap/v2"
)

// Aggregator owns the state of one scan: confirmed keys in discovery
// order, pseudo-keys, counters, and the reporting discipline of the mode.
// It is driven by a single goroutine.
type Aggregator struct {
	mode      Mode
	verbose   bool
	precision float64
	names     []string
	total     int64
	reporter  Reporter

	found     *orderedmap.OrderedMap[string, KeyResult]
	pseudo    []KeyResult
	discovery int

	processed int64
	tested    int64
	skipped   int64
}

// NewAggregator creates an aggregator for a table with the given column
// names. total is the number of combinations the scan will process, used
// for progress.
func NewAggregator(opts Options, names []string, total int64, reporter Reporter) *Aggregator {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Aggregator{
		mode:      opts.Mode,
		verbose:   opts.Verbose,
		precision: opts.Precision,
		names:     names,
		total:     total,
		reporter:  reporter,
		found:     orderedmap.NewOrderedMap[string, KeyResult](),
	}
}

func (a *Aggregator) traces() bool {
	return a.verbose && a.mode != ModeProgress
}

// Testing announces that c is about to be evaluated.
func (a *Aggregator) Testing(c Candidate) {
	if a.traces() {
		a.reporter.Testing(c)
	}
}

// Skip records that c was pruned because it contains the found key by.
func (a *Aggregator) Skip(c, by Candidate) {
	a.skipped++
	if a.traces() {
		a.reporter.Skipping(c, by)
	}
	a.Tick()
}

// Tick advances the processed counter by one combination.
func (a *Aggregator) Tick() {
	a.processed++
	if a.mode == ModeProgress {
		a.reporter.Progress(a.processed, a.total)
	}
}

// Record classifies an evaluated candidate and reports it according to
// the mode. It returns the class so the caller can grow its found set.
func (a *Aggregator) Record(c Candidate, ev Evaluation) Class {
	a.tested++
	class := Classify(ev.Distinct, ev.Rows, a.precision)
	if class == ClassRejected {
		return class
	}

	a.discovery++
	r := KeyResult{
		Columns:   c.Clone(),
		Names:     a.columnNames(c),
		Distinct:  ev.Distinct,
		Rows:      ev.Rows,
		Ratio:     Ratio(ev.Distinct, ev.Rows),
		Exact:     class == ClassPrimaryKey,
		discovery: a.discovery,
	}

	switch class {
	case ClassPrimaryKey:
		r.Rank = a.found.Len() + 1
		a.found.Set(c.Key(), r)
		if a.mode != ModeProgress {
			a.reporter.PrimaryKey(a.found.Len(), r)
		}
	case ClassPseudoKey:
		a.pseudo = append(a.pseudo, r)
		if a.mode == ModeImmediateAll {
			a.reporter.PseudoKey(len(a.pseudo), r)
		}
	}
	return class
}

func (a *Aggregator) columnNames(c Candidate) []string {
	names := make([]string, len(c))
	for i, idx := range c {
		if idx < len(a.names) {
			names[i] = a.names[idx]
		}
	}
	return names
}

// PrimaryKeys returns the confirmed keys in discovery order.
func (a *Aggregator) PrimaryKeys() []KeyResult {
	keys := make([]KeyResult, 0, a.found.Len())
	for el := a.found.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value)
	}
	return keys
}

// Finish emits the deferred output for the mode and the summary record,
// and returns the final result.
func (a *Aggregator) Finish(res *ScanResult, interrupted bool, elapsed time.Duration) *ScanResult {
	res.PrimaryKeys = a.PrimaryKeys()
	res.PseudoKeys = RankPseudoKeys(a.pseudo)
	res.PseudoCount = len(a.pseudo)
	res.Processed = a.processed
	res.Tested = a.tested
	res.Skipped = a.skipped
	res.Interrupted = interrupted
	res.Duration = elapsed

	if a.mode == ModeProgress {
		for i, r := range res.PrimaryKeys {
			a.reporter.PrimaryKey(i+1, r)
		}
	}
	if a.mode != ModeImmediateAll {
		for _, r := range res.PseudoKeys {
			a.reporter.PseudoKey(r.Rank, r)
		}
	}

	a.reporter.Summary(res)
	return res
}

// RankPseudoKeys orders pseudo-keys by descending ratio, ties in discovery
// order, and keeps at most MaxSuggestions. Ranks are 1-based.
func RankPseudoKeys(in []KeyResult) []KeyResult {
	ranked := make([]KeyResult, len(in))
	copy(ranked, in)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Ratio != ranked[j].Ratio {
			return ranked[i].Ratio > ranked[j].Ratio
		}
		return ranked[i].discovery < ranked[j].discovery
	})
	if len(ranked) > MaxSuggestions {
		ranked = ranked[:MaxSuggestions]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
