package finder

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/dbsmedya/pkfinder/internal/logger"
)

// chunkPerWorker bounds how many candidates of one size class are
// dispatched between merges.
const chunkPerWorker = 16

// Plan describes a scan before it runs.
type Plan struct {
	Working        []int
	MaxColumns     int
	Combinations   int64
	PerCombination time.Duration
	Estimated      time.Duration
	Workers        int
}

// Engine runs the search over one table.
type Engine struct {
	table     Table
	opts      Options
	evaluator *Evaluator
	reporter  Reporter
	logger    *logger.Logger
	workers   int
}

// NewEngine validates opts and prepares an engine. A nil reporter discards
// events and a nil logger uses the default logger.
func NewEngine(t Table, opts Options, reporter Reporter, log *logger.Logger) (*Engine, error) {
	if t == nil {
		return nil, fmt.Errorf("table is nil")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	if log == nil {
		log = logger.NewDefault()
	}

	workers := opts.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	return &Engine{
		table:     t,
		opts:      opts,
		evaluator: NewEvaluator(t, opts.Separator, opts.CountEmptyFingerprints),
		reporter:  reporter,
		logger:    log.WithTable(t.Name()),
		workers:   workers,
	}, nil
}

// Working resolves the working column set. An empty selection means every
// column; otherwise indices must be 0-based, ascending and in range.
func (e *Engine) Working(selection []int) ([]int, error) {
	cols := e.table.Cols()
	if len(selection) == 0 {
		all := make([]int, cols)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	for i, idx := range selection {
		if idx < 0 || idx >= cols {
			return nil, fmt.Errorf("%w: column index %d outside [0, %d)", ErrInvalidConfiguration, idx, cols)
		}
		if i > 0 && idx <= selection[i-1] {
			return nil, fmt.Errorf("%w: column selection must be ascending without duplicates", ErrInvalidConfiguration)
		}
	}
	return selection, nil
}

// Plan resolves the working set, counts the combinations and runs one
// calibration evaluation to estimate the duration.
func (e *Engine) Plan(ctx context.Context, selection []int) (*Plan, error) {
	working, err := e.Working(selection)
	if err != nil {
		return nil, err
	}
	k := e.opts.MaxColumns
	if k > len(working) {
		k = len(working)
	}

	per, err := Calibrate(ctx, e.evaluator, working, k)
	if err != nil {
		return nil, fmt.Errorf("calibration failed: %w", err)
	}
	total := TotalCombinations(len(working), k)

	return &Plan{
		Working:        working,
		MaxColumns:     k,
		Combinations:   total,
		PerCombination: per,
		Estimated:      Estimate(per, total, e.workers),
		Workers:        e.workers,
	}, nil
}

// Scan searches the selected columns. Cancelling ctx stops dispatching new
// candidates; the partial result is returned with Interrupted set and a nil
// error. Any other evaluation failure aborts the scan.
func (e *Engine) Scan(ctx context.Context, selection []int) (*ScanResult, error) {
	working, err := e.Working(selection)
	if err != nil {
		return nil, err
	}
	k := e.opts.MaxColumns
	if k > len(working) {
		k = len(working)
	}

	started := time.Now()
	total := TotalCombinations(len(working), k)
	agg := NewAggregator(e.opts, e.table.ColumnNames(), total, e.reporter)
	res := &ScanResult{
		Table:        e.table.Name(),
		Rows:         e.table.Rows(),
		Columns:      e.table.Cols(),
		Working:      working,
		MaxColumns:   k,
		Combinations: total,
	}

	e.logger.Infow("Starting scan",
		"rows", res.Rows,
		"working_columns", len(working),
		"max_columns", k,
		"combinations", total,
		"precision", e.opts.Precision,
		"mode", e.opts.Mode.String(),
		"workers", e.workers,
	)

	gen := Combinations(working, k)
	found := &FoundSet{}
	chunk := e.workers * chunkPerWorker
	jobs := make([]Candidate, 0, chunk)
	var pending Candidate
	interrupted := false

	for {
		if ctx.Err() != nil {
			interrupted = true
			break
		}

		// Fill one chunk from a single size class so every larger candidate
		// is filtered against keys merged from all smaller ones.
		jobs = jobs[:0]
		size := 0
		for len(jobs) < chunk {
			c := pending
			pending = nil
			if c == nil {
				var ok bool
				if c, ok = gen.Next(); !ok {
					break
				}
			}
			if size == 0 {
				size = len(c)
			} else if len(c) != size {
				pending = c
				break
			}
			if by, ok := found.Covering(c); ok {
				agg.Skip(c, by)
				continue
			}
			agg.Testing(c)
			jobs = append(jobs, c)
		}
		if size == 0 {
			break
		}

		evals, errs, dispatched := e.evaluateChunk(ctx, jobs, agg)
		for i := 0; i < dispatched; i++ {
			if errs[i] != nil {
				if isCancellation(errs[i]) {
					continue
				}
				return nil, fmt.Errorf("evaluating columns %v: %w", []int(jobs[i]), errs[i])
			}
			if agg.Record(jobs[i], evals[i]) == ClassPrimaryKey {
				found.Add(jobs[i])
			}
		}

		e.logger.WithSize(size).Debugw("Chunk merged",
			"dispatched", dispatched,
			"found_keys", found.Len(),
		)
	}

	if interrupted {
		e.logger.Warnw("Scan interrupted", "processed", agg.processed, "total", total)
	}

	res = agg.Finish(res, interrupted, time.Since(started))

	e.logger.Infow("Scan finished",
		"primary_keys", len(res.PrimaryKeys),
		"pseudo_keys", res.PseudoCount,
		"tested", res.Tested,
		"skipped", res.Skipped,
		"duration", res.Duration,
		"interrupted", interrupted,
	)
	return res, nil
}

// evaluateChunk fingerprints jobs with bounded parallelism. Results keep
// the job order; dispatched is how many jobs were started before ctx was
// cancelled. Progress ticks as evaluations complete.
func (e *Engine) evaluateChunk(ctx context.Context, jobs []Candidate, agg *Aggregator) ([]Evaluation, []error, int) {
	evals := make([]Evaluation, len(jobs))
	errs := make([]error, len(jobs))
	done := make(chan int, len(jobs))
	sem := make(chan struct{}, e.workers)

	var wg sync.WaitGroup
	dispatched := 0

dispatch:
	for i, c := range jobs {
		if ctx.Err() != nil {
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break dispatch
		}

		dispatched++
		wg.Add(1)
		go func(i int, c Candidate) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("panic: %v", r)
				}
				<-sem
				done <- i
			}()
			evals[i], errs[i] = e.evaluator.Evaluate(ctx, c)
		}(i, c)
	}

	go func() {
		wg.Wait()
		close(done)
	}()

	for i := range done {
		if errs[i] == nil {
			agg.Tick()
		}
	}

	return evals, errs, dispatched
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
