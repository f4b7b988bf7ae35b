package finder

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scan(t *testing.T, tbl Table, opts Options, rep Reporter, selection ...int) *ScanResult {
	t.Helper()
	e, err := NewEngine(tbl, opts, rep, nil)
	require.NoError(t, err)
	res, err := e.Scan(context.Background(), selection)
	require.NoError(t, err)
	return res
}

func TestScanSingleColumnKey(t *testing.T) {
	tbl := newMemTable([]string{"ID", "Name"},
		[]string{"1", "a"},
		[]string{"2", "b"},
		[]string{"3", "a"},
	)

	res := scan(t, tbl, Options{MaxColumns: 1, Precision: 0, Mode: ModeImmediateExact}, nil)

	require.Len(t, res.PrimaryKeys, 1)
	assert.Equal(t, Candidate{0}, res.PrimaryKeys[0].Columns)
	assert.Equal(t, 1.0, res.PrimaryKeys[0].Ratio)

	require.Len(t, res.PseudoKeys, 1)
	assert.Equal(t, Candidate{1}, res.PseudoKeys[0].Columns)
	assert.Equal(t, 2, res.PseudoKeys[0].Distinct)
	assert.InDelta(t, 0.667, res.PseudoKeys[0].Ratio, 0.001)

	res = scan(t, tbl, Options{MaxColumns: 1, Precision: 0.7, Mode: ModeImmediateExact}, nil)
	assert.Empty(t, res.PseudoKeys)
}

func TestScanCompositeKey(t *testing.T) {
	tbl := newMemTable([]string{"A", "B"},
		[]string{"1", "1"},
		[]string{"1", "2"},
		[]string{"2", "1"},
	)

	res := scan(t, tbl, Options{MaxColumns: 2, Precision: 1, Mode: ModeImmediateExact}, nil)

	assert.Equal(t, []string{"0,1"}, keys(res.PrimaryKeys))
	assert.Equal(t, []string{"A", "B"}, res.PrimaryKeys[0].Names)
	assert.Empty(t, res.PseudoKeys)
	assert.Equal(t, int64(3), res.Tested)
}

func TestScanSkipsSupersets(t *testing.T) {
	tbl := newMemTable([]string{"A", "B"},
		[]string{"1", "x"},
		[]string{"2", "x"},
		[]string{"3", "y"},
	)
	rec := &recorder{}

	res := scan(t, tbl, Options{MaxColumns: 2, Precision: 1, Mode: ModeImmediateExact, Verbose: true}, rec)

	assert.Equal(t, []string{"0"}, keys(res.PrimaryKeys))
	assert.Equal(t, int64(1), res.Skipped)
	assert.Equal(t, int64(2), res.Tested)
	assert.Equal(t, int64(3), res.Processed)
	assert.Contains(t, rec.events, "skip 0,1 by 0")
	assert.NotContains(t, rec.events, "test 0,1")
}

func TestScanZeroPrecisionSuggestsEveryColumn(t *testing.T) {
	tbl := newMemTable([]string{"A", "B"},
		[]string{"1", "1"},
		[]string{"1", "1"},
		[]string{"2", "2"},
	)

	res := scan(t, tbl, Options{MaxColumns: 1, Precision: 0, Mode: ModeImmediateExact}, nil)

	assert.Empty(t, res.PrimaryKeys)
	require.Len(t, res.PseudoKeys, 2)
	for _, r := range res.PseudoKeys {
		assert.GreaterOrEqual(t, r.Ratio, 0.0)
		assert.Less(t, r.Ratio, 1.0)
	}
}

func TestScanCancelledBeforeStart(t *testing.T) {
	tbl := newMemTable([]string{"A"}, []string{"1"}, []string{"2"})
	rec := &recorder{}
	e, err := NewEngine(tbl, Options{MaxColumns: 1, Precision: 1, Mode: ModeImmediateExact}, rec, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.Scan(ctx, nil)
	require.NoError(t, err)
	assert.True(t, res.Interrupted)
	assert.Empty(t, res.PrimaryKeys)
	assert.Equal(t, int64(0), res.Processed)
	assert.Same(t, res, rec.summary)
}

func TestScanInterruptedMidway(t *testing.T) {
	rows := make([][]string, 20)
	for i := range rows {
		rows[i] = []string{fmt.Sprint(i), fmt.Sprint(i * 2), fmt.Sprint(i * 3), fmt.Sprint(i % 2), fmt.Sprint(i % 3)}
	}
	tbl := newMemTable([]string{"A", "B", "C", "D", "E"}, rows...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recorder{onKey: cancel}

	e, err := NewEngine(tbl, Options{MaxColumns: 3, Precision: 1, Mode: ModeImmediateExact, Workers: 1}, rec, nil)
	require.NoError(t, err)

	res, err := e.Scan(ctx, nil)
	require.NoError(t, err)
	assert.True(t, res.Interrupted)
	assert.NotEmpty(t, res.PrimaryKeys)
	assert.Less(t, res.Processed, res.Combinations)
	assert.Equal(t, res.Processed, res.Tested+res.Skipped)
}

func TestScanEvaluationPanicIsFatal(t *testing.T) {
	tbl := &panicTable{newMemTable([]string{"A"}, []string{"1"})}
	e, err := NewEngine(tbl, Options{MaxColumns: 1, Precision: 1, Mode: ModeImmediateExact}, nil, nil)
	require.NoError(t, err)

	_, err = e.Scan(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evaluating columns [0]")
}

type panicTable struct{ *memTable }

func (panicTable) Column(int) []string { panic("boom") }

func TestScanModes(t *testing.T) {
	// A has ratio 0.5 and is found before B with ratio 0.75.
	tbl := newMemTable([]string{"A", "B", "ID"},
		[]string{"1", "1", "a"},
		[]string{"1", "2", "b"},
		[]string{"2", "3", "c"},
		[]string{"2", "3", "d"},
	)

	tests := []struct {
		name string
		mode Mode
		want []string
	}{
		{"immediate exact ranks suggestions", ModeImmediateExact, []string{"pk#1 2", "pseudo#1 1", "pseudo#2 0", "summary"}},
		{"immediate all keeps discovery order", ModeImmediateAll, []string{"pseudo#1 0", "pseudo#2 1", "pk#1 2", "summary"}},
		{"progress reports at the end", ModeProgress, []string{"pk#1 2", "pseudo#1 1", "pseudo#2 0", "summary"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			scan(t, tbl, Options{MaxColumns: 1, Precision: 0, Mode: tt.mode, Verbose: true}, rec)
			assert.Equal(t, tt.want, rec.results())

			if tt.mode == ModeProgress {
				assert.Equal(t, []int64{1, 2, 3}, rec.progress)
				assert.NotContains(t, rec.events, "test 0")
				assert.Equal(t, "progress 3/3", rec.events[2])
			} else {
				assert.Empty(t, rec.progress)
				assert.Contains(t, rec.events, "test 0")
			}
		})
	}
}

func TestScanWorkingSelection(t *testing.T) {
	tbl := newMemTable([]string{"ID", "A", "B"},
		[]string{"1", "x", "1"},
		[]string{"2", "x", "2"},
		[]string{"3", "y", "1"},
	)

	res := scan(t, tbl, Options{MaxColumns: 3, Precision: 1, Mode: ModeImmediateExact}, nil, 1, 2)

	assert.Equal(t, []int{1, 2}, res.Working)
	assert.Equal(t, 2, res.MaxColumns, "max columns is clamped to the working set")
	assert.Equal(t, int64(3), res.Combinations)
	assert.Equal(t, []string{"1,2"}, keys(res.PrimaryKeys))
}

func TestScanEmptyTable(t *testing.T) {
	tbl := newMemTable([]string{"A", "B"})

	res := scan(t, tbl, Options{MaxColumns: 2, Precision: 1, Mode: ModeImmediateExact}, nil)

	assert.Equal(t, []string{"0", "1"}, keys(res.PrimaryKeys))
	assert.Equal(t, int64(1), res.Skipped)
}

func TestScanDeterministicAcrossWorkers(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	rows := make([][]string, 200)
	for i := range rows {
		row := make([]string, 7)
		for j := range row {
			row[j] = fmt.Sprint(rng.Intn(4 + j*3))
		}
		rows[i] = row
	}
	tbl := newMemTable([]string{"a", "b", "c", "d", "e", "f", "g"}, rows...)

	base := scan(t, tbl, Options{MaxColumns: 4, Precision: 0.9, Mode: ModeImmediateExact, Workers: 1}, nil)
	for _, workers := range []int{2, 4, 16} {
		got := scan(t, tbl, Options{MaxColumns: 4, Precision: 0.9, Mode: ModeImmediateExact, Workers: workers}, nil)
		assert.Equal(t, keys(base.PrimaryKeys), keys(got.PrimaryKeys), "workers=%d", workers)
		assert.Equal(t, keys(base.PseudoKeys), keys(got.PseudoKeys), "workers=%d", workers)
		assert.Equal(t, base.Skipped, got.Skipped, "workers=%d", workers)
	}

	// Reported keys are minimal: none contains another.
	for i, a := range base.PrimaryKeys {
		for j, b := range base.PrimaryKeys {
			if i != j {
				assert.False(t, a.Columns.Contains(b.Columns), "%v contains %v", a.Columns, b.Columns)
			}
		}
	}
	assert.Equal(t, base.Combinations, base.Processed)
}

func TestNewEngineValidation(t *testing.T) {
	tbl := newMemTable([]string{"A"}, []string{"1"})

	tests := []Options{
		{MaxColumns: 0, Precision: 1, Mode: ModeImmediateExact},
		{MaxColumns: 1, Precision: 1.5, Mode: ModeImmediateExact},
		{MaxColumns: 1, Precision: -0.1, Mode: ModeImmediateExact},
		{MaxColumns: 1, Precision: 1, Mode: 4},
		{MaxColumns: 1, Precision: 1, Mode: ModeProgress, Workers: -1},
	}

	for _, opts := range tests {
		_, err := NewEngine(tbl, opts, nil, nil)
		assert.True(t, errors.Is(err, ErrInvalidConfiguration), "%+v", opts)
	}
}

func TestEngineWorkingValidation(t *testing.T) {
	tbl := newMemTable([]string{"A", "B", "C"}, []string{"1", "2", "3"})
	e, err := NewEngine(tbl, Options{MaxColumns: 1, Precision: 1, Mode: ModeImmediateExact}, nil, nil)
	require.NoError(t, err)

	all, err := e.Working(nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, all)

	_, err = e.Working([]int{0, 3})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = e.Working([]int{2, 1})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = e.Scan(context.Background(), []int{-1})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestEnginePlan(t *testing.T) {
	tbl := newMemTable([]string{"A", "B", "C", "D"}, []string{"1", "2", "3", "4"})
	e, err := NewEngine(tbl, Options{MaxColumns: 2, Precision: 1, Mode: ModeImmediateExact, Workers: 3}, nil, nil)
	require.NoError(t, err)

	plan, err := e.Plan(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(10), plan.Combinations)
	assert.Equal(t, 2, plan.MaxColumns)
	assert.Equal(t, 3, plan.Workers)
	assert.GreaterOrEqual(t, int64(plan.Estimated), int64(0))
}

func TestParseMode(t *testing.T) {
	for _, n := range []int{1, 2, 3} {
		m, err := ParseMode(n)
		require.NoError(t, err)
		assert.Equal(t, Mode(n), m)
	}
	_, err := ParseMode(0)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.Equal(t, "progress", ModeProgress.String())
}
