package finder

import "context"

// pollEvery is how many rows are fingerprinted between context checks.
const pollEvery = 4096

// Table is the read-only view of a loaded table the finder needs.
// Cells are already canonical strings.
type Table interface {
	Name() string
	Rows() int
	Cols() int
	ColumnNames() []string
	Column(i int) []string
}

// Evaluation is the outcome of fingerprinting one candidate.
type Evaluation struct {
	Rows     int
	Distinct int
}

// Evaluator computes per-row fingerprints for candidates and counts the
// distinct ones. It holds no per-candidate state and may be shared by
// concurrent workers.
type Evaluator struct {
	table      Table
	separator  string
	countEmpty bool
}

// NewEvaluator creates an evaluator over t.
func NewEvaluator(t Table, separator string, countEmpty bool) *Evaluator {
	return &Evaluator{
		table:      t,
		separator:  separator,
		countEmpty: countEmpty,
	}
}

// Evaluate fingerprints every row for candidate c. Rows whose selected
// cells are all empty are left out of the distinct count unless the
// evaluator counts empty fingerprints.
func (e *Evaluator) Evaluate(ctx context.Context, c Candidate) (Evaluation, error) {
	rows := e.table.Rows()
	cols := make([][]string, len(c))
	for i, idx := range c {
		cols[i] = e.table.Column(idx)
	}

	set := make(map[string]struct{}, rows)

	if len(cols) == 1 {
		for r, v := range cols[0] {
			if r%pollEvery == 0 {
				if err := ctx.Err(); err != nil {
					return Evaluation{}, err
				}
			}
			if v == "" && !e.countEmpty {
				continue
			}
			set[v] = struct{}{}
		}
		return Evaluation{Rows: rows, Distinct: len(set)}, nil
	}

	buf := make([]byte, 0, 64)
	for r := 0; r < rows; r++ {
		if r%pollEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Evaluation{}, err
			}
		}

		buf = buf[:0]
		empty := true
		for j, col := range cols {
			if j > 0 {
				buf = append(buf, e.separator...)
			}
			if v := col[r]; v != "" {
				empty = false
				buf = append(buf, v...)
			}
		}
		if empty && !e.countEmpty {
			continue
		}
		if _, ok := set[string(buf)]; !ok {
			set[string(buf)] = struct{}{}
		}
	}

	return Evaluation{Rows: rows, Distinct: len(set)}, nil
}
