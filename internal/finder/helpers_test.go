package finder

import (
	"fmt"
	"strings"
)

// memTable is an in-memory Table built from row-major string cells.
type memTable struct {
	name  string
	names []string
	cols  [][]string
	rows  int
}

func newMemTable(names []string, rows ...[]string) *memTable {
	t := &memTable{
		name:  "test",
		names: names,
		cols:  make([][]string, len(names)),
		rows:  len(rows),
	}
	for i := range t.cols {
		t.cols[i] = make([]string, len(rows))
	}
	for r, row := range rows {
		for c, v := range row {
			t.cols[c][r] = v
		}
	}
	return t
}

func (t *memTable) Name() string          { return t.name }
func (t *memTable) Rows() int             { return t.rows }
func (t *memTable) Cols() int             { return len(t.cols) }
func (t *memTable) ColumnNames() []string { return t.names }
func (t *memTable) Column(i int) []string { return t.cols[i] }

// recorder captures reporter events as short strings.
type recorder struct {
	events   []string
	progress []int64
	summary  *ScanResult
	onKey    func()
}

func (r *recorder) Testing(c Candidate) {
	r.events = append(r.events, "test "+c.Key())
}

func (r *recorder) Skipping(c, by Candidate) {
	r.events = append(r.events, fmt.Sprintf("skip %s by %s", c.Key(), by.Key()))
}

func (r *recorder) PrimaryKey(n int, k KeyResult) {
	r.events = append(r.events, fmt.Sprintf("pk#%d %s", n, k.Columns.Key()))
	if r.onKey != nil {
		r.onKey()
	}
}

func (r *recorder) PseudoKey(n int, k KeyResult) {
	r.events = append(r.events, fmt.Sprintf("pseudo#%d %s", n, k.Columns.Key()))
}

func (r *recorder) Progress(processed, total int64) {
	r.progress = append(r.progress, processed)
	r.events = append(r.events, fmt.Sprintf("progress %d/%d", processed, total))
}

func (r *recorder) Summary(res *ScanResult) {
	r.summary = res
	r.events = append(r.events, "summary")
}

// results filters out trace and progress events.
func (r *recorder) results() []string {
	var out []string
	for _, e := range r.events {
		if strings.HasPrefix(e, "pk#") || strings.HasPrefix(e, "pseudo#") || e == "summary" {
			out = append(out, e)
		}
	}
	return out
}

func keys(results []KeyResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Columns.Key()
	}
	return out
}
