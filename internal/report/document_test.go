package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dbsmedya/pkfinder/internal/finder"
)

func sampleResult() *finder.ScanResult {
	return &finder.ScanResult{
		Table:        "orders.csv",
		Rows:         3,
		Columns:      2,
		Working:      []int{0, 1},
		MaxColumns:   2,
		Combinations: 3,
		Processed:    3,
		Tested:       2,
		Skipped:      1,
		PrimaryKeys:  []finder.KeyResult{{Columns: finder.Candidate{0}, Names: []string{"ID"}, Distinct: 3, Rows: 3, Ratio: 1, Exact: true, Rank: 1}},
		PseudoKeys:   []finder.KeyResult{{Columns: finder.Candidate{1}, Names: []string{"Name"}, Distinct: 2, Rows: 3, Ratio: 0.5, Rank: 1}},
		PseudoCount:  1,
		Duration:     2 * time.Second,
	}
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument("run-1", "file 'orders.csv'", sampleResult())

	assert.Equal(t, "run-1", doc.RunID)
	assert.Equal(t, []int{1, 2}, doc.Working)
	require.Len(t, doc.PrimaryKeys, 1)
	assert.Equal(t, []int{1}, doc.PrimaryKeys[0].Columns)
	assert.Equal(t, []string{"A"}, doc.PrimaryKeys[0].Letters)
	require.Len(t, doc.Suggestions, 1)
	assert.Equal(t, []string{"B"}, doc.Suggestions[0].Letters)
	assert.Equal(t, 2.0, doc.DurationSeconds)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, NewDocument("run-1", "src", sampleResult())))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run-1", got["run_id"])
	assert.Equal(t, float64(3), got["combinations"])
	assert.Len(t, got["primary_keys"], 1)
	assert.Equal(t, false, got["interrupted"])
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, NewDocument("run-1", "src", sampleResult())))

	var got Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, []string{"ID"}, got.PrimaryKeys[0].Names)
	assert.Contains(t, buf.String(), "suggestion_count: 1")
}

func TestWriteUnsupportedFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, "xml", &Document{}))
}
