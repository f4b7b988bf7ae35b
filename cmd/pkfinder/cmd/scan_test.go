package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dbsmedya/pkfinder/internal/colrange"
	"github.com/dbsmedya/pkfinder/internal/report"
	"github.com/dbsmedya/pkfinder/internal/table"
)

func TestScanCommandStructure(t *testing.T) {
	assert.Equal(t, "scan [file]", scanCmd.Use)
	assert.NotEmpty(t, scanCmd.Short)
	assert.NotEmpty(t, scanCmd.Long)
	assert.NotNil(t, scanCmd.RunE)
}

func TestScanText(t *testing.T) {
	path := writeCSV(t, peopleCSV)

	out, _, err := runCLI(t, "scan", path, "--no-color", "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, exitOK, exitCode)

	assert.Contains(t, out, "Opening '"+path+"' ...")
	assert.Contains(t, out, "with 3 columns and 3 rows")
	assert.Contains(t, out, "Testing 7 primary keys ...")
	assert.Contains(t, out, "Primary Key #1:\n Columnname:\t'id'\n Columnindex:\t1\n Columnletter:\tA\n")
	assert.Contains(t, out, "Primary Key #2:\n Columnname:\t'name'  +  'city'\n Columnindex:\t2 + 3\n Columnletter:\tB + C\n")
	assert.Contains(t, out, "for 2 primary key(s) and 0 suggestion(s)")
	assert.NotContains(t, out, "No primary key found.")
}

func TestScanVerboseTraces(t *testing.T) {
	path := writeCSV(t, peopleCSV)

	out, _, err := runCLI(t, "scan", path, "--no-color", "-v", "--workers", "1", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, "Columns to test: 1(A), 2(B), 3(C)")
	assert.Contains(t, out, "Testing column(s):  1\n")
	assert.Contains(t, out, "Skipping column(s):  1 + 2 because found 1 already before")
	assert.Contains(t, out, "Skipping column(s):  1 + 2 + 3 because found 1 already before")
}

func TestScanRange(t *testing.T) {
	path := writeCSV(t, peopleCSV)

	out, _, err := runCLI(t, "scan", path, "--no-color", "-r", "2-3", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, "with 3 (2 selected) columns and 3 rows")
	assert.Contains(t, out, "Testing 3 primary keys ...")
	assert.Contains(t, out, "Primary Key #1:\n Columnname:\t'name'  +  'city'")
	assert.NotContains(t, out, "Primary Key #2:")
}

func TestScanSuggestions(t *testing.T) {
	path := writeCSV(t, "a,b\n1,x\n1,y\n2,x\n2,x\n")

	out, _, err := runCLI(t, "scan", path, "--no-color", "-p", "70", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, "No primary key found.")
	assert.Contains(t, out, "Suggestion #1 (NOT a primary key, but 75% of items are unique)")
	assert.Contains(t, out, " Columnindex:\t1 + 2\n")
	assert.NotContains(t, out, "Suggestion #2")
	assert.Contains(t, out, "for 0 primary key(s) and 1 suggestion(s)")
}

func TestScanProgressMode(t *testing.T) {
	path := writeCSV(t, peopleCSV)

	out, _, err := runCLI(t, "scan", path, "--no-color", "-s", "3", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, "|100%| (7 of 7 keys tested)")
	assert.Contains(t, out, "Primary Key #1:")
	assert.Contains(t, out, "Primary Key #2:")
	assert.NotContains(t, out, "Testing column(s)")
}

func TestScanJSON(t *testing.T) {
	path := writeCSV(t, peopleCSV)

	out, _, err := runCLI(t, "scan", path, "--output", "json", "--log-level", "error")
	require.NoError(t, err)
	assert.NotContains(t, out, "Opening")

	var doc report.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.NotEmpty(t, doc.RunID)
	assert.Equal(t, 3, doc.Rows)
	assert.Equal(t, int64(7), doc.Combinations)
	assert.Equal(t, int64(3), doc.Skipped)
	require.Len(t, doc.PrimaryKeys, 2)
	assert.Equal(t, []int{1}, doc.PrimaryKeys[0].Columns)
	assert.Equal(t, []string{"A"}, doc.PrimaryKeys[0].Letters)
	assert.Equal(t, []int{2, 3}, doc.PrimaryKeys[1].Columns)
	assert.Equal(t, []string{"name", "city"}, doc.PrimaryKeys[1].Names)
	assert.False(t, doc.Interrupted)
}

func TestScanYAML(t *testing.T) {
	path := writeCSV(t, peopleCSV)

	out, _, err := runCLI(t, "scan", path, "-o", "yaml", "-c", "1", "--log-level", "error")
	require.NoError(t, err)

	var doc report.Document
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 1, doc.MaxColumns)
	assert.Equal(t, int64(3), doc.Combinations)
	require.Len(t, doc.PrimaryKeys, 1)
	assert.Equal(t, []string{"id"}, doc.PrimaryKeys[0].Names)
}

func TestScanBlankCellIsDistinctValue(t *testing.T) {
	path := writeCSV(t, "id,name\n1,a\n2,a\n,a\n")

	t.Run("missing cells count as nan", func(t *testing.T) {
		out, _, err := runCLI(t, "scan", path, "-c", "1", "-o", "json", "--log-level", "error")
		require.NoError(t, err)

		var doc report.Document
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		require.Len(t, doc.PrimaryKeys, 1)
		assert.Equal(t, []string{"id"}, doc.PrimaryKeys[0].Names)
		assert.Equal(t, 3, doc.PrimaryKeys[0].Distinct)
	})

	t.Run("blank missing drops them", func(t *testing.T) {
		out, _, err := runCLI(t, "scan", path, "-c", "1", "-o", "json", "--blank-missing", "--log-level", "error")
		require.NoError(t, err)

		var doc report.Document
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Empty(t, doc.PrimaryKeys)
	})
}

func TestScanWithheldSuggestionsNote(t *testing.T) {
	path := writeCSV(t, "id,code\n1,a\n2,b\n3,c\n4,d\n5,e\n6,f\n7,g\n8,h\n9,i\n10,i\n")
	cfgPath := filepath.Join(t.TempDir(), "pkfinder.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("scan:\n  precision: 80\n"), 0o644))

	out, _, err := runCLI(t, "scan", path, "--config", cfgPath, "--no-color", "-c", "1", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, "Primary Key #1:")
	assert.NotContains(t, out, "Suggestion #1")
	assert.Contains(t, out, "for 1 primary key(s) and 1 suggestion(s)")
	assert.Contains(t, out, "1 suggestion(s) not shown because a primary key was found")
}

func TestScanErrors(t *testing.T) {
	path := writeCSV(t, peopleCSV)

	t.Run("range out of bounds", func(t *testing.T) {
		_, _, err := runCLI(t, "scan", path, "-r", "9", "--log-level", "error")
		require.Error(t, err)
		assert.True(t, errors.Is(err, colrange.ErrInvalidRange))
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := runCLI(t, "scan", path+".missing.csv", "--log-level", "error")
		require.Error(t, err)
		assert.True(t, errors.Is(err, table.ErrInputUnavailable))
	})

	t.Run("no input", func(t *testing.T) {
		_, _, err := runCLI(t, "scan", "--log-level", "error")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "source.path")
	})

	t.Run("invalid sort", func(t *testing.T) {
		_, _, err := runCLI(t, "scan", path, "-s", "4", "--log-level", "error")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scan.sort")
	})

	t.Run("zero sort", func(t *testing.T) {
		out, _, err := runCLI(t, "scan", path, "-s", "0", "--log-level", "error")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scan.sort")
		assert.NotContains(t, out, "Testing")
	})

	t.Run("zero columns", func(t *testing.T) {
		out, _, err := runCLI(t, "scan", path, "-c", "0", "--log-level", "error")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scan.max_columns")
		assert.NotContains(t, out, "Testing")
	})

	t.Run("negative columns", func(t *testing.T) {
		_, _, err := runCLI(t, "scan", path, "--columns=-1", "--log-level", "error")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scan.max_columns")
	})

	t.Run("too many arguments", func(t *testing.T) {
		_, _, err := runCLI(t, "scan", path, path)
		require.Error(t, err)
	})
}

func TestInterruptedSetsExitCode(t *testing.T) {
	resetFlags(t)

	var stderr bytes.Buffer
	c := &cobra.Command{}
	c.SetErr(&stderr)

	require.NoError(t, interrupted(c))
	assert.Equal(t, exitInterrupted, exitCode)
	assert.Equal(t, "Process cancelled through user interaction.\n", stderr.String())
}
