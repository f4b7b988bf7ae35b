package cmd

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every persistent flag to its default before and
// after the test, since cobra keeps parsed values between executions.
func resetFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
		exitCode = exitOK
	}
	reset()
	t.Cleanup(reset)
}

// runCLI executes the root command with args and returns stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(t)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeCSV stores content in a temporary CSV file.
func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// peopleCSV has one single-column key (id) and one two-column key
// (name + city).
const peopleCSV = "id,name,city\n1,a,x\n2,b,x\n3,a,y\n"

// createSQLiteTables creates a SQLite database with one (id, name) table
// per name, each holding two rows with distinct ids.
func createSQLiteTables(t *testing.T, path string, names ...string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for _, name := range names {
		_, err = db.Exec(`CREATE TABLE ` + name + ` (id INTEGER, name TEXT)`)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO ` + name + ` VALUES (1, 'x'), (2, 'x')`)
		require.NoError(t, err)
	}
}
