// Package sqlutil provides SQL identifier helpers for the supported drivers.
package sqlutil

import (
	"fmt"
	"strings"
)

// Dialects understood by QuoteIdentifier. They match the config driver names.
const (
	MySQL     = "mysql"
	Postgres  = "postgres"
	SQLite    = "sqlite"
	SQLServer = "sqlserver"
)

// QuoteIdentifier quotes a single identifier (table name, column name) for
// the dialect, escaping embedded quote characters by doubling them.
// Example: QuoteIdentifier("mysql", "my`table") -> "`my``table`"
// Example: QuoteIdentifier("sqlserver", "a]b") -> "[a]]b]"
func QuoteIdentifier(dialect, name string) (string, error) {
	switch dialect {
	case MySQL:
		return "`" + strings.ReplaceAll(name, "`", "``") + "`", nil
	case Postgres, SQLite:
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`, nil
	case SQLServer:
		return "[" + strings.ReplaceAll(name, "]", "]]") + "]", nil
	default:
		return "", &UnsupportedDialectError{Dialect: dialect}
	}
}

// QuoteQualified quotes a possibly schema-qualified name such as
// "sales.orders", quoting each dot-separated part on its own.
func QuoteQualified(dialect, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty identifier")
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		if p == "" {
			return "", fmt.Errorf("invalid qualified identifier %q", name)
		}
		q, err := QuoteIdentifier(dialect, p)
		if err != nil {
			return "", err
		}
		parts[i] = q
	}
	return strings.Join(parts, "."), nil
}

// UnsupportedDialectError is returned for a driver name without quoting rules.
type UnsupportedDialectError struct {
	Dialect string
}

func (e *UnsupportedDialectError) Error() string {
	return "unsupported SQL dialect: " + e.Dialect
}
