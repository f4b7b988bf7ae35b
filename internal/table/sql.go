package table

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dbsmedya/pkfinder/internal/database"
	"github.com/dbsmedya/pkfinder/internal/logger"
	"github.com/dbsmedya/pkfinder/internal/sqlutil"
)

// listTablesQueries list the base tables visible in the current database.
var listTablesQueries = map[string]string{
	sqlutil.MySQL: "SELECT table_name FROM information_schema.tables " +
		"WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE' ORDER BY table_name",
	sqlutil.Postgres: "SELECT table_name FROM information_schema.tables " +
		"WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' ORDER BY table_name",
	sqlutil.SQLite: "SELECT name FROM sqlite_master " +
		"WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name",
	sqlutil.SQLServer: "SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES " +
		"WHERE TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME",
}

// SQLSource reads a whole table through database/sql. Values are
// canonicalized with Canonical as they are scanned.
type SQLSource struct {
	mgr     *database.Manager
	db      *sql.DB
	dialect string
	table   string
	logger  *logger.Logger
}

// NewSQLSource creates a source that connects through mgr on first use.
func NewSQLSource(mgr *database.Manager, dialect, table string, log *logger.Logger) *SQLSource {
	if log == nil {
		log = logger.NewDefault()
	}
	return &SQLSource{
		mgr:     mgr,
		dialect: dialect,
		table:   table,
		logger:  log,
	}
}

// NewSQLSourceFromDB creates a source over an already open connection.
func NewSQLSourceFromDB(db *sql.DB, dialect, table string, log *logger.Logger) *SQLSource {
	s := NewSQLSource(nil, dialect, table, log)
	s.db = db
	return s
}

// Describe implements Source.
func (s *SQLSource) Describe() string {
	return fmt.Sprintf("table '%s'", s.table)
}

func (s *SQLSource) conn(ctx context.Context) (*sql.DB, error) {
	if s.db != nil {
		return s.db, nil
	}
	if s.mgr == nil {
		return nil, fmt.Errorf("no database connection configured")
	}
	if err := s.mgr.Connect(ctx); err != nil {
		return nil, &UnavailableError{Kind: "database", Name: s.dialect, Err: err}
	}
	s.db = s.mgr.DB
	return s.db, nil
}

// Sheets lists the base tables of the connected database.
func (s *SQLSource) Sheets(ctx context.Context) ([]string, error) {
	query, ok := listTablesQueries[s.dialect]
	if !ok {
		return nil, &sqlutil.UnsupportedDialectError{Dialect: s.dialect}
	}
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return names, nil
}

// Load implements Source. Unqualified table names are checked against the
// table listing first so a typo reports the available tables.
func (s *SQLSource) Load(ctx context.Context) (*Table, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	name := s.table
	if name == "" || !strings.Contains(name, ".") {
		available, err := s.Sheets(ctx)
		if err != nil {
			return nil, err
		}
		match, ok := matchFold(available, name)
		if !ok {
			return nil, &UnavailableError{Kind: "table", Name: name, Available: available}
		}
		name = match
	}

	quoted, err := sqlutil.QuoteQualified(s.dialect, name)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoted)
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", s.table, err)
	}
	defer func() { _ = rows.Close() }()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", s.table, err)
	}

	values := make([]any, len(header))
	ptrs := make([]any, len(header))
	for i := range values {
		ptrs[i] = &values[i]
	}

	var records [][]string
	for rows.Next() {
		if len(records)%pollRows == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d of %s: %w", len(records)+1, s.table, err)
		}
		rec := make([]string, len(values))
		for i, v := range values {
			rec[i] = Canonical(v)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", s.table, err)
	}

	s.logger.Debugw("Table loaded",
		"table", s.table,
		"driver", s.dialect,
		"columns", len(header),
		"rows", len(records),
	)
	return New(name, header, records), nil
}

// Close releases the connection if this source opened it.
func (s *SQLSource) Close() error {
	if s.mgr == nil {
		return nil
	}
	s.db = nil
	return s.mgr.Close()
}

// matchFold finds name in names, exactly first, then case-insensitively.
func matchFold(names []string, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	for _, n := range names {
		if n == name {
			return n, true
		}
	}
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}
