package table

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dbsmedya/pkfinder/internal/config"
	"github.com/dbsmedya/pkfinder/internal/database"
	"github.com/dbsmedya/pkfinder/internal/logger"
)

// Source loads one table and lists the alternatives it could load instead.
type Source interface {
	// Load reads the selected worksheet or table.
	Load(ctx context.Context) (*Table, error)
	// Sheets lists the worksheet or table names of the input.
	Sheets(ctx context.Context) ([]string, error)
	// Describe returns a short label such as "worksheet 'Orders'".
	Describe() string
	// Close releases files or connections.
	Close() error
}

// SupportedExtensions are the file types NewSource accepts.
var SupportedExtensions = []string{".csv", ".tsv", ".txt", ".xlsx", ".xlsm"}

// NewSource chooses a source implementation for the configuration.
func NewSource(cfg *config.SourceConfig, log *logger.Logger) (Source, error) {
	if log == nil {
		log = logger.NewDefault()
	}
	input := cfg.Path
	if cfg.Kind == config.SourceSQL {
		input = cfg.Driver
	}
	log = log.WithFields(map[string]interface{}{"source": cfg.Kind, "input": input})

	switch cfg.Kind {
	case config.SourceSQL:
		return NewSQLSource(database.NewManager(cfg), cfg.Driver, cfg.Table, log), nil
	case config.SourceFile, "":
	default:
		return nil, fmt.Errorf("unsupported source kind %q", cfg.Kind)
	}

	info, err := os.Stat(cfg.Path)
	if err != nil {
		return nil, &UnavailableError{Kind: "file", Name: cfg.Path, Err: err}
	}
	if info.IsDir() {
		return nil, &UnavailableError{Kind: "file", Name: cfg.Path, Err: fmt.Errorf("is a directory")}
	}

	switch ext := strings.ToLower(filepath.Ext(cfg.Path)); ext {
	case ".csv", ".tsv", ".txt":
		return NewCSVSource(cfg.Path, cfg.Encoding, cfg.Delimiter, log), nil
	case ".xlsx", ".xlsm":
		return NewExcelSource(cfg.Path, cfg.Sheet, log), nil
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q (supported: %s)",
			ErrInputUnavailable, ext, strings.Join(SupportedExtensions, ", "))
	}
}
