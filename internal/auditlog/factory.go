package auditlog

import (
	"database/sql"
	"errors"
	"fmt"
)

// Result holds the initialized audit logger and its database. The caller
// is responsible for calling Close during shutdown.
type Result struct {
	Logger LoggerInterface
	Reader *Reader
	db     *sql.DB
}

// Close flushes the logger and closes the database. Safe to call on a
// disabled (noop) result.
func (r *Result) Close() error {
	var errs []error
	if r.Logger != nil {
		if err := r.Logger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("logger close: %w", err))
		}
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}
	return errors.Join(errs...)
}

// New builds the audit logging stack from configuration. When logging is
// disabled it returns a noop logger and no reader.
func New(cfg Config) (*Result, error) {
	if !cfg.Enabled {
		return &Result{Logger: &NoopLogger{}}, nil
	}

	db, err := OpenDatabase(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open request log database: %w", err)
	}

	store, err := NewSQLiteStore(db, cfg.RetentionDays)
	if err != nil {
		db.Close()
		return nil, err
	}

	reader, err := NewReader(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Result{
		Logger: NewLogger(store, cfg),
		Reader: reader,
		db:     db,
	}, nil
}
