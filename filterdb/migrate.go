package filterdb

import (
	"context"
	"database/sql"
	"fmt"
)

// migrate brings the schema to s.version inside one transaction.
func (s *Store) migrate(ctx context.Context) error {
	current, err := s.Version(ctx)
	if err != nil {
		return err
	}
	switch {
	case current == s.version:
		return nil
	case current > s.version:
		return fmt.Errorf("%w: have %d, support %d", ErrNewerSchema, current, s.version)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration transaction: %w", err)
	}

	if current == 0 {
		s.logger.Info("creating filter database", "version", s.version)
		err = s.create(ctx, tx)
	} else {
		err = s.upgrade(ctx, tx, current)
	}
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	// PRAGMA does not take bind parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", s.version)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("set user_version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}

// upgrade applies the direct migration script when the bundle has one.
// Without a migration path the tables are dropped and rebuilt.
func (s *Store) upgrade(ctx context.Context, tx *sql.Tx, from int) error {
	script, ok, err := s.scripts.UpdateScript(from, s.version)
	if err != nil {
		return err
	}
	if ok {
		s.logger.Info("upgrading filter database", "from", from, "to", s.version)
		return execScript(ctx, tx, "update", script)
	}

	s.logger.Warn("no migration path, recreating filter database", "from", from, "to", s.version)
	drop, err := s.scripts.DropTablesScript()
	if err != nil {
		return err
	}
	if err := execScript(ctx, tx, "drop tables", drop); err != nil {
		return err
	}
	return s.create(ctx, tx)
}

func (s *Store) create(ctx context.Context, tx *sql.Tx) error {
	steps := []struct {
		label  string
		script func() (string, error)
	}{
		{"create tables", s.scripts.CreateTablesScript},
		{"insert filters", s.scripts.InsertFiltersScript},
		{"insert filters localization", s.scripts.InsertFiltersLocalizationScript},
		{"enable default filters", s.scripts.EnableDefaultFiltersScript},
	}
	for _, step := range steps {
		script, err := step.script()
		if err != nil {
			return err
		}
		if err := execScript(ctx, tx, step.label, script); err != nil {
			return err
		}
	}
	return nil
}

// execScript runs a multi-statement script.
func execScript(ctx context.Context, tx *sql.Tx, label, script string) error {
	if _, err := tx.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("exec %s script: %w", label, err)
	}
	return nil
}
