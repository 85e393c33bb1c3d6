package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/roach88/polyquery/internal/ir"
)

// SaveCase inserts c, its child_info row and exactly one variant row in one
// transaction. On success c.ID and c.Child.CaseID hold the generated id.
// On failure nothing is written and c is left unchanged.
//
// Constraint violations (duplicate case code, bad birth type) are returned
// wrapped as reported by the driver.
func (s *Store) SaveCase(ctx context.Context, c *ir.Case) error {
	if c == nil {
		return errors.New("save case: nil case")
	}
	if c.ID != 0 {
		return fmt.Errorf("save case: %w: id %d", ErrAlreadySaved, c.ID)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("save case: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save case: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	// Step 1: root row, which assigns the shared key
	id, err := insert(ctx, tx, sq.Insert("gpls_case").
		Columns("case_code", "validation_code").
		Values(c.Code, c.ValidationCode))
	if err != nil {
		return fmt.Errorf("save case %q: insert gpls_case: %w", c.Code, err)
	}

	// Step 2: abstract child row under the same key
	if _, err := insert(ctx, tx, sq.Insert("child_info").
		Columns("id", "birth_type").
		Values(id, birthTypeParam(c.Child.BirthType))); err != nil {
		return fmt.Errorf("save case %q: insert child_info: %w", c.Code, err)
	}

	// Step 3: exactly one variant row
	variant := variantInsert(id, c.Child)
	if _, err := insert(ctx, tx, variant); err != nil {
		return fmt.Errorf("save case %q: insert %s: %w", c.Code, c.Child.Variant(), err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save case %q: commit: %w", c.Code, err)
	}

	c.ID = id
	c.Child.CaseID = id

	s.logger.Debug("case saved",
		"id", id,
		"code", c.Code,
		"variant", string(c.Child.Variant()),
	)
	return nil
}

// DeleteCase removes a case with its child and variant rows.
func (s *Store) DeleteCase(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete case: begin tx: %w", err)
	}
	defer tx.Rollback()

	// Children first so the delete works without ON DELETE CASCADE.
	for _, table := range []string{"child_info_live_birth", "child_info_adoptive", "child_info"} {
		if _, err := exec(ctx, tx, sq.Delete(table).Where(sq.Eq{"id": id})); err != nil {
			return fmt.Errorf("delete case %d: %s: %w", id, table, err)
		}
	}

	n, err := exec(ctx, tx, sq.Delete("gpls_case").Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete case %d: gpls_case: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete case %d: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete case %d: commit: %w", id, err)
	}
	return nil
}

func variantInsert(id int64, child ir.ChildRecord) sq.InsertBuilder {
	if child.Variant() == ir.VariantAdoptive {
		return sq.Insert("child_info_adoptive").
			Columns("id", "national_id", "adopt_age").
			Values(id, child.Adoptive.NationalID, child.Adoptive.Age)
	}
	return sq.Insert("child_info_live_birth").
		Columns("id", "national_id", "live_age").
		Values(id, child.LiveBirth.NationalID, child.LiveBirth.Age)
}

// birthTypeParam stores an unset birth type as NULL.
func birthTypeParam(bt ir.BirthType) sql.NullString {
	return sql.NullString{String: string(bt), Valid: bt != ""}
}

// insert runs an insert and returns the last insert id.
func insert(ctx context.Context, tx *sql.Tx, b sq.InsertBuilder) (int64, error) {
	query, args, err := b.PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// exec runs a statement and returns the rows affected.
func exec(ctx context.Context, tx *sql.Tx, b sq.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
