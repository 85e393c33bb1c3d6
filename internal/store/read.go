package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"

	"github.com/roach88/polyquery/internal/ir"
)

// hydrateBatch bounds the ids bound into one hydration query. SQLite
// rejects statements with more than 32766 variables.
const hydrateBatch = 500

// caseSelect reads a case with its child and both possible variants.
func caseSelect() sq.SelectBuilder {
	return sq.Select(
		"c.id", "c.case_code", "c.validation_code",
		"ci.birth_type",
		"lb.national_id", "lb.live_age",
		"ad.national_id", "ad.adopt_age",
	).
		From("gpls_case c").
		LeftJoin("child_info ci ON ci.id = c.id").
		LeftJoin("child_info_live_birth lb ON lb.id = ci.id").
		LeftJoin("child_info_adoptive ad ON ad.id = ci.id").
		OrderBy("c.id ASC").
		PlaceholderFormat(sq.Question)
}

// GetCase returns the case with the given id, or ErrNotFound.
func (s *Store) GetCase(ctx context.Context, id int64) (*ir.Case, error) {
	cases, err := s.readCases(ctx, caseSelect().Where(sq.Eq{"c.id": id}))
	if err != nil {
		return nil, fmt.Errorf("get case %d: %w", id, err)
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("get case %d: %w", id, ErrNotFound)
	}
	return &cases[0], nil
}

// GetCaseByCode returns the case with the given case code, or ErrNotFound.
func (s *Store) GetCaseByCode(ctx context.Context, code string) (*ir.Case, error) {
	cases, err := s.readCases(ctx, caseSelect().Where(sq.Eq{"c.case_code": code}))
	if err != nil {
		return nil, fmt.Errorf("get case %q: %w", code, err)
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("get case %q: %w", code, ErrNotFound)
	}
	return &cases[0], nil
}

// ListCases returns every case ordered by id. A case saved without a child
// row is returned with an empty ChildRecord.
//
// Returns an empty slice (not nil) if no cases exist.
func (s *Store) ListCases(ctx context.Context) ([]ir.Case, error) {
	cases, err := s.readCases(ctx, caseSelect())
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	return cases, nil
}

// FindCases runs a compiled query whose first column is a case id and
// returns the matching cases ordered by id.
func (s *Store) FindCases(ctx context.Context, query string, args []any) ([]ir.Case, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find cases: %w", err)
	}
	defer rows.Close()

	var ids []int64
	seen := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("find cases: scan id: %w", err)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find cases: iterate: %w", err)
	}

	if len(ids) == 0 {
		return []ir.Case{}, nil
	}

	// Sorted ids keep the concatenated batches in id order.
	slices.Sort(ids)
	cases := make([]ir.Case, 0, len(ids))
	for batch := range slices.Chunk(ids, hydrateBatch) {
		found, err := s.readCases(ctx, caseSelect().Where(sq.Eq{"c.id": batch}))
		if err != nil {
			return nil, fmt.Errorf("find cases: hydrate: %w", err)
		}
		cases = append(cases, found...)
	}
	return cases, nil
}

func (s *Store) readCases(ctx context.Context, b sq.SelectBuilder) ([]ir.Case, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cases := []ir.Case{}
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		if c.Child.Variant() == ir.VariantNone {
			s.logger.Warn("case has no child variant", "case_id", c.ID, "case_code", c.Code)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cases: %w", err)
	}
	return cases, nil
}

// scanCase scans one row of caseSelect. A row with no variant is kept so
// that a case is never dropped from a read; a row with both is rejected.
func scanCase(rows *sql.Rows) (ir.Case, error) {
	var (
		c                 ir.Case
		birthType         sql.NullString
		liveNID, adoptNID sql.NullString
		liveAge, adoptAge sql.NullInt64
	)
	if err := rows.Scan(
		&c.ID, &c.Code, &c.ValidationCode,
		&birthType,
		&liveNID, &liveAge,
		&adoptNID, &adoptAge,
	); err != nil {
		return ir.Case{}, fmt.Errorf("scan case: %w", err)
	}

	c.Child.CaseID = c.ID
	c.Child.BirthType = ir.BirthType(birthType.String)
	if liveNID.Valid {
		c.Child.LiveBirth = &ir.LiveBirth{NationalID: liveNID.String, Age: liveAge.Int64}
	}
	if adoptNID.Valid {
		c.Child.Adoptive = &ir.Adoptive{NationalID: adoptNID.String, Age: adoptAge.Int64}
	}

	if c.Child.LiveBirth == nil && c.Child.Adoptive == nil {
		return c, nil
	}
	if err := c.Child.Validate(); err != nil {
		return ir.Case{}, fmt.Errorf("case %d: %w", c.ID, err)
	}
	return c, nil
}
