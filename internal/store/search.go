package store

import (
	"context"
	"fmt"

	"github.com/roach88/polyquery/internal/ir"
	"github.com/roach88/polyquery/internal/queryir"
	"github.com/roach88/polyquery/internal/querysql"
)

// Search compiles q in the given mode and returns the matching cases.
func (s *Store) Search(ctx context.Context, q queryir.Query, mode querysql.Mode) ([]ir.Case, error) {
	query, args, err := s.compiler.WithMode(mode).Compile(q)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	s.logger.Debug("search",
		"mode", mode.String(),
		"sql", query,
		"args", args,
	)

	cases, err := s.FindCases(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return cases, nil
}
