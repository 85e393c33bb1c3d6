package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/polyquery/internal/ir"
	"github.com/roach88/polyquery/internal/testutil"
)

// createTestStore creates a new migrated SQLite store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), Config{
		Driver: DriverSQLite,
		DSN:    path,
		Logger: testutil.NewTestLogger(t),
	})
	require.NoError(t, err, "Open() failed")
	t.Cleanup(func() { s.Close() })
	return s
}

// seedCanonical saves the two cases used throughout the tests:
// caseid-1 (live birth T1111111A, age 11) and caseid-2 (adoptive T2222222B, age 22).
func seedCanonical(t *testing.T, s *Store) (live, adopt *ir.Case) {
	t.Helper()
	ctx := context.Background()

	live = ir.NewLiveBirthCase("caseid-1", "VAL-1", ir.BirthNormal, "T1111111A", 11)
	require.NoError(t, s.SaveCase(ctx, live))

	adopt = ir.NewAdoptiveCase("caseid-2", "VAL-2", ir.BirthAdoptive, "T2222222B", 22)
	require.NoError(t, s.SaveCase(ctx, adopt))

	return live, adopt
}

func codes(cases []ir.Case) []string {
	out := make([]string, 0, len(cases))
	for _, c := range cases {
		out = append(out, c.Code)
	}
	return out
}

func ptr[T any](v T) *T { return &v }
