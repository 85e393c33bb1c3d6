package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/polyquery/internal/ir"
	"github.com/roach88/polyquery/internal/queryir"
	"github.com/roach88/polyquery/internal/querysql"
	"github.com/roach88/polyquery/internal/resolver"
)

func search(t *testing.T, s *Store, op string, c resolver.Criteria, mode querysql.Mode) []string {
	t.Helper()
	q, err := resolver.Build(op, c)
	require.NoError(t, err)
	cases, err := s.Search(context.Background(), q, mode)
	require.NoError(t, err)
	return codes(cases)
}

func TestSearch_AllAbsentMatchesEverything(t *testing.T) {
	s := createTestStore(t)
	seedCanonical(t, s)

	for _, op := range resolver.Names() {
		t.Run(op, func(t *testing.T) {
			got := search(t, s, op, resolver.Criteria{}, querysql.ModeStrict)
			switch op {
			case "live-nid", "live-age":
				assert.Equal(t, []string{"caseid-1"}, got)
			case "adopt-nid", "adopt-age":
				assert.Equal(t, []string{"caseid-2"}, got)
			default:
				assert.Equal(t, []string{"caseid-1", "caseid-2"}, got)
			}
		})
	}
}

func TestSearch_BaseTableOps(t *testing.T) {
	s := createTestStore(t)
	seedCanonical(t, s)

	got := search(t, s, "code-or-validation",
		resolver.Criteria{Code: ptr("caseid-1"), Validation: ptr("VAL-2")}, querysql.ModeStrict)
	assert.Equal(t, []string{"caseid-1", "caseid-2"}, got)

	got = search(t, s, "code-or-validation",
		resolver.Criteria{Validation: ptr("VAL-2")}, querysql.ModeStrict)
	assert.Equal(t, []string{"caseid-2"}, got)

	bt := ir.BirthAdoptive
	got = search(t, s, "code-or-birth-type",
		resolver.Criteria{BirthType: &bt}, querysql.ModeStrict)
	assert.Equal(t, []string{"caseid-2"}, got)
}

func TestSearch_NaiveFormUnderMatches(t *testing.T) {
	s := createTestStore(t)
	seedCanonical(t, s)

	for _, nid := range []string{"T1111111A", "T2222222B"} {
		c := resolver.Criteria{Code: ptr("no-such-code"), NationalID: ptr(nid)}

		sub := search(t, s, "code-or-nid", c, querysql.ModeStrict)
		assert.Len(t, sub, 1, "subquery form finds %s", nid)

		naive := search(t, s, "code-or-nid-naive", c, querysql.ModeLenient)
		assert.Empty(t, naive, "naive form must not find %s", nid)
	}

	// The case code clause still works in the naive form.
	naive := search(t, s, "code-or-nid-naive",
		resolver.Criteria{Code: ptr("caseid-2"), NationalID: ptr("T1111111A")}, querysql.ModeLenient)
	assert.Equal(t, []string{"caseid-2"}, naive)
}

func TestSearch_NaiveFormStrictFails(t *testing.T) {
	s := createTestStore(t)
	seedCanonical(t, s)

	q, err := resolver.Build("code-or-nid-naive", resolver.Criteria{NationalID: ptr("T1111111A")})
	require.NoError(t, err)

	_, err = s.Search(context.Background(), q, querysql.ModeStrict)
	assert.ErrorIs(t, err, queryir.ErrUnreachablePath)
}

func TestSearch_SaveThenFindByNationalID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	c := ir.NewLiveBirthCase("CASE-RT", "", ir.BirthNormal, "T5555555E", 5)
	require.NoError(t, s.SaveCase(ctx, c))
	require.NoError(t, s.SaveCase(ctx, ir.NewAdoptiveCase("CASE-OTHER", "", ir.BirthAdoptive, "T6666666F", 6)))

	q := resolver.CaseQuery(resolver.ByCaseCodeOrChildNationalID(nil, ptr("T5555555E")))
	cases, err := s.Search(ctx, q, querysql.ModeStrict)
	require.NoError(t, err)

	require.Len(t, cases, 1)
	assert.Equal(t, c.ID, cases[0].ID)
	assert.Equal(t, "T5555555E", cases[0].Child.NationalID())
}

func TestSearch_VariantAges(t *testing.T) {
	s := createTestStore(t)
	seedCanonical(t, s)

	assert.Equal(t, []string{"caseid-2"},
		search(t, s, "adopt-age", resolver.Criteria{Age: ptr(int64(22))}, querysql.ModeStrict))
	assert.Equal(t, []string{"caseid-1"},
		search(t, s, "live-age", resolver.Criteria{Age: ptr(int64(11))}, querysql.ModeStrict))

	// Cross-variant: no live-birth child is 22, no adoptive child is 11.
	assert.Empty(t,
		search(t, s, "live-age", resolver.Criteria{Age: ptr(int64(22))}, querysql.ModeStrict))
	assert.Empty(t,
		search(t, s, "adopt-age", resolver.Criteria{Age: ptr(int64(11))}, querysql.ModeStrict))
}

func TestSearch_VariantNationalIDs(t *testing.T) {
	s := createTestStore(t)
	seedCanonical(t, s)

	assert.Equal(t, []string{"caseid-1"},
		search(t, s, "live-nid", resolver.Criteria{NationalID: ptr("T1111111A")}, querysql.ModeStrict))
	assert.Empty(t,
		search(t, s, "adopt-nid", resolver.Criteria{NationalID: ptr("T1111111A")}, querysql.ModeStrict))
}

func TestSearch_JoinAndSubqueryFormsAgree(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seedCanonical(t, s)
	require.NoError(t, s.SaveCase(ctx, ir.NewLiveBirthCase("caseid-3", "", ir.BirthPrebirth, "T2222222B", 3)))

	criteria := []resolver.Criteria{
		{NationalID: ptr("T1111111A")},
		{NationalID: ptr("T2222222B")},
		{NationalID: ptr("nobody")},
		{Code: ptr("caseid-1"), NationalID: ptr("T2222222B")},
		{Code: ptr("caseid-3")},
		{},
	}

	for _, c := range criteria {
		sub := search(t, s, "code-or-nid", c, querysql.ModeStrict)
		joined := search(t, s, "code-or-nid-joined", c, querysql.ModeStrict)
		assert.Equal(t, sub, joined, "criteria %+v", c)
	}

	// The naive predicate is reachable, and agrees, once both variants are joined.
	q := resolver.ExplicitJoinQuery(resolver.ByCaseCodeOrChildNationalIDNaive(nil, ptr("T2222222B")))
	cases, err := s.Search(ctx, q, querysql.ModeStrict)
	require.NoError(t, err)
	assert.Equal(t, []string{"caseid-2", "caseid-3"}, codes(cases))
}

func TestSearch_CaseWithoutChildIsNotLost(t *testing.T) {
	s := createTestStore(t)
	seedCanonical(t, s)
	_, err := s.db.ExecContext(context.Background(),
		"INSERT INTO gpls_case (case_code, validation_code) VALUES ('bare-1', 'VAL-B')")
	require.NoError(t, err)

	got := search(t, s, "code-or-nid", resolver.Criteria{}, querysql.ModeStrict)
	assert.Equal(t, []string{"caseid-1", "caseid-2", "bare-1"}, got)

	got = search(t, s, "code-or-validation", resolver.Criteria{Validation: ptr("VAL-B")}, querysql.ModeStrict)
	assert.Equal(t, []string{"bare-1"}, got)
}

// bulkSeed inserts n live-birth cases in one statement per table.
func bulkSeed(t *testing.T, s *Store, n int) {
	t.Helper()
	ctx := context.Background()
	stmts := []string{
		`WITH RECURSIVE seq(n) AS (SELECT 1 UNION ALL SELECT n + 1 FROM seq WHERE n < ?)
		 INSERT INTO gpls_case (id, case_code, validation_code) SELECT n, 'bulk-' || n, 'BULK' FROM seq`,
		`INSERT INTO child_info (id, birth_type) SELECT id, 'N' FROM gpls_case`,
		`INSERT INTO child_info_live_birth (id, national_id, live_age) SELECT id, 'B' || id, 1 FROM gpls_case`,
	}
	for i, stmt := range stmts {
		var err error
		if i == 0 {
			_, err = s.db.ExecContext(ctx, stmt, n)
		} else {
			_, err = s.db.ExecContext(ctx, stmt)
		}
		require.NoError(t, err)
	}
}

func TestSearch_LargeResultHydratesInBatches(t *testing.T) {
	if testing.Short() {
		t.Skip("bulk seed")
	}
	const n = 40000
	s := createTestStore(t)
	bulkSeed(t, s, n)

	q, err := resolver.Build("code-or-nid", resolver.Criteria{})
	require.NoError(t, err)
	cases, err := s.Search(context.Background(), q, querysql.ModeStrict)
	require.NoError(t, err)
	require.Len(t, cases, n)
	assert.Equal(t, "bulk-1", cases[0].Code)
	assert.Equal(t, "bulk-40000", cases[n-1].Code)
	for i := 1; i < len(cases); i++ {
		if cases[i-1].ID >= cases[i].ID {
			t.Fatalf("cases out of order at %d: %d then %d", i, cases[i-1].ID, cases[i].ID)
		}
	}
	assert.Equal(t, "B40000", cases[n-1].Child.NationalID())
}

func TestSearch_CodeAndBirthTypePairs(t *testing.T) {
	s := createTestStore(t)
	seedCanonical(t, s)
	ctx := context.Background()
	normal, adoptive := ir.BirthNormal, ir.BirthAdoptive

	pairs := func(p ...resolver.CodeBirthType) []string {
		t.Helper()
		cases, err := s.Search(ctx, resolver.CaseQuery(resolver.ByCaseCodeAndBirthTypePairs(p...)), querysql.ModeStrict)
		require.NoError(t, err)
		return codes(cases)
	}

	assert.Equal(t, []string{"caseid-1", "caseid-2"}, pairs(
		resolver.CodeBirthType{Code: ptr("caseid-1"), BirthType: &normal},
		resolver.CodeBirthType{Code: ptr("caseid-2"), BirthType: &adoptive},
	))
	assert.Equal(t, []string{"caseid-2"}, pairs(
		resolver.CodeBirthType{Code: ptr("caseid-1"), BirthType: &adoptive},
		resolver.CodeBirthType{Code: ptr("caseid-2"), BirthType: &adoptive},
	))

	got := search(t, s, "code-and-birth-type", resolver.Criteria{Code: ptr("caseid-1"), BirthType: &adoptive}, querysql.ModeStrict)
	assert.Empty(t, got)
	got = search(t, s, "code-and-birth-type", resolver.Criteria{Code: ptr("caseid-1"), BirthType: &normal}, querysql.ModeStrict)
	assert.Equal(t, []string{"caseid-1"}, got)
}
