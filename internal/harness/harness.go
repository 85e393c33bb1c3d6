package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/polyquery/internal/fixtures"
	"github.com/roach88/polyquery/internal/ir"
	"github.com/roach88/polyquery/internal/queryir"
	"github.com/roach88/polyquery/internal/querysql"
	"github.com/roach88/polyquery/internal/resolver"
	"github.com/roach88/polyquery/internal/schema"
	"github.com/roach88/polyquery/internal/store"
	"github.com/roach88/polyquery/internal/testutil"
)

// Harness runs scenario steps against one store.
type Harness struct {
	store  *store.Store
	codes  *testutil.SequenceCodeGenerator
	logger *slog.Logger
}

// Option configures Run.
type Option func(*Harness)

// WithLogger sets the harness logger. Logs are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Seed fixtures, inline cases, or the default cases
// 3. Run every step and compare with its expectation
// 4. Return result with pass/fail, per-step SQL and codes, and errors
//
// An error is returned only when the scenario cannot be set up; failing
// steps are reported in the result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		codes:  testutil.NewSequenceCodeGenerator("GEN"),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs by default
	}
	for _, opt := range opts {
		opt(h)
	}

	st, err := store.Open(ctx, store.Config{
		Driver: store.DriverSQLite,
		DSN:    ":memory:",
		Logger: h.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()
	h.store = st

	result := NewResult()

	cases, err := h.collectCases(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load cases: %w", err)
	}
	n, err := fixtures.Seed(ctx, st, cases)
	if err != nil {
		return nil, fmt.Errorf("failed to seed: %w", err)
	}
	result.Seeded = n

	for _, step := range scenario.Steps {
		sr := h.runStep(ctx, step)
		if !sr.Pass {
			result.AddError(fmt.Sprintf("step %q: %s", step.Name, describeFailure(step, sr)))
		}
		result.Steps = append(result.Steps, sr)

		h.logger.Info("step completed",
			"scenario", scenario.Name,
			"step", step.Name,
			"pass", sr.Pass,
		)
	}

	return result, nil
}

// collectCases gathers the cases to seed in file order, then inline cases.
func (h *Harness) collectCases(scenario *Scenario) ([]*ir.Case, error) {
	if len(scenario.Fixtures) == 0 && len(scenario.Cases) == 0 {
		return fixtures.Defaults(), nil
	}

	var cases []*ir.Case
	for _, path := range scenario.Fixtures {
		f, err := fixtures.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		fc, err := f.ToCases(h.codes)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cases = append(cases, fc...)
	}

	inline, err := fixtures.File{Cases: scenario.Cases}.ToCases(h.codes)
	if err != nil {
		return nil, fmt.Errorf("inline cases: %w", err)
	}
	return append(cases, inline...), nil
}

// runStep compiles and executes one step. It never returns an error;
// failures are recorded in the step result.
func (h *Harness) runStep(ctx context.Context, step Step) StepResult {
	mode, _ := querysql.ParseMode(step.Mode) // validated at load
	sr := StepResult{
		Name:  step.Name,
		Query: step.Query,
		Mode:  mode.String(),
		Codes: []string{},
	}

	q, err := resolver.Build(step.Query, step.Criteria)
	if err != nil {
		sr.Error = err.Error()
		sr.Pass = matchesError(step, err)
		return sr
	}
	sr.Portable = queryir.Validate(schema.Default(), q).IsPortable

	sql, args, err := h.store.Compiler().WithMode(mode).Compile(q)
	if err != nil {
		sr.Error = err.Error()
		sr.Pass = matchesError(step, err)
		return sr
	}
	sr.SQL, sr.Args = sql, args

	cases, err := h.store.FindCases(ctx, sql, args)
	if err != nil {
		sr.Error = err.Error()
		sr.Pass = matchesError(step, err)
		return sr
	}
	for _, c := range cases {
		sr.Codes = append(sr.Codes, c.Code)
	}

	sr.Pass = step.ExpectError == "" && sameCodes(step.ExpectCodes, sr.Codes)
	return sr
}

func matchesError(step Step, err error) bool {
	return step.ExpectError != "" && strings.Contains(err.Error(), step.ExpectError)
}

// sameCodes compares code lists ignoring order.
func sameCodes(want, got []string) bool {
	w := slices.Clone(want)
	g := slices.Clone(got)
	slices.Sort(w)
	slices.Sort(g)
	return slices.Equal(w, g)
}

func describeFailure(step Step, sr StepResult) string {
	switch {
	case step.ExpectError != "" && sr.Error == "":
		return fmt.Sprintf("expected error containing %q, got codes %v", step.ExpectError, sr.Codes)
	case step.ExpectError != "":
		return fmt.Sprintf("expected error containing %q, got %q", step.ExpectError, sr.Error)
	case sr.Error != "":
		return fmt.Sprintf("unexpected error: %s", sr.Error)
	default:
		return fmt.Sprintf("expected codes %v, got %v", step.ExpectCodes, sr.Codes)
	}
}
