package querysql

import (
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"

	"github.com/roach88/polyquery/internal/ir"
	"github.com/roach88/polyquery/internal/queryir"
	"github.com/roach88/polyquery/internal/schema"
)

// Mode controls how unreachable references compile.
type Mode int

const (
	// ModeStrict rejects unreachable references.
	ModeStrict Mode = iota

	// ModeLenient compiles unreachable references to an unsatisfiable clause.
	ModeLenient
)

func (m Mode) String() string {
	if m == ModeLenient {
		return "lenient"
	}
	return "strict"
}

// ParseMode parses "strict" or "lenient".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "strict":
		return ModeStrict, nil
	case "lenient":
		return ModeLenient, nil
	default:
		return ModeStrict, fmt.Errorf("invalid mode %q: must be strict or lenient", s)
	}
}

const (
	sqlTrue  = "1 = 1"
	sqlFalse = "1 = 0"
)

// SQLCompiler compiles QueryIR to parameterized SQL.
//
// CRITICAL: values are never interpolated into the SQL text.
type SQLCompiler struct {
	Catalog *schema.Catalog
	Mode    Mode
	Logger  *slog.Logger
}

// NewSQLCompiler creates a strict compiler for the given catalogue.
func NewSQLCompiler(cat *schema.Catalog) *SQLCompiler {
	return &SQLCompiler{
		Catalog: cat,
		Mode:    ModeStrict,
		Logger:  slog.Default(),
	}
}

// WithMode returns a copy of the compiler using mode m.
func (c *SQLCompiler) WithMode(m Mode) *SQLCompiler {
	cp := *c
	cp.Mode = m
	return &cp
}

// Compile converts a QueryIR query to parameterized SQL.
// Returns (sql, params, error) tuple.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	var sel queryir.Select
	switch query := q.(type) {
	case queryir.Select:
		sel = query
	case *queryir.Select:
		if query == nil {
			return "", nil, errors.New("cannot compile nil query")
		}
		sel = *query
	case nil:
		return "", nil, errors.New("cannot compile nil query")
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}

	b, err := c.buildSelect(sel, false)
	if err != nil {
		return "", nil, err
	}
	return b.ToSql()
}

// buildSelect assembles a select builder. Nested selects (sub-selects) are
// not ordered.
func (c *SQLCompiler) buildSelect(sel queryir.Select, nested bool) (sq.SelectBuilder, error) {
	scope, err := queryir.NewScope(c.Catalog, sel)
	if err != nil {
		return sq.SelectBuilder{}, err
	}
	root := scope.Root()

	columns, err := c.compileColumns(scope, sel.Columns)
	if err != nil {
		return sq.SelectBuilder{}, err
	}

	// Compile predicates before assembling joins: resolving references is
	// what decides which implicit joins are needed.
	type joinClause struct {
		kind queryir.JoinKind
		sql  string
		args []any
	}
	joins := make([]joinClause, 0, len(sel.Joins))
	for _, j := range sel.Joins {
		if j.On == nil {
			return sq.SelectBuilder{}, fmt.Errorf("join to %s has no ON predicate", j.Entity)
		}
		on, err := c.compilePredicate(scope, j.On)
		if err != nil {
			return sq.SelectBuilder{}, fmt.Errorf("compile join %s: %w", j.Entity, err)
		}
		onSQL, onArgs, err := on.ToSql()
		if err != nil {
			return sq.SelectBuilder{}, fmt.Errorf("compile join %s: %w", j.Entity, err)
		}
		target := c.Catalog.MustEntity(j.Entity)
		joins = append(joins, joinClause{
			kind: j.Kind,
			sql:  fmt.Sprintf("%s ON %s", target.TableRef(), onSQL),
			args: onArgs,
		})
	}

	var where sq.Sqlizer
	if sel.Filter != nil {
		where, err = c.compilePredicate(scope, sel.Filter)
		if err != nil {
			return sq.SelectBuilder{}, fmt.Errorf("compile filter: %w", err)
		}
	}

	b := sq.Select(columns...).From(root.TableRef()).PlaceholderFormat(sq.Question)

	for _, rel := range scope.ImplicitJoins() {
		target := c.Catalog.MustEntity(rel.To)
		b = b.LeftJoin(fmt.Sprintf("%s ON %s = %s",
			target.TableRef(), target.Column(rel.ToKey), root.Column(rel.FromKey)))
	}
	for _, j := range joins {
		if j.kind == queryir.JoinLeftOuter {
			b = b.LeftJoin(j.sql, j.args...)
		} else {
			b = b.Join(j.sql, j.args...)
		}
	}

	if where != nil {
		b = b.Where(where)
	}
	if !nested {
		b = b.OrderBy(root.Column(root.Key) + " ASC")
	}
	return b, nil
}

// compileColumns returns the projection, defaulting to the root key.
func (c *SQLCompiler) compileColumns(scope *queryir.Scope, cols []schema.Field) ([]string, error) {
	if len(cols) == 0 {
		root := scope.Root()
		return []string{root.Column(root.Key)}, nil
	}
	out := make([]string, 0, len(cols))
	for _, f := range cols {
		e, err := scope.ResolveField(f)
		if err != nil {
			return nil, fmt.Errorf("compile columns: %w", err)
		}
		out = append(out, e.Column(f.Column))
	}
	return out, nil
}

// compilePredicate compiles a predicate to a squirrel expression.
// CRITICAL: values are NEVER interpolated - always ? placeholders.
func (c *SQLCompiler) compilePredicate(scope *queryir.Scope, p queryir.Predicate) (sq.Sqlizer, error) {
	switch pred := queryir.Normalize(p).(type) {
	case nil:
		return sq.Expr(sqlTrue), nil
	case queryir.True:
		return sq.Expr(sqlTrue), nil
	case queryir.Equals:
		return c.compileEquals(scope, pred.Field, pred.Value)
	case queryir.FieldEquals:
		return c.compileFieldEquals(scope, pred)
	case queryir.PathEquals:
		return c.compilePath(scope, pred)
	case queryir.In:
		return c.compileIn(scope, pred)
	case queryir.And:
		if len(pred.Predicates) == 0 {
			return sq.Expr(sqlTrue), nil // Vacuous truth
		}
		parts, err := c.compileAll(scope, pred.Predicates)
		if err != nil {
			return nil, err
		}
		return sq.And(parts), nil
	case queryir.Or:
		if len(pred.Predicates) == 0 {
			return sq.Expr(sqlFalse), nil
		}
		parts, err := c.compileAll(scope, pred.Predicates)
		if err != nil {
			return nil, err
		}
		return sq.Or(parts), nil
	default:
		return nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *SQLCompiler) compileAll(scope *queryir.Scope, preds []queryir.Predicate) ([]sq.Sqlizer, error) {
	parts := make([]sq.Sqlizer, 0, len(preds))
	for _, p := range preds {
		part, err := c.compilePredicate(scope, p)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, nil
}

// compileEquals compiles "column = ?". IRNull compiles to "column IS NULL".
func (c *SQLCompiler) compileEquals(scope *queryir.Scope, f schema.Field, v ir.IRValue) (sq.Sqlizer, error) {
	e, err := scope.ResolveField(f)
	if err != nil {
		return c.unreachable(f.String(), err)
	}
	param, err := ir.ToParam(v)
	if err != nil {
		return nil, fmt.Errorf("convert value for %s: %w", f, err)
	}
	return sq.Eq{e.Column(f.Column): param}, nil
}

func (c *SQLCompiler) compileFieldEquals(scope *queryir.Scope, fe queryir.FieldEquals) (sq.Sqlizer, error) {
	left, err := scope.ResolveField(fe.Left)
	if err != nil {
		return c.unreachable(fe.Left.String(), err)
	}
	right, err := scope.ResolveField(fe.Right)
	if err != nil {
		return c.unreachable(fe.Right.String(), err)
	}
	return sq.Expr(left.Column(fe.Left.Column) + " = " + right.Column(fe.Right.Column)), nil
}

// compilePath expands a relation path. A polymorphic attribute becomes an
// OR over the joined variants that declare it.
func (c *SQLCompiler) compilePath(scope *queryir.Scope, pe queryir.PathEquals) (sq.Sqlizer, error) {
	fields, missing, err := scope.ExpandPath(pe.Path)
	if err != nil {
		return c.unreachable(pe.Path.String(), err)
	}
	if len(missing) > 0 {
		uerr := &queryir.UnreachableError{Ref: pe.Path.String(), Missing: missing}
		if c.Mode == ModeStrict {
			return nil, uerr
		}
		c.logger().Warn("unreachable polymorphic path compiled as no-match",
			"path", pe.Path.String(),
			"missing", missing,
		)
	}

	switch len(fields) {
	case 0:
		return sq.Expr(sqlFalse), nil
	case 1:
		return c.compileEquals(scope, fields[0], pe.Value)
	}
	parts := make([]sq.Sqlizer, 0, len(fields))
	for _, f := range fields {
		part, err := c.compileEquals(scope, f, pe.Value)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return sq.Or(parts), nil
}

// compileIn compiles "column IN (sub-select)".
func (c *SQLCompiler) compileIn(scope *queryir.Scope, in queryir.In) (sq.Sqlizer, error) {
	e, err := scope.ResolveField(in.Field)
	if err != nil {
		return c.unreachable(in.Field.String(), err)
	}
	if len(in.Sub.Columns) > 1 {
		return nil, fmt.Errorf("sub-select on %s projects %d columns, want 1", in.Sub.From, len(in.Sub.Columns))
	}
	sub, err := c.buildSelect(in.Sub, true)
	if err != nil {
		return nil, fmt.Errorf("compile sub-select on %s: %w", in.Sub.From, err)
	}
	subSQL, subArgs, err := sub.ToSql()
	if err != nil {
		return nil, fmt.Errorf("compile sub-select on %s: %w", in.Sub.From, err)
	}
	return sq.Expr(fmt.Sprintf("%s IN (%s)", e.Column(in.Field.Column), subSQL), subArgs...), nil
}

// unreachable applies the mode to a failed resolution. Unknown references
// always fail; unreachable ones fail only in strict mode.
func (c *SQLCompiler) unreachable(ref string, err error) (sq.Sqlizer, error) {
	if c.Mode == ModeLenient && errors.Is(err, queryir.ErrUnreachablePath) {
		c.logger().Warn("unreachable reference compiled as no-match", "ref", ref, "error", err)
		return sq.Expr(sqlFalse), nil
	}
	return nil, err
}

func (c *SQLCompiler) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
