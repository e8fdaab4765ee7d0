package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/heartmarshall/khmer-content/internal/store"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// knownTables is the set of tables the store will address. Anything else
// is reported as store.ErrTableNotFound without a round trip.
var knownTables = map[string]bool{
	store.TableLessons:        true,
	store.TableLessonItems:    true,
	store.TableDictionary:     true,
	store.TableAlphabet:       true,
	store.TableModules:        true,
	store.TableStudyMaterials: true,
	store.TableUserSRS:        true,
	store.TableUserSRSItems:   true,
}

// Store implements store.ContentStore directly against PostgreSQL.
type Store struct {
	db  DB
	tx  *TxManager
	log *slog.Logger
}

var (
	_ store.ContentStore = (*Store)(nil)
	_ store.Transactor   = (*Store)(nil)
)

// NewStore creates a Store over db.
func NewStore(db DB, logger *slog.Logger) *Store {
	return &Store{
		db:  db,
		tx:  NewTxManager(db),
		log: logger.With("adapter", "postgres"),
	}
}

// RunInTx runs fn in one transaction; store calls made with the context
// passed to fn join it.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.tx.RunInTx(ctx, fn)
}

func (s *Store) Upsert(ctx context.Context, table string, rows []store.Row, onConflict string) ([]store.Row, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	if err := checkTable(table); err != nil {
		return nil, err
	}

	conflict := splitColumns(onConflict)
	if len(conflict) == 0 {
		conflict = []string{"id"}
	}
	cols := columnSet(rows)

	keys := make(map[string]bool, len(conflict))
	for _, c := range conflict {
		keys[c] = true
	}
	var set []string
	for _, c := range cols {
		if !keys[c] {
			set = append(set, ident(c)+" = EXCLUDED."+ident(c))
		}
	}
	if len(set) == 0 {
		// Keep DO UPDATE so RETURNING yields the existing row.
		set = append(set, ident(conflict[0])+" = EXCLUDED."+ident(conflict[0]))
	}

	b := insertBuilder(table, cols, rows).
		Suffix(fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s RETURNING *",
			identList(conflict), strings.Join(set, ", ")))

	return s.queryRows(ctx, "upsert", table, b)
}

func (s *Store) Insert(ctx context.Context, table string, rows []store.Row) ([]store.Row, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	if err := checkTable(table); err != nil {
		return nil, err
	}

	b := insertBuilder(table, columnSet(rows), rows).Suffix("RETURNING *")
	return s.queryRows(ctx, "insert", table, b)
}

func (s *Store) Delete(ctx context.Context, table string, filters ...store.Filter) (int, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	if len(filters) == 0 {
		return 0, fmt.Errorf("delete %s: at least one filter is required", table)
	}

	b := psql.Delete(ident(table))
	for _, f := range filters {
		pred, err := predicate(f)
		if err != nil {
			return 0, fmt.Errorf("delete %s: %w", table, err)
		}
		b = b.Where(pred)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("delete %s: build query: %w", table, err)
	}

	tag, err := QuerierFromCtx(ctx, s.db).Exec(ctx, query, args...)
	if err != nil {
		return 0, mapError(err, "delete", table)
	}

	s.log.DebugContext(ctx, "rows deleted", slog.String("table", table), slog.Int64("count", tag.RowsAffected()))
	return int(tag.RowsAffected()), nil
}

func (s *Store) Select(ctx context.Context, table string, q store.Query) ([]store.Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	cols := []string{"*"}
	if len(q.Columns) > 0 {
		cols = make([]string, len(q.Columns))
		for i, c := range q.Columns {
			cols[i] = ident(c)
		}
	}

	b := psql.Select(cols...).From(ident(table))
	for _, f := range q.Filters {
		pred, err := predicate(f)
		if err != nil {
			return nil, fmt.Errorf("select %s: %w", table, err)
		}
		b = b.Where(pred)
	}
	if q.OrderBy != "" {
		dir := " ASC"
		if q.Desc {
			dir = " DESC"
		}
		b = b.OrderBy(ident(q.OrderBy) + dir)
	}
	if q.Limit > 0 {
		b = b.Limit(uint64(q.Limit))
	}

	return s.queryRows(ctx, "select", table, b)
}

func (s *Store) queryRows(ctx context.Context, op, table string, b sq.Sqlizer) ([]store.Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s %s: build query: %w", op, table, err)
	}

	var scanned []map[string]any
	if err := pgxscan.Select(ctx, QuerierFromCtx(ctx, s.db), &scanned, query, args...); err != nil {
		return nil, mapError(err, op, table)
	}

	out := make([]store.Row, len(scanned))
	for i, m := range scanned {
		out[i] = store.Row(m)
	}
	return out, nil
}

// insertBuilder renders a multi-row INSERT. Columns missing from a row take
// their DEFAULT.
func insertBuilder(table string, cols []string, rows []store.Row) sq.InsertBuilder {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = ident(c)
	}

	b := psql.Insert(ident(table)).Columns(quoted...)
	for _, r := range rows {
		vals := make([]any, len(cols))
		for i, c := range cols {
			v, ok := r[c]
			if !ok {
				vals[i] = sq.Expr("DEFAULT")
				continue
			}
			vals[i] = v
		}
		b = b.Values(vals...)
	}
	return b
}

func predicate(f store.Filter) (sq.Sqlizer, error) {
	if f.Column == "" {
		return nil, fmt.Errorf("filter without column")
	}
	col := ident(f.Column)
	switch f.Op {
	case store.OpEq:
		return sq.Eq{col: f.Value}, nil
	case store.OpNeq:
		return sq.NotEq{col: f.Value}, nil
	case store.OpIn:
		values, ok := f.Value.([]any)
		if !ok {
			return nil, fmt.Errorf("filter %s: in expects a list, got %T", f.Column, f.Value)
		}
		return sq.Eq{col: values}, nil
	}
	return nil, fmt.Errorf("filter %s: unsupported operator %q", f.Column, f.Op)
}

func checkTable(table string) error {
	if !knownTables[table] {
		return fmt.Errorf("table %q: %w", table, store.ErrTableNotFound)
	}
	return nil
}

// columnSet returns the sorted union of column names across rows.
func columnSet(rows []store.Row) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range rows {
		for c := range r {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	sort.Strings(cols)
	return cols
}

func splitColumns(s string) []string {
	var cols []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func identList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = ident(n)
	}
	return strings.Join(quoted, ", ")
}
