// Package store defines the table-store contract shared by the seeding
// components and the adapters that implement it.
package store

import (
	"context"
)

// Table names of the content schema.
const (
	TableLessons        = "lessons"
	TableLessonItems    = "lesson_items"
	TableDictionary     = "dictionary"
	TableAlphabet       = "alphabet"
	TableModules        = "modules"
	TableStudyMaterials = "study_materials"
	TableUserSRS        = "user_srs"
	TableUserSRSItems   = "user_srs_items"
)

// Row is one record keyed by column name.
type Row map[string]any

// Op is a filter comparison.
type Op string

const (
	OpEq  Op = "eq"
	OpNeq Op = "neq"
	OpIn  Op = "in"
)

// Filter restricts a select or delete to matching rows.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

// Eq matches rows where column equals value.
func Eq(column string, value any) Filter { return Filter{Column: column, Op: OpEq, Value: value} }

// Neq matches rows where column differs from value.
func Neq(column string, value any) Filter { return Filter{Column: column, Op: OpNeq, Value: value} }

// In matches rows where column is one of values.
func In(column string, values []any) Filter { return Filter{Column: column, Op: OpIn, Value: values} }

// Query selects rows. Empty Columns selects every column; Limit 0 means no limit.
type Query struct {
	Columns []string
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

// ContentStore is the remote table store: upsert-by-key, insert,
// delete-by-filter and select-by-filter. Upsert and Insert return the
// stored representation of the written rows, including generated ids.
type ContentStore interface {
	Upsert(ctx context.Context, table string, rows []Row, onConflict string) ([]Row, error)
	Insert(ctx context.Context, table string, rows []Row) ([]Row, error)
	Delete(ctx context.Context, table string, filters ...Filter) (int, error)
	Select(ctx context.Context, table string, q Query) ([]Row, error)
}

// Transactor is implemented by stores that can run a group of calls
// atomically.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RunInTx runs fn inside a transaction when s supports one, and directly
// otherwise.
func RunInTx(ctx context.Context, s ContentStore, fn func(ctx context.Context) error) error {
	if tx, ok := s.(Transactor); ok {
		return tx.RunInTx(ctx, fn)
	}
	return fn(ctx)
}

// Int64 reads an integer column that may have been decoded as any numeric type.
func (r Row) Int64(column string) (int64, bool) {
	switch v := r[column].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		return int64(v), true
	case float32:
		return int64(v), true
	}
	return 0, false
}

// String reads a text column; nil and non-string values yield "".
func (r Row) String(column string) string {
	s, _ := r[column].(string)
	return s
}
