// Package memory is an in-process ContentStore. It backs dry runs and
// tests, and enforces the same referential rules as the real schema.
package memory

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/heartmarshall/khmer-content/internal/domain"
	"github.com/heartmarshall/khmer-content/internal/store"
)

// Reference declares that Table.Column points at RefTable.RefColumn.
type Reference struct {
	Table     string
	Column    string
	RefTable  string
	RefColumn string
}

// Call is one recorded store operation.
type Call struct {
	Op    string
	Table string
	Rows  int
}

// ContentReferences mirrors the foreign keys of the content schema.
var ContentReferences = []Reference{
	{Table: store.TableLessonItems, Column: "lesson_id", RefTable: store.TableLessons, RefColumn: "id"},
	{Table: store.TableUserSRS, Column: "item_id", RefTable: store.TableLessonItems, RefColumn: "id"},
	{Table: store.TableUserSRSItems, Column: "item_id", RefTable: store.TableLessonItems, RefColumn: "id"},
}

// Store keeps tables as JSON-normalized rows, so values read back have the
// same shapes a REST store returns (numbers as float64, objects as maps).
type Store struct {
	mu     sync.Mutex
	tables map[string][]store.Row
	nextID map[string]int64
	refs   []Reference
	fail   map[string][]error
	calls  []Call
}

// New creates a store holding the named empty tables.
func New(refs []Reference, tables ...string) *Store {
	s := &Store{
		tables: make(map[string][]store.Row, len(tables)),
		nextID: make(map[string]int64),
		refs:   refs,
		fail:   make(map[string][]error),
	}
	for _, t := range tables {
		s.tables[t] = nil
	}
	return s
}

// NewContentStore creates every table of the content schema with its references.
func NewContentStore() *Store {
	return New(ContentReferences,
		store.TableLessons,
		store.TableLessonItems,
		store.TableDictionary,
		store.TableAlphabet,
		store.TableModules,
		store.TableStudyMaterials,
		store.TableUserSRS,
		store.TableUserSRSItems,
	)
}

// DropTable removes a table; later calls addressing it fail with ErrTableNotFound.
func (s *Store) DropTable(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, name)
}

// FailNext queues errors returned by the next calls of op on table, one per call.
func (s *Store) FailNext(op, table string, errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := op + ":" + table
	s.fail[key] = append(s.fail[key], errs...)
}

// Calls returns the recorded operations in order.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// CountCalls returns how many times op was called on table.
func (s *Store) CountCalls(op, table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Op == op && c.Table == table {
			n++
		}
	}
	return n
}

// Rows returns a copy of every row in table.
func (s *Store) Rows(table string) []store.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.tables[table]
	out := make([]store.Row, len(rows))
	for i, r := range rows {
		out[i] = copyRow(r)
	}
	return out
}

// Seed appends rows directly, bypassing references and the call log.
func (s *Store) Seed(table string, rows ...store.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		r = normalizeRow(r)
		s.ensureID(table, r)
		s.tables[table] = append(s.tables[table], r)
	}
}

func (s *Store) Upsert(_ context.Context, table string, rows []store.Row, onConflict string) ([]store.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin("upsert", table, len(rows)); err != nil {
		return nil, err
	}
	if onConflict == "" {
		onConflict = "id"
	}

	out := make([]store.Row, 0, len(rows))
	for _, r := range rows {
		r = normalizeRow(r)
		if err := s.checkOutgoing(table, r); err != nil {
			return out, err
		}
		if idx := s.find(table, onConflict, r[onConflict]); idx >= 0 {
			existing := s.tables[table][idx]
			for k, v := range r {
				existing[k] = v
			}
			out = append(out, copyRow(existing))
			continue
		}
		s.ensureID(table, r)
		s.tables[table] = append(s.tables[table], r)
		out = append(out, copyRow(r))
	}
	return out, nil
}

func (s *Store) Insert(_ context.Context, table string, rows []store.Row) ([]store.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin("insert", table, len(rows)); err != nil {
		return nil, err
	}

	out := make([]store.Row, 0, len(rows))
	for _, r := range rows {
		r = normalizeRow(r)
		if err := s.checkOutgoing(table, r); err != nil {
			return out, err
		}
		if id, ok := r["id"]; ok && s.find(table, "id", id) >= 0 {
			return out, fmt.Errorf("insert %s id %v: %w", table, id, domain.ErrAlreadyExists)
		}
		s.ensureID(table, r)
		s.tables[table] = append(s.tables[table], r)
		out = append(out, copyRow(r))
	}
	return out, nil
}

func (s *Store) Delete(_ context.Context, table string, filters ...store.Filter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin("delete", table, 0); err != nil {
		return 0, err
	}

	var keep, drop []store.Row
	for _, r := range s.tables[table] {
		if matches(r, filters) {
			drop = append(drop, r)
		} else {
			keep = append(keep, r)
		}
	}

	for _, ref := range s.refs {
		if ref.RefTable != table {
			continue
		}
		children, ok := s.tables[ref.Table]
		if !ok {
			continue
		}
		for _, parent := range drop {
			for _, child := range children {
				if sameValue(child[ref.Column], parent[ref.RefColumn]) {
					return 0, fmt.Errorf("delete %s: referenced by %s.%s: %w", table, ref.Table, ref.Column, store.ErrForeignKey)
				}
			}
		}
	}

	s.tables[table] = keep
	return len(drop), nil
}

func (s *Store) Select(_ context.Context, table string, q store.Query) ([]store.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.begin("select", table, 0); err != nil {
		return nil, err
	}

	var out []store.Row
	for _, r := range s.tables[table] {
		if matches(r, q.Filters) {
			out = append(out, project(r, q.Columns))
		}
	}

	if q.OrderBy != "" {
		col := q.OrderBy
		slices.SortStableFunc(out, func(a, b store.Row) int {
			c := compareValues(a[col], b[col])
			if q.Desc {
				return -c
			}
			return c
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// begin records the call, returns a queued failure if any, and checks the table exists.
func (s *Store) begin(op, table string, rows int) error {
	s.calls = append(s.calls, Call{Op: op, Table: table, Rows: rows})

	key := op + ":" + table
	if q := s.fail[key]; len(q) > 0 {
		err := q[0]
		s.fail[key] = q[1:]
		if err != nil {
			return err
		}
	}
	if _, ok := s.tables[table]; !ok {
		return fmt.Errorf("%s %s: %w", op, table, store.ErrTableNotFound)
	}
	return nil
}

// checkOutgoing verifies that r's references point at existing rows.
func (s *Store) checkOutgoing(table string, r store.Row) error {
	for _, ref := range s.refs {
		if ref.Table != table {
			continue
		}
		v, ok := r[ref.Column]
		if !ok || v == nil {
			continue
		}
		if s.find(ref.RefTable, ref.RefColumn, v) < 0 {
			return fmt.Errorf("write %s.%s=%v: %w", table, ref.Column, v, store.ErrForeignKey)
		}
	}
	return nil
}

func (s *Store) find(table, column string, v any) int {
	if v == nil {
		return -1
	}
	for i, r := range s.tables[table] {
		if sameValue(r[column], v) {
			return i
		}
	}
	return -1
}

func (s *Store) ensureID(table string, r store.Row) {
	if id, ok := r.Int64("id"); ok {
		if id > s.nextID[table] {
			s.nextID[table] = id
		}
		return
	}
	if _, ok := r["id"]; ok {
		return
	}
	s.nextID[table]++
	r["id"] = float64(s.nextID[table])
}

func matches(r store.Row, filters []store.Filter) bool {
	for _, f := range filters {
		switch f.Op {
		case store.OpEq:
			if !sameValue(r[f.Column], f.Value) {
				return false
			}
		case store.OpNeq:
			if sameValue(r[f.Column], f.Value) {
				return false
			}
		case store.OpIn:
			values, _ := f.Value.([]any)
			if !slices.ContainsFunc(values, func(v any) bool { return sameValue(r[f.Column], v) }) {
				return false
			}
		}
	}
	return true
}

func project(r store.Row, columns []string) store.Row {
	if len(columns) == 0 {
		return copyRow(r)
	}
	out := make(store.Row, len(columns))
	for _, c := range columns {
		if v, ok := r[c]; ok {
			out[c] = v
		}
	}
	return normalizeRow(out)
}

func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return keyOf(a) == keyOf(b)
}

func keyOf(v any) string {
	switch t := normalizeValue(v).(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case string:
		return t
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

func compareValues(a, b any) int {
	fa, aNum := normalizeValue(a).(float64)
	fb, bNum := normalizeValue(b).(float64)
	if aNum && bNum {
		return cmp.Compare(fa, fb)
	}
	return cmp.Compare(keyOf(a), keyOf(b))
}

func normalizeValue(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

func normalizeRow(r store.Row) store.Row {
	out := make(store.Row, len(r))
	for k, v := range r {
		out[k] = normalizeValue(v)
	}
	return out
}

func copyRow(r store.Row) store.Row {
	return normalizeRow(r)
}
