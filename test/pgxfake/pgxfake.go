// Package pgxfake provides scripted pgx.Tx and pool doubles for unit tests
// that exercise transactional code without a database.
package pgxfake

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Row answers one QueryRow call. Values are assigned to Scan destinations in
// order; a nil value leaves the destination at its zero value.
type Row struct {
	Values []any
	Err    error
}

func (r Row) Scan(dest ...any) error {
	if r.Err != nil {
		return r.Err
	}
	if len(dest) != len(r.Values) {
		return fmt.Errorf("pgxfake: scan wants %d values, row has %d", len(dest), len(r.Values))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d)
		if target.Kind() != reflect.Pointer || target.IsNil() {
			return fmt.Errorf("pgxfake: destination %d is not a pointer", i)
		}
		elem := target.Elem()
		if r.Values[i] == nil {
			elem.Set(reflect.Zero(elem.Type()))
			continue
		}
		v := reflect.ValueOf(r.Values[i])
		switch {
		case v.Type().AssignableTo(elem.Type()):
			elem.Set(v)
		case v.Type().ConvertibleTo(elem.Type()):
			elem.Set(v.Convert(elem.Type()))
		case elem.Kind() == reflect.Pointer && v.Type().ConvertibleTo(elem.Type().Elem()):
			p := reflect.New(elem.Type().Elem())
			p.Elem().Set(v.Convert(elem.Type().Elem()))
			elem.Set(p)
		default:
			return fmt.Errorf("pgxfake: cannot assign %s to %s", v.Type(), elem.Type())
		}
	}
	return nil
}

// Call records one statement issued through the Tx.
type Call struct {
	SQL  string
	Args []any
}

// Tx routes QueryRow and Exec by the first registered SQL fragment the
// statement contains.
type Tx struct {
	mu         sync.Mutex
	rows       []scripted
	execErrs   map[string]error
	Calls      []Call
	Committed  bool
	RolledBack bool
	CommitErr  error
}

type scripted struct {
	fragment string
	row      Row
}

func NewTx() *Tx {
	return &Tx{execErrs: map[string]error{}}
}

// OnQueryRow scripts the answer for statements containing fragment.
func (t *Tx) OnQueryRow(fragment string, row Row) *Tx {
	t.rows = append(t.rows, scripted{fragment: fragment, row: row})
	return t
}

// OnExec makes statements containing fragment fail with err.
func (t *Tx) OnExec(fragment string, err error) *Tx {
	t.execErrs[fragment] = err
	return t
}

// Issued reports whether any recorded statement contains fragment.
func (t *Tx) Issued(fragment string) bool {
	_, ok := t.Find(fragment)
	return ok
}

// Find returns the first recorded call containing fragment.
func (t *Tx) Find(fragment string) (Call, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.Calls {
		if strings.Contains(c.SQL, fragment) {
			return c, true
		}
	}
	return Call{}, false
}

func (t *Tx) record(sql string, args []any) {
	t.mu.Lock()
	t.Calls = append(t.Calls, Call{SQL: sql, Args: args})
	t.mu.Unlock()
}

func (t *Tx) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("pgxfake: nested transactions not supported")
}

func (t *Tx) Commit(context.Context) error {
	if t.CommitErr != nil {
		return t.CommitErr
	}
	t.Committed = true
	return nil
}

func (t *Tx) Rollback(context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

func (t *Tx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}

func (t *Tx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}

func (t *Tx) LargeObjects() pgx.LargeObjects {
	panic("not implemented")
}

func (t *Tx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}

func (t *Tx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.record(sql, args)
	for fragment, err := range t.execErrs {
		if strings.Contains(sql, fragment) {
			return pgconn.CommandTag{}, err
		}
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (t *Tx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("not implemented")
}

func (t *Tx) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	t.record(sql, args)
	for _, s := range t.rows {
		if strings.Contains(sql, s.fragment) {
			return s.row
		}
	}
	return Row{Err: fmt.Errorf("pgxfake: no row scripted for %q", firstLine(sql))}
}

func (t *Tx) Conn() *pgx.Conn {
	return nil
}

// Pool hands out a single scripted Tx.
type Pool struct {
	Tx       *Tx
	BeginErr error
	Begun    int
}

func (p *Pool) Begin(context.Context) (pgx.Tx, error) {
	if p.BeginErr != nil {
		return nil, p.BeginErr
	}
	p.Begun++
	if p.Tx == nil {
		p.Tx = NewTx()
	}
	return p.Tx, nil
}

func firstLine(sql string) string {
	sql = strings.TrimSpace(sql)
	if i := strings.IndexByte(sql, '\n'); i >= 0 {
		return sql[:i]
	}
	return sql
}
