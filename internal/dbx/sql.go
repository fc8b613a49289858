package dbx

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
)

// Placeholders returns "$start, $start+1, ..." with n entries.
// Both pgx and modernc sqlite accept numbered $N parameters.
func Placeholders(start, n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(ph, ", ")
}

// Assignments accumulates "column = $N" pairs for partial UPDATE statements.
//
//	var a dbx.Assignments
//	a.Add("email", email)
//	q := "UPDATE users SET " + a.SQL() + " WHERE id = " + a.Arg(id)
//	db.ExecContext(ctx, q, a.Args()...)
type Assignments struct {
	cols []string
	args []any
}

// Add appends column = value.
func (a *Assignments) Add(column string, value any) {
	a.cols = append(a.cols, fmt.Sprintf("%s = %s", column, a.Arg(value)))
}

// Arg registers a bare argument (e.g. for a WHERE clause) and returns its placeholder.
func (a *Assignments) Arg(value any) string {
	a.args = append(a.args, value)
	return fmt.Sprintf("$%d", len(a.args))
}

// Len returns the number of column assignments.
func (a *Assignments) Len() int {
	return len(a.cols)
}

// SQL renders the assignments for a SET clause.
func (a *Assignments) SQL() string {
	return strings.Join(a.cols, ", ")
}

// Args returns the accumulated arguments in placeholder order.
func (a *Assignments) Args() []any {
	return a.args
}

// Scanner is implemented by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// ExpectAffected returns common.ErrorNotFound when res touched no rows.
func ExpectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// Now returns the current UTC time at the precision postgres stores.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
