// Package sqlxrepos implements the domain repositories on PostgreSQL with sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/strmangle"

	"github.com/trezcool/agenda/core"
)

const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
)

type repository struct {
	exec core.DBExecutor
}

func (repo repository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

// inTx runs fn in a transaction unless exe already is one.
func inTx(ctx context.Context, exe core.DBExecutor, fn func(exe core.DBExecutor) error) error {
	db, ok := exe.(*sqlx.DB)
	if !ok {
		return fn(exe)
	}
	return NewTransactor(db).InTx(ctx, fn)
}

// trapNoRowsErr maps the "no rows" error to notFound.
func trapNoRowsErr(err, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func pqErrCode(err error) string {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		return string(pqErr.Code)
	}
	return ""
}

// checkAffected returns notFound when res did not touch any row.
func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func newID() string {
	return uuid.New().String()
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// validRefs reports whether every non-empty id is a UUID. Filters on other ids match nothing.
func validRefs(ids ...string) bool {
	for _, id := range ids {
		if id != "" && !validID(id) {
			return false
		}
	}
	return true
}

// validIDs drops the ids that can't be stored in a UUID column.
func validIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	return valid
}

// conditions accumulates WHERE conditions written with `?` placeholders.
type conditions struct {
	conds []string
	args  []interface{}
}

func (c *conditions) add(cond string, args ...interface{}) {
	c.conds = append(c.conds, "("+cond+")")
	c.args = append(c.args, args...)
}

func (c *conditions) String() string {
	if len(c.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.conds, " AND ")
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// orderColumn finds the column of field, given in snake case ("created_at") or camel case ("createdAt").
func orderColumn(field string, columns map[string]string) (string, bool) {
	if col, ok := columns[field]; ok {
		return col, true
	}
	want := strmangle.CamelCase(field)
	for name, col := range columns {
		if strmangle.CamelCase(name) == want {
			return col, true
		}
	}
	return "", false
}

// orderBy builds an ORDER BY clause from the orderable columns. Unknown fields are ignored.
func orderBy(ordering []core.DBOrdering, columns map[string]string) string {
	list := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		col, ok := orderColumn(ord.Field, columns)
		if !ok {
			continue
		}
		list = append(list, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	if len(list) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(list, ", ")
}

func selectRows(ctx context.Context, exe core.DBExecutor, dest interface{}, q string, c *conditions, ordering string) error {
	q = exe.Rebind(q + c.String() + ordering)
	return sqlx.SelectContext(ctx, exe, dest, q, c.args...)
}
