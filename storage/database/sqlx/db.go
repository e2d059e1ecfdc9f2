// Package sqlxrepos implements the repositories over Postgres with sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Prajjwal2051/Viewly-sub002/core"
)

const uniqueViolation = "23505"

// validID reports whether id can be compared against a UUID column.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// trapNoRowsErr maps the "no rows" error to notFound.
func trapNoRowsErr(err error, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// likePattern escapes s for a "contains" ILIKE match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// where accumulates "?" placeholder conditions; queries are rebound for Postgres.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// orderBy renders orderings with columns mapping the allowed fields to SQL expressions.
func orderBy(orderings []core.DBOrdering, columns map[string]string) string {
	clauses := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		col, ok := columns[ord.Field]
		if !ok {
			continue
		}
		clauses = append(clauses, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	if len(clauses) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}

// paginate counts the rows of "FROM ..." fromWhere, then selects the requested page.
func paginate[R any, T any](
	ctx context.Context,
	db *sqlx.DB,
	selectCols, fromWhere, order string,
	args []interface{},
	page core.PageQuery,
	conv func(R) T,
) (core.Page[T], error) {
	page.Clean()

	var total int64
	if err := db.GetContext(ctx, &total, db.Rebind("SELECT COUNT(*) "+fromWhere), args...); err != nil {
		return core.Page[T]{}, errors.Wrap(err, "counting rows")
	}

	q := fmt.Sprintf("SELECT %s %s%s LIMIT ? OFFSET ?", selectCols, fromWhere, order)
	var rows []R
	if err := db.SelectContext(ctx, &rows, db.Rebind(q), append(args, page.Limit, page.Skip())...); err != nil {
		return core.Page[T]{}, errors.Wrap(err, "selecting rows")
	}

	docs := make([]T, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, conv(r))
	}
	return core.NewPage(docs, total, page), nil
}

// ownerCols are the joined user summary columns, aliased for ownerRow.
const ownerCols = `u.username AS owner_username, u.full_name AS owner_full_name, u.avatar AS owner_avatar`

type ownerRow struct {
	OwnerUsername null.String `db:"owner_username"`
	OwnerFullName null.String `db:"owner_full_name"`
	OwnerAvatar   null.String `db:"owner_avatar"`
}

func (r ownerRow) summary(id string) *core.UserSummary {
	if !r.OwnerUsername.Valid {
		return nil
	}
	return &core.UserSummary{
		ID:       id,
		Username: r.OwnerUsername.String,
		FullName: r.OwnerFullName.String,
		Avatar:   r.OwnerAvatar.String,
	}
}
