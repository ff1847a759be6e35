package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/menu"
)

const menuColumns = `id, date, breakfast, snack, first_course, second_course, dessert, created_at, updated_at`

var menuOrderColumns = map[string]string{
	"date":       "date",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type menuRow struct {
	ID           string    `db:"id"`
	Date         time.Time `db:"date"`
	Breakfast    string    `db:"breakfast"`
	Snack        string    `db:"snack"`
	FirstCourse  string    `db:"first_course"`
	SecondCourse string    `db:"second_course"`
	Dessert      string    `db:"dessert"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func toMenuRow(m menu.Menu) menuRow {
	return menuRow{
		ID:           m.ID,
		Date:         core.Day(m.Date),
		Breakfast:    m.Breakfast,
		Snack:        m.Snack,
		FirstCourse:  m.FirstCourse,
		SecondCourse: m.SecondCourse,
		Dessert:      m.Dessert,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

func (r menuRow) menu() menu.Menu {
	// DATE columns come back at midnight in the session's zone: keep the calendar day only.
	y, mo, d := r.Date.Date()
	return menu.Menu{
		ID:           r.ID,
		Date:         time.Date(y, mo, d, 0, 0, 0, 0, time.UTC),
		Breakfast:    r.Breakfast,
		Snack:        r.Snack,
		FirstCourse:  r.FirstCourse,
		SecondCourse: r.SecondCourse,
		Dessert:      r.Dessert,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type menuRepository struct {
	repository
}

var _ menu.Repository = (*menuRepository)(nil) // interface compliance check

func NewMenuRepository(exec core.DBExecutor) *menuRepository {
	return &menuRepository{repository{exec: exec}}
}

func (repo menuRepository) CreateMenu(ctx context.Context, m menu.Menu, exec ...core.DBExecutor) (menu.Menu, error) {
	m.ID = newID()
	q := `INSERT INTO menu (` + menuColumns + `)
		VALUES (:id, :date, :breakfast, :snack, :first_course, :second_course, :dessert, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, toMenuRow(m)); err != nil {
		if pqErrCode(err) == pqUniqueViolation {
			return menu.Menu{}, menu.ErrDateExists
		}
		return menu.Menu{}, errors.Wrap(err, "inserting menu")
	}
	return m, nil
}

func (repo menuRepository) QueryMenus(ctx context.Context, filter *menu.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]menu.Menu, error) {
	c := new(conditions)
	if filter != nil {
		if !filter.DateFrom.IsZero() {
			c.add("date >= ?::date", core.Day(filter.DateFrom))
		}
		if !filter.DateTo.IsZero() {
			c.add("date <= ?::date", core.Day(filter.DateTo))
		}
	}

	var rows []menuRow
	q := `SELECT ` + menuColumns + ` FROM menu`
	if err := selectRows(ctx, repo.getExec(exec), &rows, q, c, orderBy(ordering, menuOrderColumns)); err != nil {
		return nil, errors.Wrap(err, "querying menus")
	}

	menus := make([]menu.Menu, 0, len(rows))
	for _, r := range rows {
		menus = append(menus, r.menu())
	}
	return menus, nil
}

func (repo menuRepository) GetMenu(ctx context.Context, id string, exec ...core.DBExecutor) (menu.Menu, error) {
	if !validID(id) {
		return menu.Menu{}, menu.ErrNotFound
	}
	var row menuRow
	q := `SELECT ` + menuColumns + ` FROM menu WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q, id); err != nil {
		return menu.Menu{}, trapNoRowsErr(err, menu.ErrNotFound, "finding menu")
	}
	return row.menu(), nil
}

func (repo menuRepository) GetMenuByDate(ctx context.Context, day time.Time, exec ...core.DBExecutor) (menu.Menu, error) {
	var row menuRow
	q := `SELECT ` + menuColumns + ` FROM menu WHERE date = $1::date`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q, core.Day(day)); err != nil {
		return menu.Menu{}, trapNoRowsErr(err, menu.ErrNotFound, "finding menu by date")
	}
	return row.menu(), nil
}

func (repo menuRepository) UpdateMenu(ctx context.Context, m menu.Menu, exec ...core.DBExecutor) (menu.Menu, error) {
	if !validID(m.ID) {
		return menu.Menu{}, menu.ErrNotFound
	}
	q := `UPDATE menu SET
		date = :date, breakfast = :breakfast, snack = :snack, first_course = :first_course,
		second_course = :second_course, dessert = :dessert, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, toMenuRow(m))
	if err != nil {
		if pqErrCode(err) == pqUniqueViolation {
			return menu.Menu{}, menu.ErrDateExists
		}
		return menu.Menu{}, errors.Wrap(err, "updating menu")
	}
	if err = checkAffected(res, menu.ErrNotFound); err != nil {
		return menu.Menu{}, err
	}
	return m, nil
}

func (repo menuRepository) DeleteMenus(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	q := `DELETE FROM menu WHERE id = ANY($1::uuid[])`
	if _, err := repo.getExec(exec).ExecContext(ctx, q, pq.Array(validIDs(ids))); err != nil {
		return errors.Wrap(err, "deleting menus")
	}
	return nil
}
