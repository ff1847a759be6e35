package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/center"
)

const centerColumns = `id, name, phone, location, description, created_at, updated_at`

var centerOrderColumns = map[string]string{
	"name":       "name",
	"location":   "location",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type centerRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Phone       string    `db:"phone"`
	Location    string    `db:"location"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func toCenterRow(c center.Center) centerRow {
	return centerRow{
		ID:          c.ID,
		Name:        c.Name,
		Phone:       c.Phone,
		Location:    c.Location,
		Description: c.Description,
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
	}
}

func (r centerRow) center() center.Center {
	return center.Center{
		ID:          r.ID,
		Name:        r.Name,
		Phone:       r.Phone,
		Location:    r.Location,
		Description: r.Description,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type centerRepository struct {
	repository
}

var _ center.Repository = (*centerRepository)(nil) // interface compliance check

func NewCenterRepository(exec core.DBExecutor) *centerRepository {
	return &centerRepository{repository{exec: exec}}
}

func (repo centerRepository) CreateCenter(ctx context.Context, c center.Center, exec ...core.DBExecutor) (center.Center, error) {
	c.ID = newID()
	q := `INSERT INTO center (` + centerColumns + `)
		VALUES (:id, :name, :phone, :location, :description, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, toCenterRow(c)); err != nil {
		return center.Center{}, errors.Wrap(err, "inserting center")
	}
	return c, nil
}

func (repo centerRepository) QueryCenters(ctx context.Context, filter *center.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]center.Center, error) {
	c := new(conditions)
	if filter != nil {
		if filter.Search != "" {
			val := likePattern(filter.Search)
			c.add("name ILIKE ? OR location ILIKE ?", val, val)
		}
		if len(filter.IDs) > 0 {
			c.add("id = ANY(?::uuid[])", pq.Array(validIDs(filter.IDs)))
		}
	}

	var rows []centerRow
	q := `SELECT ` + centerColumns + ` FROM center`
	if err := selectRows(ctx, repo.getExec(exec), &rows, q, c, orderBy(ordering, centerOrderColumns)); err != nil {
		return nil, errors.Wrap(err, "querying centers")
	}

	centers := make([]center.Center, 0, len(rows))
	for _, r := range rows {
		centers = append(centers, r.center())
	}
	return centers, nil
}

func (repo centerRepository) GetCenter(ctx context.Context, id string, exec ...core.DBExecutor) (center.Center, error) {
	if !validID(id) {
		return center.Center{}, center.ErrNotFound
	}
	var row centerRow
	q := `SELECT ` + centerColumns + ` FROM center WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q, id); err != nil {
		return center.Center{}, trapNoRowsErr(err, center.ErrNotFound, "finding center")
	}
	return row.center(), nil
}

func (repo centerRepository) CountCenters(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &n, `SELECT COUNT(*) FROM center`); err != nil {
		return 0, errors.Wrap(err, "counting centers")
	}
	return n, nil
}

func (repo centerRepository) UpdateCenter(ctx context.Context, c center.Center, exec ...core.DBExecutor) (center.Center, error) {
	if !validID(c.ID) {
		return center.Center{}, center.ErrNotFound
	}
	q := `UPDATE center SET
		name = :name, phone = :phone, location = :location, description = :description, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, toCenterRow(c))
	if err != nil {
		return center.Center{}, errors.Wrap(err, "updating center")
	}
	if err = checkAffected(res, center.ErrNotFound); err != nil {
		return center.Center{}, err
	}
	return c, nil
}

// DeleteCenters relies on the schema: classrooms and students cascade, news lose their center.
func (repo centerRepository) DeleteCenters(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	q := `DELETE FROM center WHERE id = ANY($1::uuid[])`
	if _, err := repo.getExec(exec).ExecContext(ctx, q, pq.Array(validIDs(ids))); err != nil {
		return errors.Wrap(err, "deleting centers")
	}
	return nil
}
