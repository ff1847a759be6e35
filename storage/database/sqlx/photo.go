package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/photo"
)

const photoColumns = `id, date, image, teacher_id, created_at`

var photoOrderColumns = map[string]string{
	"date":       "date",
	"created_at": "created_at",
}

type photoRow struct {
	ID        string    `db:"id"`
	Date      time.Time `db:"date"`
	Image     string    `db:"image"`
	TeacherID string    `db:"teacher_id"`
	CreatedAt time.Time `db:"created_at"`
}

type photoRepository struct {
	repository
}

var _ photo.Repository = (*photoRepository)(nil) // interface compliance check

func NewPhotoRepository(exec core.DBExecutor) *photoRepository {
	return &photoRepository{repository{exec: exec}}
}

func (repo photoRepository) CreatePhoto(ctx context.Context, p photo.Photo, exec ...core.DBExecutor) (photo.Photo, error) {
	p.ID = newID()
	row := photoRow{ID: p.ID, Date: p.Date.UTC(), Image: p.Image, TeacherID: p.TeacherID, CreatedAt: p.CreatedAt.UTC()}
	q := `INSERT INTO photo (` + photoColumns + `) VALUES (:id, :date, :image, :teacher_id, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, row); err != nil {
		return photo.Photo{}, errors.Wrap(err, "inserting photo")
	}
	return p, nil
}

func (repo photoRepository) QueryPhotos(ctx context.Context, filter *photo.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]photo.Photo, error) {
	c := new(conditions)
	if filter != nil {
		if !validRefs(filter.TeacherID) {
			return []photo.Photo{}, nil
		}
		if filter.TeacherID != "" {
			c.add("teacher_id = ?::uuid", filter.TeacherID)
		}
		if !filter.DateFrom.IsZero() {
			c.add("date >= ?", filter.DateFrom.UTC())
		}
		if !filter.DateTo.IsZero() {
			c.add("date <= ?", filter.DateTo.UTC())
		}
	}

	var rows []photoRow
	q := `SELECT ` + photoColumns + ` FROM photo`
	if err := selectRows(ctx, repo.getExec(exec), &rows, q, c, orderBy(ordering, photoOrderColumns)); err != nil {
		return nil, errors.Wrap(err, "querying photos")
	}

	photos := make([]photo.Photo, 0, len(rows))
	for _, r := range rows {
		photos = append(photos, r.photo())
	}
	return photos, nil
}

func (r photoRow) photo() photo.Photo {
	return photo.Photo{
		ID:        r.ID,
		Date:      r.Date.UTC(),
		Image:     r.Image,
		TeacherID: r.TeacherID,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

func (repo photoRepository) GetPhoto(ctx context.Context, id string, exec ...core.DBExecutor) (photo.Photo, error) {
	if !validID(id) {
		return photo.Photo{}, photo.ErrNotFound
	}
	var row photoRow
	q := `SELECT ` + photoColumns + ` FROM photo WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q, id); err != nil {
		return photo.Photo{}, trapNoRowsErr(err, photo.ErrNotFound, "finding photo")
	}
	return row.photo(), nil
}

func (repo photoRepository) DeletePhotos(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	q := `DELETE FROM photo WHERE id = ANY($1::uuid[])`
	if _, err := repo.getExec(exec).ExecContext(ctx, q, pq.Array(validIDs(ids))); err != nil {
		return errors.Wrap(err, "deleting photos")
	}
	return nil
}
