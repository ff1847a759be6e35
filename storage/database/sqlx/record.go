package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/record"
)

const recordColumns = `id, student_id, date, breakfast, snack, first_course, second_course, dessert,
	wipes_remaining, diapers_remaining, napped, nap_start, nap_end, comments, created_at, updated_at`

const recordInsert = `INSERT INTO daily_record (` + recordColumns + `)
	VALUES (:id, :student_id, :date, :breakfast, :snack, :first_course, :second_course, :dessert,
		:wipes_remaining, :diapers_remaining, :napped, :nap_start, :nap_end, :comments, :created_at, :updated_at)`

var recordOrderColumns = map[string]string{
	"date":              "date",
	"student_id":        "student_id",
	"wipes_remaining":   "wipes_remaining",
	"diapers_remaining": "diapers_remaining",
	"napped":            "napped",
	"created_at":        "created_at",
}

type recordRow struct {
	ID               string    `db:"id"`
	StudentID        string    `db:"student_id"`
	Date             time.Time `db:"date"`
	Breakfast        bool      `db:"breakfast"`
	Snack            bool      `db:"snack"`
	FirstCourse      bool      `db:"first_course"`
	SecondCourse     bool      `db:"second_course"`
	Dessert          bool      `db:"dessert"`
	WipesRemaining   int       `db:"wipes_remaining"`
	DiapersRemaining int       `db:"diapers_remaining"`
	Napped           bool      `db:"napped"`
	NapStart         null.Time `db:"nap_start"`
	NapEnd           null.Time `db:"nap_end"`
	Comments         string    `db:"comments"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func toRecordRow(r record.DailyRecord) recordRow {
	return recordRow{
		ID:               r.ID,
		StudentID:        r.StudentID,
		Date:             r.Date.UTC(),
		Breakfast:        r.Breakfast,
		Snack:            r.Snack,
		FirstCourse:      r.FirstCourse,
		SecondCourse:     r.SecondCourse,
		Dessert:          r.Dessert,
		WipesRemaining:   r.WipesRemaining,
		DiapersRemaining: r.DiapersRemaining,
		Napped:           r.Napped,
		NapStart:         r.NapStart,
		NapEnd:           r.NapEnd,
		Comments:         r.Comments,
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
	}
}

func utcNull(t null.Time) null.Time {
	if t.Valid {
		t.Time = t.Time.UTC()
	}
	return t
}

func (r recordRow) record() record.DailyRecord {
	return record.DailyRecord{
		ID:               r.ID,
		StudentID:        r.StudentID,
		Date:             r.Date.UTC(),
		Breakfast:        r.Breakfast,
		Snack:            r.Snack,
		FirstCourse:      r.FirstCourse,
		SecondCourse:     r.SecondCourse,
		Dessert:          r.Dessert,
		WipesRemaining:   r.WipesRemaining,
		DiapersRemaining: r.DiapersRemaining,
		Napped:           r.Napped,
		NapStart:         utcNull(r.NapStart),
		NapEnd:           utcNull(r.NapEnd),
		Comments:         r.Comments,
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
	}
}

type recordRepository struct {
	repository
}

var _ record.Repository = (*recordRepository)(nil) // interface compliance check

func NewRecordRepository(exec core.DBExecutor) *recordRepository {
	return &recordRepository{repository{exec: exec}}
}

func (repo recordRepository) CreateRecord(ctx context.Context, r record.DailyRecord, exec ...core.DBExecutor) (record.DailyRecord, error) {
	r.ID = newID()
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), recordInsert, toRecordRow(r)); err != nil {
		return record.DailyRecord{}, errors.Wrap(err, "inserting daily record")
	}
	return r, nil
}

func (repo recordRepository) CreateRecords(ctx context.Context, rs []record.DailyRecord, exec ...core.DBExecutor) error {
	return inTx(ctx, repo.getExec(exec), func(exe core.DBExecutor) error {
		for _, r := range rs {
			r.ID = newID()
			if _, err := sqlx.NamedExecContext(ctx, exe, recordInsert, toRecordRow(r)); err != nil {
				return errors.Wrap(err, "inserting daily records")
			}
		}
		return nil
	})
}

func (repo recordRepository) QueryRecords(ctx context.Context, filter *record.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]record.DailyRecord, error) {
	c := new(conditions)
	if filter != nil {
		if !validRefs(filter.StudentID, filter.ClassroomID, filter.TutorID, filter.TeacherID) {
			return []record.DailyRecord{}, nil
		}
		if filter.StudentID != "" {
			c.add("student_id = ?::uuid", filter.StudentID)
		}
		if filter.ClassroomID != "" {
			c.add("student_id IN (SELECT id FROM student WHERE classroom_id = ?::uuid)", filter.ClassroomID)
		}
		if filter.TutorID != "" {
			c.add("student_id IN (SELECT id FROM student WHERE tutor_id = ?::uuid)", filter.TutorID)
		}
		if filter.TeacherID != "" {
			c.add(`student_id IN (
				SELECT s.id FROM student s
				JOIN classroom_teacher ct ON ct.classroom_id = s.classroom_id
				WHERE ct.teacher_id = ?::uuid)`, filter.TeacherID)
		}
		if !filter.DateFrom.IsZero() {
			c.add("date >= ?", filter.DateFrom.UTC())
		}
		if !filter.DateTo.IsZero() {
			c.add("date <= ?", filter.DateTo.UTC())
		}
	}

	var rows []recordRow
	q := `SELECT ` + recordColumns + ` FROM daily_record`
	if err := selectRows(ctx, repo.getExec(exec), &rows, q, c, orderBy(ordering, recordOrderColumns)); err != nil {
		return nil, errors.Wrap(err, "querying daily records")
	}

	records := make([]record.DailyRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.record())
	}
	return records, nil
}

func (repo recordRepository) GetRecord(ctx context.Context, id string, exec ...core.DBExecutor) (record.DailyRecord, error) {
	if !validID(id) {
		return record.DailyRecord{}, record.ErrNotFound
	}
	var row recordRow
	q := `SELECT ` + recordColumns + ` FROM daily_record WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q, id); err != nil {
		return record.DailyRecord{}, trapNoRowsErr(err, record.ErrNotFound, "finding daily record")
	}
	return row.record(), nil
}

func (repo recordRepository) UpdateRecord(ctx context.Context, r record.DailyRecord, exec ...core.DBExecutor) (record.DailyRecord, error) {
	if !validID(r.ID) {
		return record.DailyRecord{}, record.ErrNotFound
	}
	q := `UPDATE daily_record SET
		date = :date, breakfast = :breakfast, snack = :snack, first_course = :first_course,
		second_course = :second_course, dessert = :dessert, wipes_remaining = :wipes_remaining,
		diapers_remaining = :diapers_remaining, napped = :napped, nap_start = :nap_start, nap_end = :nap_end,
		comments = :comments, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, toRecordRow(r))
	if err != nil {
		return record.DailyRecord{}, errors.Wrap(err, "updating daily record")
	}
	if err = checkAffected(res, record.ErrNotFound); err != nil {
		return record.DailyRecord{}, err
	}
	return r, nil
}

func (repo recordRepository) DeleteRecords(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	q := `DELETE FROM daily_record WHERE id = ANY($1::uuid[])`
	if _, err := repo.getExec(exec).ExecContext(ctx, q, pq.Array(validIDs(ids))); err != nil {
		return errors.Wrap(err, "deleting daily records")
	}
	return nil
}
