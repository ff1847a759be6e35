package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/student"
)

const studentColumns = `id, name, birth_date, image, center_id, classroom_id, tutor_id, created_at, updated_at`

var studentOrderColumns = map[string]string{
	"name":       "name",
	"birth_date": "COALESCE(birth_date, '-infinity'::timestamptz)",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type studentRow struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	BirthDate   null.Time   `db:"birth_date"`
	Image       string      `db:"image"`
	CenterID    string      `db:"center_id"`
	ClassroomID null.String `db:"classroom_id"`
	TutorID     string      `db:"tutor_id"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func toStudentRow(s student.Student) studentRow {
	return studentRow{
		ID:          s.ID,
		Name:        s.Name,
		BirthDate:   s.BirthDate,
		Image:       s.Image,
		CenterID:    s.CenterID,
		ClassroomID: s.ClassroomID,
		TutorID:     s.TutorID,
		CreatedAt:   s.CreatedAt.UTC(),
		UpdatedAt:   s.UpdatedAt.UTC(),
	}
}

func (r studentRow) student() student.Student {
	birth := r.BirthDate
	if birth.Valid {
		birth.Time = birth.Time.UTC()
	}
	return student.Student{
		ID:          r.ID,
		Name:        r.Name,
		BirthDate:   birth,
		Image:       r.Image,
		CenterID:    r.CenterID,
		ClassroomID: r.ClassroomID,
		TutorID:     r.TutorID,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type studentRepository struct {
	repository
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{repository{exec: exec}}
}

func (repo studentRepository) CreateStudent(ctx context.Context, s student.Student, exec ...core.DBExecutor) (student.Student, error) {
	s.ID = newID()
	q := `INSERT INTO student (` + studentColumns + `)
		VALUES (:id, :name, :birth_date, :image, :center_id, :classroom_id, :tutor_id, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, toStudentRow(s)); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]student.Student, error) {
	c := new(conditions)
	if filter != nil {
		if !validRefs(filter.CenterID, filter.ClassroomID, filter.TutorID, filter.TeacherID) {
			return []student.Student{}, nil
		}
		if filter.CenterID != "" {
			c.add("center_id = ?::uuid", filter.CenterID)
		}
		if filter.ClassroomID != "" {
			c.add("classroom_id = ?::uuid", filter.ClassroomID)
		}
		if filter.TutorID != "" {
			c.add("tutor_id = ?::uuid", filter.TutorID)
		}
		// students of the classrooms the teacher works in
		if filter.TeacherID != "" {
			c.add("classroom_id IN (SELECT classroom_id FROM classroom_teacher WHERE teacher_id = ?::uuid)", filter.TeacherID)
		}
		if filter.Search != "" {
			c.add("name ILIKE ?", likePattern(filter.Search))
		}
		if filter.Unassigned {
			c.add("classroom_id IS NULL")
		}
		if len(filter.IDs) > 0 {
			c.add("id = ANY(?::uuid[])", pq.Array(validIDs(filter.IDs)))
		}
	}

	var rows []studentRow
	q := `SELECT ` + studentColumns + ` FROM student`
	if err := selectRows(ctx, repo.getExec(exec), &rows, q, c, orderBy(ordering, studentOrderColumns)); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}

	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.student())
	}
	return students, nil
}

func (repo studentRepository) GetStudent(ctx context.Context, id string, exec ...core.DBExecutor) (student.Student, error) {
	if !validID(id) {
		return student.Student{}, student.ErrNotFound
	}
	var row studentRow
	q := `SELECT ` + studentColumns + ` FROM student WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q, id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "finding student")
	}
	return row.student(), nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, s student.Student, exec ...core.DBExecutor) (student.Student, error) {
	if !validID(s.ID) {
		return student.Student{}, student.ErrNotFound
	}
	q := `UPDATE student SET
		name = :name, birth_date = :birth_date, image = :image, center_id = :center_id,
		classroom_id = :classroom_id, tutor_id = :tutor_id, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, toStudentRow(s))
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if err = checkAffected(res, student.ErrNotFound); err != nil {
		return student.Student{}, err
	}
	return s, nil
}

// DeleteStudents relies on the schema to delete the daily records.
func (repo studentRepository) DeleteStudents(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	q := `DELETE FROM student WHERE id = ANY($1::uuid[])`
	if _, err := repo.getExec(exec).ExecContext(ctx, q, pq.Array(validIDs(ids))); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return nil
}
