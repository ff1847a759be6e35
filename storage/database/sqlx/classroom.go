package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/classroom"
)

const classroomColumns = `id, center_id, name, course, min_age, max_age, max_capacity, image, created_at, updated_at`

const classroomSelect = `SELECT c.id, c.center_id, c.name, c.course, c.min_age, c.max_age, c.max_capacity, c.image,
		c.created_at, c.updated_at,
		ARRAY(SELECT ct.teacher_id::text FROM classroom_teacher ct WHERE ct.classroom_id = c.id ORDER BY ct.teacher_id) AS teacher_ids,
		(SELECT COUNT(*) FROM student s WHERE s.classroom_id = c.id) AS enrollment
	FROM classroom c`

var classroomOrderColumns = map[string]string{
	"name":         "c.name",
	"course":       "c.course",
	"min_age":      "c.min_age",
	"max_age":      "c.max_age",
	"max_capacity": "c.max_capacity",
	"enrollment":   "enrollment",
	"created_at":   "c.created_at",
}

type classroomRow struct {
	ID          string         `db:"id"`
	CenterID    string         `db:"center_id"`
	Name        string         `db:"name"`
	Course      string         `db:"course"`
	MinAge      int            `db:"min_age"`
	MaxAge      int            `db:"max_age"`
	MaxCapacity int            `db:"max_capacity"`
	Image       string         `db:"image"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	TeacherIDs  pq.StringArray `db:"teacher_ids"`
	Enrollment  int            `db:"enrollment"`
}

func toClassroomRow(c classroom.Classroom) classroomRow {
	return classroomRow{
		ID:          c.ID,
		CenterID:    c.CenterID,
		Name:        c.Name,
		Course:      c.Course,
		MinAge:      c.MinAge,
		MaxAge:      c.MaxAge,
		MaxCapacity: c.MaxCapacity,
		Image:       c.Image,
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
		TeacherIDs:  c.TeacherIDs,
	}
}

func (r classroomRow) classroom() classroom.Classroom {
	teachers := make([]string, 0, len(r.TeacherIDs))
	teachers = append(teachers, r.TeacherIDs...)
	return classroom.Classroom{
		ID:          r.ID,
		CenterID:    r.CenterID,
		Name:        r.Name,
		Course:      r.Course,
		MinAge:      r.MinAge,
		MaxAge:      r.MaxAge,
		MaxCapacity: r.MaxCapacity,
		Image:       r.Image,
		TeacherIDs:  teachers,
		Enrollment:  r.Enrollment,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type classroomRepository struct {
	repository
}

var _ classroom.Repository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(exec core.DBExecutor) *classroomRepository {
	return &classroomRepository{repository{exec: exec}}
}

func setTeachers(ctx context.Context, exe core.DBExecutor, classroomID string, teacherIDs []string) error {
	if _, err := exe.ExecContext(ctx, `DELETE FROM classroom_teacher WHERE classroom_id = $1`, classroomID); err != nil {
		return errors.Wrap(err, "clearing classroom teachers")
	}
	q := `INSERT INTO classroom_teacher (classroom_id, teacher_id)
		SELECT $1, t FROM UNNEST($2::uuid[]) AS t ON CONFLICT DO NOTHING`
	if _, err := exe.ExecContext(ctx, q, classroomID, pq.Array(validIDs(teacherIDs))); err != nil {
		return errors.Wrap(err, "inserting classroom teachers")
	}
	return nil
}

func (repo classroomRepository) CreateClassroom(ctx context.Context, c classroom.Classroom, exec ...core.DBExecutor) (classroom.Classroom, error) {
	c.ID = newID()
	err := inTx(ctx, repo.getExec(exec), func(exe core.DBExecutor) error {
		q := `INSERT INTO classroom (` + classroomColumns + `)
			VALUES (:id, :center_id, :name, :course, :min_age, :max_age, :max_capacity, :image, :created_at, :updated_at)`
		if _, err := sqlx.NamedExecContext(ctx, exe, q, toClassroomRow(c)); err != nil {
			return errors.Wrap(err, "inserting classroom")
		}
		if err := setTeachers(ctx, exe, c.ID, c.TeacherIDs); err != nil {
			return err
		}
		var err error
		c, err = repo.GetClassroom(ctx, c.ID, exe)
		return err
	})
	if err != nil {
		return classroom.Classroom{}, err
	}
	return c, nil
}

func (repo classroomRepository) QueryClassrooms(ctx context.Context, filter *classroom.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]classroom.Classroom, error) {
	c := new(conditions)
	if filter != nil {
		if !validRefs(filter.CenterID, filter.TeacherID) {
			return []classroom.Classroom{}, nil
		}
		if filter.CenterID != "" {
			c.add("c.center_id = ?::uuid", filter.CenterID)
		}
		if filter.TeacherID != "" {
			c.add("EXISTS (SELECT 1 FROM classroom_teacher ct WHERE ct.classroom_id = c.id AND ct.teacher_id = ?::uuid)", filter.TeacherID)
		}
		if filter.Search != "" {
			val := likePattern(filter.Search)
			c.add("c.name ILIKE ? OR c.course ILIKE ?", val, val)
		}
		if len(filter.IDs) > 0 {
			c.add("c.id = ANY(?::uuid[])", pq.Array(validIDs(filter.IDs)))
		}
	}
	exe := repo.getExec(exec)
	if filter != nil && filter.ForUpdate {
		// locked apart from the select so that its enrollment counts see what the previous holder committed
		q := exe.Rebind(`SELECT c.id FROM classroom c` + c.String() + ` ORDER BY c.id FOR UPDATE`)
		if _, err := exe.ExecContext(ctx, q, c.args...); err != nil {
			return nil, errors.Wrap(err, "locking classrooms")
		}
	}
	var rows []classroomRow
	if err := selectRows(ctx, exe, &rows, classroomSelect, c, orderBy(ordering, classroomOrderColumns)); err != nil {
		return nil, errors.Wrap(err, "querying classrooms")
	}

	rooms := make([]classroom.Classroom, 0, len(rows))
	for _, r := range rows {
		rooms = append(rooms, r.classroom())
	}
	return rooms, nil
}

func (repo classroomRepository) GetClassroom(ctx context.Context, id string, exec ...core.DBExecutor) (classroom.Classroom, error) {
	if !validID(id) {
		return classroom.Classroom{}, classroom.ErrNotFound
	}
	var row classroomRow
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, classroomSelect+` WHERE c.id = $1`, id); err != nil {
		return classroom.Classroom{}, trapNoRowsErr(err, classroom.ErrNotFound, "finding classroom")
	}
	return row.classroom(), nil
}

func (repo classroomRepository) UpdateClassroom(ctx context.Context, c classroom.Classroom, exec ...core.DBExecutor) (classroom.Classroom, error) {
	if !validID(c.ID) {
		return classroom.Classroom{}, classroom.ErrNotFound
	}
	err := inTx(ctx, repo.getExec(exec), func(exe core.DBExecutor) error {
		q := `UPDATE classroom SET
			center_id = :center_id, name = :name, course = :course, min_age = :min_age, max_age = :max_age,
			max_capacity = :max_capacity, image = :image, updated_at = :updated_at
			WHERE id = :id`
		res, err := sqlx.NamedExecContext(ctx, exe, q, toClassroomRow(c))
		if err != nil {
			return errors.Wrap(err, "updating classroom")
		}
		if err = checkAffected(res, classroom.ErrNotFound); err != nil {
			return err
		}
		if err = setTeachers(ctx, exe, c.ID, c.TeacherIDs); err != nil {
			return err
		}
		c, err = repo.GetClassroom(ctx, c.ID, exe)
		return err
	})
	if err != nil {
		return classroom.Classroom{}, err
	}
	return c, nil
}

// DeleteClassrooms relies on the schema to unassign the students.
func (repo classroomRepository) DeleteClassrooms(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	q := `DELETE FROM classroom WHERE id = ANY($1::uuid[])`
	if _, err := repo.getExec(exec).ExecContext(ctx, q, pq.Array(validIDs(ids))); err != nil {
		return errors.Wrap(err, "deleting classrooms")
	}
	return nil
}
