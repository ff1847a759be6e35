package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(_ context.Context, s student.Student, exec ...core.DBExecutor) (student.Student, error) {
	defer repo.db.lock(exec)()

	s.ID = newID()
	repo.db.t.students[s.ID] = s
	return s, nil
}

// teacherClassrooms returns the ids of the classrooms the teacher works in.
func (repo *studentRepository) teacherClassrooms(teacherID string) map[string]bool {
	ids := make(map[string]bool)
	for _, c := range repo.db.t.classrooms {
		if c.HasTeacher(teacherID) {
			ids[c.ID] = true
		}
	}
	return ids
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter *student.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var ids, teacherRooms map[string]bool
	if filter != nil {
		if len(filter.IDs) > 0 {
			ids = idSet(filter.IDs)
		}
		if filter.TeacherID != "" {
			teacherRooms = repo.teacherClassrooms(filter.TeacherID)
		}
	}

	students := make([]student.Student, 0)
	for _, s := range repo.db.t.students {
		if filter != nil {
			if filter.CenterID != "" && s.CenterID != filter.CenterID {
				continue
			}
			if filter.ClassroomID != "" && s.ClassroomID.String != filter.ClassroomID {
				continue
			}
			if filter.TutorID != "" && s.TutorID != filter.TutorID {
				continue
			}
			if teacherRooms != nil && !(s.ClassroomID.Valid && teacherRooms[s.ClassroomID.String]) {
				continue
			}
			if filter.Search != "" && !core.ContainsFold(s.Name, filter.Search) {
				continue
			}
			if filter.Unassigned && s.ClassroomID.Valid {
				continue
			}
			if ids != nil && !ids[s.ID] {
				continue
			}
		}
		students = append(students, s)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })

	orderBy(students, ordering, func(i, j int, field string) (int, bool) {
		a, b := students[i], students[j]
		switch field {
		case "name":
			return cmpStrings(a.Name, b.Name), true
		case "birth_date":
			return cmpNullTimes(a.BirthDate, b.BirthDate), true
		case "created_at":
			return cmpTimes(a.CreatedAt, b.CreatedAt), true
		case "updated_at":
			return cmpTimes(a.UpdatedAt, b.UpdatedAt), true
		}
		return 0, false
	})
	return students, nil
}

func (repo *studentRepository) GetStudent(_ context.Context, id string, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if s, ok := repo.db.t.students[id]; ok {
		return s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, s student.Student, exec ...core.DBExecutor) (student.Student, error) {
	defer repo.db.lock(exec)()

	orig, ok := repo.db.t.students[s.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	s.CreatedAt = orig.CreatedAt
	repo.db.t.students[s.ID] = s
	return s, nil
}

func (repo *studentRepository) DeleteStudents(_ context.Context, ids []string, exec ...core.DBExecutor) error {
	defer repo.db.lock(exec)()

	deleteStudents(repo.db.t, ids)
	return nil
}

// deleteStudents removes the students and their daily records. The caller holds the write lock.
func deleteStudents(t tables, ids []string) {
	del := idSet(ids)
	for id, r := range t.records {
		if del[r.StudentID] {
			delete(t.records, id)
		}
	}
	for id := range del {
		delete(t.students, id)
	}
}
