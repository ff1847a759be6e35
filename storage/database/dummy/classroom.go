package dummydb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/classroom"
)

type classroomRepository struct {
	db *DB
}

var _ classroom.Repository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *DB) classroom.Repository {
	return &classroomRepository{db: db}
}

// withEnrollment returns a copy of c carrying its current number of students.
func (repo *classroomRepository) withEnrollment(c classroom.Classroom) classroom.Classroom {
	c.TeacherIDs = append([]string{}, c.TeacherIDs...)
	c.Enrollment = 0
	for _, s := range repo.db.t.students {
		if s.ClassroomID.Valid && s.ClassroomID.String == c.ID {
			c.Enrollment++
		}
	}
	return c
}

func (repo *classroomRepository) CreateClassroom(_ context.Context, c classroom.Classroom, exec ...core.DBExecutor) (classroom.Classroom, error) {
	defer repo.db.lock(exec)()

	c.ID = newID()
	c.TeacherIDs = append([]string{}, c.TeacherIDs...)
	c.Enrollment = 0
	repo.db.t.classrooms[c.ID] = c
	return repo.withEnrollment(c), nil
}

// QueryClassrooms ignores filter.ForUpdate: transactions are serialized by DB.InTx.
func (repo *classroomRepository) QueryClassrooms(_ context.Context, filter *classroom.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]classroom.Classroom, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var ids map[string]bool
	if filter != nil && len(filter.IDs) > 0 {
		ids = idSet(filter.IDs)
	}

	rooms := make([]classroom.Classroom, 0)
	for _, c := range repo.db.t.classrooms {
		if filter != nil {
			if filter.CenterID != "" && c.CenterID != filter.CenterID {
				continue
			}
			if filter.TeacherID != "" && !c.HasTeacher(filter.TeacherID) {
				continue
			}
			if filter.Search != "" && !core.ContainsFold(c.Name, filter.Search) && !core.ContainsFold(c.Course, filter.Search) {
				continue
			}
			if ids != nil && !ids[c.ID] {
				continue
			}
		}
		rooms = append(rooms, repo.withEnrollment(c))
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })

	orderBy(rooms, ordering, func(i, j int, field string) (int, bool) {
		a, b := rooms[i], rooms[j]
		switch field {
		case "name":
			return cmpStrings(a.Name, b.Name), true
		case "course":
			return cmpStrings(a.Course, b.Course), true
		case "min_age":
			return cmpInts(a.MinAge, b.MinAge), true
		case "max_age":
			return cmpInts(a.MaxAge, b.MaxAge), true
		case "max_capacity":
			return cmpInts(a.MaxCapacity, b.MaxCapacity), true
		case "enrollment":
			return cmpInts(a.Enrollment, b.Enrollment), true
		case "created_at":
			return cmpTimes(a.CreatedAt, b.CreatedAt), true
		}
		return 0, false
	})
	return rooms, nil
}

func (repo *classroomRepository) GetClassroom(_ context.Context, id string, _ ...core.DBExecutor) (classroom.Classroom, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if c, ok := repo.db.t.classrooms[id]; ok {
		return repo.withEnrollment(c), nil
	}
	return classroom.Classroom{}, classroom.ErrNotFound
}

func (repo *classroomRepository) UpdateClassroom(_ context.Context, c classroom.Classroom, exec ...core.DBExecutor) (classroom.Classroom, error) {
	defer repo.db.lock(exec)()

	orig, ok := repo.db.t.classrooms[c.ID]
	if !ok {
		return classroom.Classroom{}, classroom.ErrNotFound
	}
	c.CreatedAt = orig.CreatedAt
	c.TeacherIDs = append([]string{}, c.TeacherIDs...)
	c.Enrollment = 0
	repo.db.t.classrooms[c.ID] = c
	return repo.withEnrollment(c), nil
}

func (repo *classroomRepository) DeleteClassrooms(_ context.Context, ids []string, exec ...core.DBExecutor) error {
	defer repo.db.lock(exec)()

	t := repo.db.t
	del := idSet(ids)
	for id, s := range t.students {
		if s.ClassroomID.Valid && del[s.ClassroomID.String] {
			s.ClassroomID = null.String{}
			t.students[id] = s
		}
	}
	for id := range del {
		delete(t.classrooms, id)
	}
	return nil
}
