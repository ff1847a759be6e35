package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/record"
)

type recordRepository struct {
	db *DB
}

var _ record.Repository = (*recordRepository)(nil) // interface compliance check

func NewRecordRepository(db *DB) record.Repository {
	return &recordRepository{db: db}
}

func (repo *recordRepository) CreateRecord(_ context.Context, r record.DailyRecord, exec ...core.DBExecutor) (record.DailyRecord, error) {
	defer repo.db.lock(exec)()

	r.ID = newID()
	repo.db.t.records[r.ID] = r
	return r, nil
}

func (repo *recordRepository) CreateRecords(_ context.Context, rs []record.DailyRecord, exec ...core.DBExecutor) error {
	defer repo.db.lock(exec)()

	for _, r := range rs {
		r.ID = newID()
		repo.db.t.records[r.ID] = r
	}
	return nil
}

func (repo *recordRepository) QueryRecords(_ context.Context, filter *record.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]record.DailyRecord, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	t := repo.db.t
	records := make([]record.DailyRecord, 0)
	for _, r := range t.records {
		if filter != nil {
			if filter.StudentID != "" && r.StudentID != filter.StudentID {
				continue
			}
			s := t.students[r.StudentID]
			if filter.ClassroomID != "" && s.ClassroomID.String != filter.ClassroomID {
				continue
			}
			if filter.TutorID != "" && s.TutorID != filter.TutorID {
				continue
			}
			if filter.TeacherID != "" && !(s.ClassroomID.Valid && teaches(t, s.ClassroomID.String, filter.TeacherID)) {
				continue
			}
			if !inRange(r.Date, filter.DateFrom, filter.DateTo) {
				continue
			}
		}
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	orderBy(records, ordering, func(i, j int, field string) (int, bool) {
		a, b := records[i], records[j]
		switch field {
		case "date":
			return cmpTimes(a.Date, b.Date), true
		case "student_id":
			return cmpStrings(a.StudentID, b.StudentID), true
		case "wipes_remaining":
			return cmpInts(a.WipesRemaining, b.WipesRemaining), true
		case "diapers_remaining":
			return cmpInts(a.DiapersRemaining, b.DiapersRemaining), true
		case "napped":
			return cmpBools(a.Napped, b.Napped), true
		case "created_at":
			return cmpTimes(a.CreatedAt, b.CreatedAt), true
		}
		return 0, false
	})
	return records, nil
}

func (repo *recordRepository) GetRecord(_ context.Context, id string, _ ...core.DBExecutor) (record.DailyRecord, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if r, ok := repo.db.t.records[id]; ok {
		return r, nil
	}
	return record.DailyRecord{}, record.ErrNotFound
}

func (repo *recordRepository) UpdateRecord(_ context.Context, r record.DailyRecord, exec ...core.DBExecutor) (record.DailyRecord, error) {
	defer repo.db.lock(exec)()

	orig, ok := repo.db.t.records[r.ID]
	if !ok {
		return record.DailyRecord{}, record.ErrNotFound
	}
	r.CreatedAt = orig.CreatedAt
	repo.db.t.records[r.ID] = r
	return r, nil
}

func (repo *recordRepository) DeleteRecords(_ context.Context, ids []string, exec ...core.DBExecutor) error {
	defer repo.db.lock(exec)()

	for _, id := range ids {
		delete(repo.db.t.records, id)
	}
	return nil
}

func teaches(t tables, classroomID, teacherID string) bool {
	c, ok := t.classrooms[classroomID]
	return ok && c.HasTeacher(teacherID)
}
