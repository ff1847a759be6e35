package dummydb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/center"
)

type centerRepository struct {
	db *DB
}

var _ center.Repository = (*centerRepository)(nil) // interface compliance check

func NewCenterRepository(db *DB) center.Repository {
	return &centerRepository{db: db}
}

func (repo *centerRepository) CreateCenter(_ context.Context, c center.Center, exec ...core.DBExecutor) (center.Center, error) {
	defer repo.db.lock(exec)()

	c.ID = newID()
	repo.db.t.centers[c.ID] = c
	return c, nil
}

func (repo *centerRepository) QueryCenters(_ context.Context, filter *center.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]center.Center, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var ids map[string]bool
	if filter != nil && len(filter.IDs) > 0 {
		ids = idSet(filter.IDs)
	}

	centers := make([]center.Center, 0, len(repo.db.t.centers))
	for _, c := range repo.db.t.centers {
		if filter != nil {
			if filter.Search != "" && !core.ContainsFold(c.Name, filter.Search) && !core.ContainsFold(c.Location, filter.Search) {
				continue
			}
			if ids != nil && !ids[c.ID] {
				continue
			}
		}
		centers = append(centers, c)
	}
	sort.Slice(centers, func(i, j int) bool { return centers[i].ID < centers[j].ID })

	orderBy(centers, ordering, func(i, j int, field string) (int, bool) {
		a, b := centers[i], centers[j]
		switch field {
		case "name":
			return cmpStrings(a.Name, b.Name), true
		case "location":
			return cmpStrings(a.Location, b.Location), true
		case "created_at":
			return cmpTimes(a.CreatedAt, b.CreatedAt), true
		case "updated_at":
			return cmpTimes(a.UpdatedAt, b.UpdatedAt), true
		}
		return 0, false
	})
	return centers, nil
}

func (repo *centerRepository) GetCenter(_ context.Context, id string, _ ...core.DBExecutor) (center.Center, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if c, ok := repo.db.t.centers[id]; ok {
		return c, nil
	}
	return center.Center{}, center.ErrNotFound
}

func (repo *centerRepository) CountCenters(_ context.Context, _ ...core.DBExecutor) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.db.t.centers), nil
}

func (repo *centerRepository) UpdateCenter(_ context.Context, c center.Center, exec ...core.DBExecutor) (center.Center, error) {
	defer repo.db.lock(exec)()

	orig, ok := repo.db.t.centers[c.ID]
	if !ok {
		return center.Center{}, center.ErrNotFound
	}
	c.CreatedAt = orig.CreatedAt
	repo.db.t.centers[c.ID] = c
	return c, nil
}

func (repo *centerRepository) DeleteCenters(_ context.Context, ids []string, exec ...core.DBExecutor) error {
	defer repo.db.lock(exec)()

	t := repo.db.t
	del := idSet(ids)
	for id, c := range t.classrooms {
		if del[c.CenterID] {
			delete(t.classrooms, id)
		}
	}
	var students []string
	for id, s := range t.students {
		if del[s.CenterID] {
			students = append(students, id)
		}
	}
	deleteStudents(t, students)
	for id, n := range t.news {
		if n.CenterID.Valid && del[n.CenterID.String] {
			n.CenterID = null.String{}
			t.news[id] = n
		}
	}
	for id := range del {
		delete(t.centers, id)
	}
	return nil
}
