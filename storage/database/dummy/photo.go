package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/photo"
)

type photoRepository struct {
	db *DB
}

var _ photo.Repository = (*photoRepository)(nil) // interface compliance check

func NewPhotoRepository(db *DB) photo.Repository {
	return &photoRepository{db: db}
}

func (repo *photoRepository) CreatePhoto(_ context.Context, p photo.Photo, exec ...core.DBExecutor) (photo.Photo, error) {
	defer repo.db.lock(exec)()

	p.ID = newID()
	repo.db.t.photos[p.ID] = p
	return p, nil
}

func (repo *photoRepository) QueryPhotos(_ context.Context, filter *photo.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]photo.Photo, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	photos := make([]photo.Photo, 0)
	for _, p := range repo.db.t.photos {
		if filter != nil {
			if filter.TeacherID != "" && p.TeacherID != filter.TeacherID {
				continue
			}
			if !inRange(p.Date, filter.DateFrom, filter.DateTo) {
				continue
			}
		}
		photos = append(photos, p)
	}
	sort.Slice(photos, func(i, j int) bool { return photos[i].ID < photos[j].ID })

	orderBy(photos, ordering, func(i, j int, field string) (int, bool) {
		a, b := photos[i], photos[j]
		switch field {
		case "date":
			return cmpTimes(a.Date, b.Date), true
		case "created_at":
			return cmpTimes(a.CreatedAt, b.CreatedAt), true
		}
		return 0, false
	})
	return photos, nil
}

func (repo *photoRepository) GetPhoto(_ context.Context, id string, _ ...core.DBExecutor) (photo.Photo, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if p, ok := repo.db.t.photos[id]; ok {
		return p, nil
	}
	return photo.Photo{}, photo.ErrNotFound
}

func (repo *photoRepository) DeletePhotos(_ context.Context, ids []string, exec ...core.DBExecutor) error {
	defer repo.db.lock(exec)()

	for _, id := range ids {
		delete(repo.db.t.photos, id)
	}
	return nil
}
