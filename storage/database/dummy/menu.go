package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/menu"
)

type menuRepository struct {
	db *DB
}

var _ menu.Repository = (*menuRepository)(nil) // interface compliance check

func NewMenuRepository(db *DB) menu.Repository {
	return &menuRepository{db: db}
}

func (repo *menuRepository) dateTaken(day time.Time, exclID string) bool {
	for _, m := range repo.db.t.menus {
		if m.Date.Equal(day) && m.ID != exclID {
			return true
		}
	}
	return false
}

func (repo *menuRepository) CreateMenu(_ context.Context, m menu.Menu, exec ...core.DBExecutor) (menu.Menu, error) {
	defer repo.db.lock(exec)()

	m.Date = core.Day(m.Date)
	if repo.dateTaken(m.Date, "") {
		return menu.Menu{}, menu.ErrDateExists
	}
	m.ID = newID()
	repo.db.t.menus[m.ID] = m
	return m, nil
}

func (repo *menuRepository) QueryMenus(_ context.Context, filter *menu.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]menu.Menu, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	menus := make([]menu.Menu, 0)
	for _, m := range repo.db.t.menus {
		if filter != nil && !inRange(m.Date, filter.DateFrom, filter.DateTo) {
			continue
		}
		menus = append(menus, m)
	}
	sort.Slice(menus, func(i, j int) bool { return menus[i].ID < menus[j].ID })

	orderBy(menus, ordering, func(i, j int, field string) (int, bool) {
		a, b := menus[i], menus[j]
		switch field {
		case "date":
			return cmpTimes(a.Date, b.Date), true
		case "created_at":
			return cmpTimes(a.CreatedAt, b.CreatedAt), true
		}
		return 0, false
	})
	return menus, nil
}

func (repo *menuRepository) GetMenu(_ context.Context, id string, _ ...core.DBExecutor) (menu.Menu, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if m, ok := repo.db.t.menus[id]; ok {
		return m, nil
	}
	return menu.Menu{}, menu.ErrNotFound
}

func (repo *menuRepository) GetMenuByDate(_ context.Context, day time.Time, _ ...core.DBExecutor) (menu.Menu, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	day = core.Day(day)
	for _, m := range repo.db.t.menus {
		if m.Date.Equal(day) {
			return m, nil
		}
	}
	return menu.Menu{}, menu.ErrNotFound
}

func (repo *menuRepository) UpdateMenu(_ context.Context, m menu.Menu, exec ...core.DBExecutor) (menu.Menu, error) {
	defer repo.db.lock(exec)()

	orig, ok := repo.db.t.menus[m.ID]
	if !ok {
		return menu.Menu{}, menu.ErrNotFound
	}
	m.Date = core.Day(m.Date)
	if repo.dateTaken(m.Date, m.ID) {
		return menu.Menu{}, menu.ErrDateExists
	}
	m.CreatedAt = orig.CreatedAt
	repo.db.t.menus[m.ID] = m
	return m, nil
}

func (repo *menuRepository) DeleteMenus(_ context.Context, ids []string, exec ...core.DBExecutor) error {
	defer repo.db.lock(exec)()

	for _, id := range ids {
		delete(repo.db.t.menus, id)
	}
	return nil
}
